package schedule

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "archivist/pkg/domain-errors"
)

func TestParseCatalog(t *testing.T) {
	t.Run("decodes overrides", func(t *testing.T) {
		c, err := ParseCatalog(strings.NewReader(catalogYAML))
		require.NoError(t, err)
		require.Len(t, c.Series, 2)

		contracts := c.Series[0]
		assert.Equal(t, 2, contracts.ManagementYears)
		require.Len(t, contracts.Subseries, 2)
		assert.Nil(t, contracts.Subseries[0].ManagementYears)
		require.NotNil(t, contracts.Subseries[0].CentralYears)
		assert.Equal(t, 18, *contracts.Subseries[0].CentralYears)
		require.NotNil(t, contracts.Subseries[1].Disposition)
		assert.Equal(t, "destruction", *contracts.Subseries[1].Disposition)
	})

	t.Run("unknown keys are rejected", func(t *testing.T) {
		_, err := ParseCatalog(strings.NewReader("series:\n  - code: \"1\"\n    centrl_years: 3\n"))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("empty input is an empty catalog", func(t *testing.T) {
		c, err := ParseCatalog(strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, c.Series)
	})
}
