package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	jwttoken "archivist/internal/jwt_token"
)

// TokenCmd returns the operator token command.
func TokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for an operator",
		Long: `Sign an operator bearer token with jwt_signing_key. The operator name is
recorded as the actor of every audited change made with the token.`,
		RunE: runToken,
	}
	cmd.Flags().String("operator", "", "Operator name (required)")
	cmd.Flags().Duration("ttl", 8*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("operator")
	return cmd
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, _, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	operator, _ := cmd.Flags().GetString("operator")
	ttl, _ := cmd.Flags().GetDuration("ttl")

	tokens := jwttoken.NewJWTService(cfg.JWTSigningKey, jwttoken.DefaultIssuer, jwttoken.DefaultAudience)
	token, err := tokens.GenerateOperatorToken(operator, ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
