package models

import (
	"time"

	id "archivist/pkg/domain"
)

// CounterKind names what a sequence counter numbers and therefore where a
// missing counter row takes its starting value from.
type CounterKind string

const (
	CounterDocument CounterKind = "document"
	CounterCaseFile CounterKind = "case_file"
	CounterFolder   CounterKind = "folder"
	CounterPackage  CounterKind = "package"
	CounterBox      CounterKind = "box"
)

// Counter identifies one monotonic sequence. Document counters are scoped
// to a calendar day and box counters to an office; the others are global.
type Counter struct {
	Kind      CounterKind
	DayPrefix string
	Office    id.OfficeID
}

// Name is the key of the counter row.
func (c Counter) Name() string {
	switch c.Kind {
	case CounterDocument:
		return string(c.Kind) + ":" + c.DayPrefix
	case CounterBox:
		return string(c.Kind) + ":" + c.Office.String()
	default:
		return string(c.Kind)
	}
}

func DocumentCounter(day time.Time) Counter {
	return Counter{Kind: CounterDocument, DayPrefix: DocumentDayPrefix(day)}
}

func BoxCounter(office id.OfficeID) Counter {
	return Counter{Kind: CounterBox, Office: office}
}

var (
	CaseFileCounter = Counter{Kind: CounterCaseFile}
	FolderCounter   = Counter{Kind: CounterFolder}
	PackageCounter  = Counter{Kind: CounterPackage}
)
