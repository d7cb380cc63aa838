package models

import (
	"fmt"
	"time"

	id "archivist/pkg/domain"
)

// Document is a record filed in a case file. Folios are numbered from 1 per
// case file.
type Document struct {
	ID           id.DocumentID `json:"id"`
	CaseFileID   id.CaseFileID `json:"case_file_id"`
	Number       string        `json:"number"`
	Folio        int           `json:"folio"`
	Title        string        `json:"title"`
	DocumentDate time.Time     `json:"document_date"`
	CreatedBy    string        `json:"created_by"`
	CreatedAt    time.Time     `json:"created_at"`
}

// DocumentDayPrefix is the date bucket of document numbers issued on day.
func DocumentDayPrefix(day time.Time) string {
	return Day(day).Format("20060102")
}

// FormatDocumentNumber renders YYYYMMDD-NNNN.
func FormatDocumentNumber(day time.Time, n int64) string {
	return fmt.Sprintf("%s-%04d", DocumentDayPrefix(day), n)
}

// CaseFileSnapshot is the metadata archived before a case file is destroyed.
type CaseFileSnapshot struct {
	CaseFileID id.CaseFileID `json:"case_file_id"`
	TakenAt    time.Time     `json:"taken_at"`
	TakenBy    string        `json:"taken_by"`
	CaseFile   CaseFile      `json:"case_file"`
	Documents  []Document    `json:"documents"`
}
