package export

import (
	"strconv"
	"time"

	"quizmetrics/internal/tracking"
)

// DiagnosisCSV serializes diagnosis results, newest first as given.
func DiagnosisCSV(rows []tracking.DiagnosisResult) []byte {
	doc := NewDocument("ID", "Type code", "Type name", "Scores", "User agent", "Timestamp")
	for _, r := range rows {
		doc.AddRow(
			strconv.FormatUint(uint64(r.ID), 10),
			r.TypeCode,
			Quoted(r.TypeName),
			Quoted(r.Scores),
			Quoted(r.UserAgent),
			r.CreatedAt.UTC().Format(time.RFC3339),
		)
	}
	return doc.Bytes()
}

// PageViewsCSV serializes page views, newest first as given.
func PageViewsCSV(rows []tracking.PageView) []byte {
	doc := NewDocument("ID", "Page", "User agent", "Referrer", "IP", "Timestamp")
	for _, r := range rows {
		doc.AddRow(
			strconv.FormatUint(uint64(r.ID), 10),
			r.Page,
			Quoted(r.UserAgent),
			Quoted(r.Referrer),
			Quoted(r.IP),
			r.CreatedAt.UTC().Format(time.RFC3339),
		)
	}
	return doc.Bytes()
}
