// Package export serializes tracked rows to CSV for download. The format
// quotes string columns and leaves numeric IDs and timestamps bare, with a
// UTF-8 BOM so spreadsheet apps pick the right encoding.
package export

import (
	"strings"
)

const bom = "﻿"

// Document accumulates CSV lines.
type Document struct {
	b strings.Builder
}

// NewDocument starts a document with the BOM and header row. Header labels
// are written bare.
func NewDocument(headers ...string) *Document {
	d := &Document{}
	d.b.WriteString(bom)
	d.b.WriteString(strings.Join(headers, ","))
	return d
}

// AddRow appends one row. Fields are written as given; pass string columns
// through Quoted.
func (d *Document) AddRow(fields ...string) {
	d.b.WriteString("\n")
	d.b.WriteString(strings.Join(fields, ","))
}

// Quoted wraps a field in double quotes, doubling embedded quotes.
func Quoted(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Bytes returns the serialized document.
func (d *Document) Bytes() []byte {
	return []byte(d.b.String())
}
