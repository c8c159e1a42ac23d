// Package csvparse turns spreadsheet CSV exports into ordered rows.
//
// The tokenizer is deliberately permissive: unbalanced quotes and ragged rows
// never produce an error, they are tokenized on a best-effort basis. All values
// are strings; interpreting numbers or dates is left to callers.
package csvparse

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Parse converts CSV text into a Table. The first record is the header.
//
// Quoted fields may contain commas and line breaks, and "" inside a quoted
// field decodes to a single quote. Both \n and \r end a record, and \r\n
// counts once. Every cell is trimmed of surrounding whitespace. A last line
// without a terminator still counts as data.
func Parse(text string) Table {
	records := tokenize(text)
	if len(records) == 0 {
		return Table{}
	}

	headers := records[0]
	out := make(Table, 0, len(records)-1)
	for _, rec := range records[1:] {
		// stray blank line
		if len(rec) == 1 && rec[0] == "" {
			continue
		}
		out = append(out, buildRow(headers, rec))
	}
	return out
}

// ParseReader reads all of r, drops a leading UTF-8 BOM, replaces invalid
// UTF-8 and parses the result. The only possible error comes from r.
func ParseReader(r io.Reader) (Table, error) {
	text, err := ReadText(r)
	if err != nil {
		return nil, err
	}
	return Parse(text), nil
}

// tokenize splits text into trimmed records.
func tokenize(text string) [][]string {
	var (
		records  [][]string
		row      []string
		cur      strings.Builder
		inQuotes bool
	)

	flush := func() {
		row = append(row, cur.String())
		cur.Reset()
	}
	endRecord := func() {
		flush()
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
		records = append(records, row)
		row = nil
	}

	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(text) && text[i+1] == '"' {
				cur.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			flush()
		case (ch == '\n' || ch == '\r') && !inQuotes:
			if ch == '\r' && i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			endRecord()
		default:
			cur.WriteByte(ch)
		}
	}

	if cur.Len() > 0 || len(row) > 0 {
		endRecord()
	}
	return records
}

// buildRow zips a record against the header. Empty header cells become
// col<index>; missing trailing cells become "".
func buildRow(headers, rec []string) Row {
	var r Row
	for j, h := range headers {
		if h == "" {
			h = syntheticColumn(j)
		}
		v := ""
		if j < len(rec) {
			v = rec[j]
		}
		r.Set(h, v)
	}
	return r
}

func syntheticColumn(index int) string {
	return "col" + strconv.Itoa(index)
}

// String renders a short description of the table for logs.
func (t Table) String() string {
	return fmt.Sprintf("Table{rows: %d, columns: %d}", len(t), len(t.Headers()))
}
