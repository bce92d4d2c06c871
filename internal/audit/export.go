package audit

import (
	"encoding/csv"
	"io"
)

// ExportCSV writes the study rows as RFC 4180 CSV: one header row in schema
// order, then one line per record in the given order. Values containing
// commas, quotes or newlines are quoted by the encoder; missing fields
// become empty cells.
func ExportCSV(w io.Writer, s Study, records []*Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(s.Fields); err != nil {
		return err
	}
	row := make([]string, len(s.Fields))
	for _, r := range records {
		for i, f := range s.Fields {
			row[i] = r.Fields[f]
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
