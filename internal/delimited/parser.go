// Package delimited turns a header-plus-data text block into a RecordSet.
//
// The first record of the block names the fields. Every following record must
// carry the same number of fields; encoding/csv enforces that and its
// *csv.ParseError is passed through unchanged inside ErrMalformedData.
package delimited

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vvka-141/tabload/pkg/tabload"
)

// Parse reads block using delimiter as the field separator.
func Parse(block string, delimiter rune) (tabload.RecordSet, error) {
	reader := csv.NewReader(strings.NewReader(block))
	reader.Comma = delimiter

	fields, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return tabload.RecordSet{}, fmt.Errorf("no header row: %w", tabload.ErrMalformedData)
	}
	if err != nil {
		return tabload.RecordSet{}, fmt.Errorf("failed to read header row: %w: %w", tabload.ErrMalformedData, err)
	}
	fields = trimBOM(fields)

	records := []tabload.Record{}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return tabload.RecordSet{}, fmt.Errorf("failed to read data row: %w: %w", tabload.ErrMalformedData, err)
		}

		rec := make(tabload.Record, len(fields))
		for i, name := range fields {
			rec[name] = row[i]
		}
		records = append(records, rec)
	}

	return tabload.RecordSet{Fields: fields, Records: records}, nil
}

// trimBOM strips a UTF-8 byte order mark that spreadsheet exports leave on the first field
func trimBOM(fields []string) []string {
	if len(fields) > 0 {
		fields[0] = strings.TrimPrefix(fields[0], "\ufeff")
	}
	return fields
}
