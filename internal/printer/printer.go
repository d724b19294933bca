// Package printer renders catalog listings and record dumps on the primary
// output stream. Diagnostics never go through it.
package printer

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/fystack/wt-reader/internal/reader"
	"github.com/fystack/wt-reader/pkg/common/enum"
)

type Printer struct {
	w       io.Writer
	format  enum.OutputFormat
	preview int
}

// New returns a printer writing to w. preview is the number of leading value
// bytes shown as hex in text output, 0 to disable.
func New(w io.Writer, format enum.OutputFormat, preview int) *Printer {
	if format == "" {
		format = enum.OutputText
	}
	return &Printer{w: w, format: format, preview: preview}
}

type tablesDoc struct {
	Count  int      `json:"count"`
	Tables []string `json:"tables"`
}

type recordDoc struct {
	Key    string `json:"key"`
	KeyHex string `json:"key_hex"`
	Size   int    `json:"size"`
	Value  []byte `json:"value"`
}

type recordsDoc struct {
	Table   string      `json:"table"`
	Count   int         `json:"count"`
	Records []recordDoc `json:"records"`
}

func (p *Printer) Tables(tables []string) error {
	if p.format == enum.OutputJSON {
		if tables == nil {
			tables = []string{}
		}
		return p.json(tablesDoc{Count: len(tables), Tables: tables})
	}
	if len(tables) == 0 {
		_, err := fmt.Fprintln(p.w, "No collections found, or the catalog could not be read. Check the log and the store layout.")
		return err
	}
	if _, err := fmt.Fprintf(p.w, "Found %d collections (tables):\n", len(tables)); err != nil {
		return err
	}
	for _, t := range tables {
		if _, err := fmt.Fprintf(p.w, "- %s\n", t); err != nil {
			return err
		}
	}
	return nil
}

// Reading announces a table dump. JSON output has no header.
func (p *Printer) Reading(table string) error {
	if p.format == enum.OutputJSON {
		return nil
	}
	_, err := fmt.Fprintf(p.w, "\nReading collection (table) '%s'...\n", table)
	return err
}

func (p *Printer) Records(table string, records []reader.Record) error {
	if p.format == enum.OutputJSON {
		doc := recordsDoc{Table: table, Count: len(records), Records: make([]recordDoc, 0, len(records))}
		for _, r := range records {
			doc.Records = append(doc.Records, recordDoc{
				Key:    FormatKey(r.Key),
				KeyHex: hex.EncodeToString(r.Key),
				Size:   len(r.Value),
				Value:  r.Value,
			})
		}
		return p.json(doc)
	}

	if len(records) == 0 {
		_, err := fmt.Fprintf(p.w, "No records read from collection (table) %s, or it is empty.\n", table)
		return err
	}
	if _, err := fmt.Fprintf(p.w, "First %d records of collection %s (raw records):\n", len(records), table); err != nil {
		return err
	}
	for _, r := range records {
		if _, err := fmt.Fprintf(p.w, "  Key: %s, Value (raw bytes length): %d (%s)\n",
			FormatKey(r.Key), len(r.Value), humanize.Bytes(uint64(len(r.Value)))); err != nil {
			return err
		}
		if p.preview > 0 && len(r.Value) > 0 {
			n := min(p.preview, len(r.Value))
			if _, err := fmt.Fprintf(p.w, "    Value (first %d bytes): %s\n", n, hex.EncodeToString(r.Value[:n])); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Printer) json(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FormatKey quotes printable UTF-8 keys and renders anything else as hex.
func FormatKey(key []byte) string {
	if len(key) > 0 && utf8.Valid(key) && printable(key) {
		return strconv.Quote(string(key))
	}
	return "0x" + hex.EncodeToString(key)
}

func printable(b []byte) bool {
	for _, r := range string(b) {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
