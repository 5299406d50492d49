// Package report renders LocationTodo lists as plain text, CSV, XLSX or JSON.
// Output carries no markup; table cells are written exactly as the engine
// formatted them.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/sitepicker/internal/model"
	"github.com/sells-group/sitepicker/internal/todo"
)

// Output formats.
const (
	FormatText = "text"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatJSON = "json"
)

// Entry is one location's TODO list.
type Entry struct {
	LocationID string               `json:"location_id,omitempty"`
	Label      string               `json:"label"`
	Metro      *model.MetroInfo     `json:"metro,omitempty"`
	Todos      []model.LocationTodo `json:"todos"`
}

// ValidFormat reports whether format is supported.
func ValidFormat(format string) bool {
	switch format {
	case FormatText, FormatCSV, FormatXLSX, FormatJSON:
		return true
	}
	return false
}

// Write renders entries to w in the given format.
func Write(w io.Writer, format string, entries []Entry) error {
	switch format {
	case FormatText:
		return WriteText(w, entries)
	case FormatCSV:
		return WriteCSV(w, entries)
	case FormatXLSX:
		return WriteXLSX(w, entries)
	case FormatJSON:
		return WriteJSON(w, entries)
	default:
		return eris.Errorf("report: unsupported format %q", format)
	}
}

// WriteText writes a human-readable listing. Data tables are column aligned.
func WriteText(w io.Writer, entries []Entry) error {
	for i, e := range entries {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return eris.Wrap(err, "report: write text")
			}
		}
		if err := writeTextEntry(w, e); err != nil {
			return err
		}
	}
	return nil
}

func writeTextEntry(w io.Writer, e Entry) error {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", e.Label)
	if e.Metro != nil {
		market := "no existing market"
		if e.Metro.Market != nil {
			market = *e.Metro.Market
		}
		fmt.Fprintf(&b, "Metro: %s (green %s, red %s per student)\n",
			market, todo.FmtDollars(e.Metro.GreenThreshold), todo.FmtDollars(e.Metro.RedThreshold))
	}
	if len(e.Todos) == 0 {
		b.WriteString("No TODOs.\n")
	}

	for _, t := range e.Todos {
		fmt.Fprintf(&b, "\n[%s %s] %s\n", t.Type, t.Scenario, t.Title)
		fmt.Fprintf(&b, "  %s\n", t.Message)
		if len(t.DataTable) == 0 {
			continue
		}

		tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
		withGap := hasGap(t.DataTable)
		if withGap {
			fmt.Fprintln(tw, "  \tCurrent\tNeeded\tGap")
		} else {
			fmt.Fprintln(tw, "  \tCurrent\tNeeded")
		}
		for _, r := range t.DataTable {
			if withGap {
				fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", r.Label, r.Current, r.Needed, gapText(r.Gap))
			} else {
				fmt.Fprintf(tw, "  %s\t%s\t%s\n", r.Label, r.Current, r.Needed)
			}
		}
		if err := tw.Flush(); err != nil {
			return eris.Wrap(err, "report: align table")
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return eris.Wrap(err, "report: write text")
	}
	return nil
}

var csvHeader = []string{"location_id", "location", "type", "scenario", "title", "message", "row", "current", "needed", "gap"}

// WriteCSV writes one record per data table row. A TODO without a table
// produces a single record with empty row columns.
func WriteCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return eris.Wrap(err, "report: write CSV header")
	}
	for _, rec := range records(entries) {
		if err := cw.Write(rec); err != nil {
			return eris.Wrap(err, "report: write CSV row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "report: flush CSV")
	}
	return nil
}

// WriteXLSX writes a workbook with a "TODOs" sheet laid out like WriteCSV.
func WriteXLSX(w io.Writer, entries []Entry) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("TODOs")
	if err != nil {
		return eris.Wrap(err, "report: add sheet")
	}

	addRow(sheet, csvHeader)
	for _, rec := range records(entries) {
		addRow(sheet, rec)
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "report: write xlsx")
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, cells []string) {
	row := sheet.AddRow()
	for _, c := range cells {
		row.AddCell().SetString(c)
	}
}

// WriteJSON writes entries as an indented JSON array.
func WriteJSON(w io.Writer, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return eris.Wrap(err, "report: encode JSON")
	}
	return nil
}

func records(entries []Entry) [][]string {
	var out [][]string
	for _, e := range entries {
		for _, t := range e.Todos {
			base := []string{e.LocationID, e.Label, string(t.Type), t.Scenario, t.Title, t.Message}
			if len(t.DataTable) == 0 {
				out = append(out, append(base, "", "", "", ""))
				continue
			}
			for _, r := range t.DataTable {
				rec := append(append([]string(nil), base...), r.Label, r.Current, r.Needed, gapText(r.Gap))
				out = append(out, rec)
			}
		}
	}
	return out
}

func hasGap(rows []model.DataRow) bool {
	for _, r := range rows {
		if r.Gap != nil {
			return true
		}
	}
	return false
}

func gapText(gap *string) string {
	if gap == nil {
		return ""
	}
	return *gap
}
