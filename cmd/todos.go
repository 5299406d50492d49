package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/sitepicker/internal/evaluate"
	"github.com/sells-group/sitepicker/internal/model"
	"github.com/sells-group/sitepicker/internal/report"
)

var (
	todosInput    string
	todosLocation string
	todosFormat   string
	todosOutput   string
	todosDir      string
)

// todoInput is one site in a --input file. The file holds either a single
// object or an array of them.
type todoInput struct {
	ID      string                 `json:"id"`
	Label   string                 `json:"label"`
	Scores  *model.ScoreRow        `json:"scores"`
	Metrics *model.UpstreamMetrics `json:"metrics"`
	State   string                 `json:"state"`
	City    string                 `json:"city"`
}

var todosCmd = &cobra.Command{
	Use:   "todos",
	Short: "Print remediation TODOs for a site",
	Long: `Runs the TODO engine over raw scores and metrics from a JSON file, or over a
stored location, and prints the result.

Examples:
  sitepicker todos --input site.json
  sitepicker todos --location 6f1c... --format csv --output todos.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if (todosInput == "") == (todosLocation == "") {
			return eris.New("todos: exactly one of --input or --location is required")
		}
		if !report.ValidFormat(todosFormat) {
			return eris.Errorf("todos: --format must be text, csv, xlsx or json (got %q)", todosFormat)
		}

		dir, err := initDirectory(todosDir)
		if err != nil {
			return err
		}

		var entries []report.Entry
		if todosInput != "" {
			inputs, err := readTodoInputs(todosInput)
			if err != nil {
				return err
			}
			entries = computeEntries(evaluate.NewService(nil, dir), inputs)
		} else {
			ctx := cmd.Context()
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			loc, err := st.GetLocation(ctx, todosLocation)
			if err != nil {
				return err
			}
			ev, err := evaluate.NewService(st, dir).Assess(ctx, loc.ID)
			if err != nil {
				return err
			}
			entries = []report.Entry{{
				LocationID: loc.ID,
				Label:      locationLabel(loc),
				Metro:      &ev.Metro,
				Todos:      ev.Todos,
			}}
		}

		return writeReport(cmd.OutOrStdout(), todosFormat, todosOutput, entries)
	},
}

func readTodoInputs(path string) ([]todoInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "todos: read input %s", path)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var inputs []todoInput
		if err := json.Unmarshal(trimmed, &inputs); err != nil {
			return nil, eris.Wrap(err, "todos: parse input")
		}
		return inputs, nil
	}

	var in todoInput
	if err := json.Unmarshal(trimmed, &in); err != nil {
		return nil, eris.Wrap(err, "todos: parse input")
	}
	return []todoInput{in}, nil
}

func computeEntries(svc *evaluate.Service, inputs []todoInput) []report.Entry {
	entries := make([]report.Entry, 0, len(inputs))
	for i, in := range inputs {
		res := svc.Compute(in.Scores, in.Metrics, in.State, in.City)
		label := in.Label
		if label == "" {
			label = in.ID
		}
		if label == "" {
			label = "site " + strconv.Itoa(i+1)
		}
		entries = append(entries, report.Entry{
			LocationID: in.ID,
			Label:      label,
			Metro:      &res.Metro,
			Todos:      res.Todos,
		})
	}
	return entries
}

func locationLabel(loc *model.Location) string {
	switch {
	case loc.Name != "" && loc.Address != "":
		return loc.Name + " (" + loc.Address + ")"
	case loc.Name != "":
		return loc.Name
	default:
		return loc.Address
	}
}

// writeReport writes to path when set, else to w.
func writeReport(w io.Writer, format, path string, entries []report.Entry) error {
	if path == "" {
		return report.Write(w, format, entries)
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "todos: create output file %s", path)
	}
	defer f.Close() //nolint:errcheck
	return report.Write(f, format, entries)
}

func init() {
	f := todosCmd.Flags()
	f.StringVar(&todosInput, "input", "", "JSON file with scores and metrics")
	f.StringVar(&todosLocation, "location", "", "stored location ID")
	f.StringVar(&todosFormat, "format", report.FormatText, "output format: text, csv, xlsx or json")
	f.StringVar(&todosOutput, "output", "", "output file (default stdout)")
	f.StringVar(&todosDir, "directory", "", "facility directory YAML (default from config)")
	rootCmd.AddCommand(todosCmd)
}
