package main

import (
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/sitepicker/internal/metro"
	"github.com/sells-group/sitepicker/internal/model"
	"github.com/sells-group/sitepicker/internal/todo"
)

var (
	metroState     string
	metroCity      string
	metroDirectory string
)

var metroCmd = &cobra.Command{
	Use:   "metro",
	Short: "Show the market context and pricing thresholds for a state",
	RunE: func(cmd *cobra.Command, args []string) error {
		if metroState == "" {
			return eris.New("metro: --state is required")
		}
		dir, err := initDirectory(metroDirectory)
		if err != nil {
			return err
		}
		if err := dir.Validate(); err != nil {
			return err
		}

		info := dir.Resolve(metroState, metroCity)
		return printMetro(cmd.OutOrStdout(), info, dir.FacilitiesIn(metroState))
	},
}

func printMetro(w io.Writer, info model.MetroInfo, facilities []metro.Facility) error {
	market := "(none)"
	if info.Market != nil {
		market = *info.Market
	}
	tuition := "(unknown)"
	if info.Tuition != nil {
		tuition = todo.FmtDollars(*info.Tuition)
	}
	existing := "no"
	if info.HasExistingAlpha {
		existing = "yes"
	}

	lines := []string{
		fmt.Sprintf("Market:          %s", market),
		fmt.Sprintf("Existing market: %s", existing),
		fmt.Sprintf("Tuition:         %s", tuition),
		fmt.Sprintf("Green threshold: %s per student/year", todo.FmtDollars(info.GreenThreshold)),
		fmt.Sprintf("Red threshold:   %s per student/year", todo.FmtDollars(info.RedThreshold)),
	}
	if len(facilities) > 0 {
		lines = append(lines, "", "Facilities:")
		for _, f := range facilities {
			lines = append(lines, fmt.Sprintf("  %-20s %-20s %s", f.Market, f.City, todo.FmtDollars(f.Tuition)))
		}
	}

	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return eris.Wrap(err, "metro: write output")
		}
	}
	return nil
}

func init() {
	f := metroCmd.Flags()
	f.StringVar(&metroState, "state", "", "two-letter state code")
	f.StringVar(&metroCity, "city", "", "city (informational)")
	f.StringVar(&metroDirectory, "directory", "", "facility directory YAML (default from config)")
	rootCmd.AddCommand(metroCmd)
}
