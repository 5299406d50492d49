package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/sitepicker/internal/evaluate"
	"github.com/sells-group/sitepicker/internal/model"
	"github.com/sells-group/sitepicker/internal/report"
)

var previewFormat string

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Print every TODO scenario from built-in fixtures",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := evaluate.NewService(nil, nil)
		return report.Write(cmd.OutOrStdout(), previewFormat, computeEntries(svc, previewFixtures()))
	},
}

func red() *string { return model.String("RED") }

// previewFixtures covers each scenario path once. Existing-market cases use
// Texas; new-market cases use Ohio.
func previewFixtures() []todoInput {
	return []todoInput{
		{
			Label:   "Z1: zoning prohibits schools",
			Scores:  &model.ScoreRow{OverallScore: model.Float(30), ZoningColor: red()},
			Metrics: &model.UpstreamMetrics{ZoningCode: model.String("R-1")},
			State:   "TX",
		},
		{
			Label:  "M-generic: demographics without metrics",
			Scores: &model.ScoreRow{OverallScore: model.Float(30), DemographicsColor: red()},
			State:  "TX",
		},
		{
			Label:   "M1: strong metro, weak submarket",
			Scores:  &model.ScoreRow{OverallScore: model.Float(30), DemographicsColor: red()},
			Metrics: demographics(2000, 0.5, 1500, 0.5),
			State:   "TX",
		},
		{
			Label:   "M2: moderate metro",
			Scores:  &model.ScoreRow{OverallScore: model.Float(30), DemographicsColor: red()},
			Metrics: demographics(600, 0.5, 300, 0.5),
			State:   "TX",
		},
		{
			Label:   "M3: weak metro",
			Scores:  &model.ScoreRow{OverallScore: model.Float(30), DemographicsColor: red()},
			Metrics: demographics(300, 0.5, 200, 0.25),
			State:   "TX",
		},
		{
			Label:  "P-generic: pricing without rent data",
			Scores: &model.ScoreRow{OverallScore: model.Float(30), PriceColor: red()},
			State:  "TX",
		},
		{
			Label:   "P1/P2: rent too high in an existing market",
			Scores:  &model.ScoreRow{OverallScore: model.Float(30), PriceColor: red()},
			Metrics: lease(20, 2000),
			State:   "TX",
		},
		{
			Label:   "P3a: launch subsidy in a new market",
			Scores:  &model.ScoreRow{OverallScore: model.Float(30), PriceColor: red()},
			Metrics: lease(80, 5000),
			State:   "OH",
		},
		{
			Label:   "P3b: over capacity in a new market",
			Scores:  &model.ScoreRow{OverallScore: model.Float(30), PriceColor: red()},
			Metrics: lease(120, 5000),
			State:   "OH",
		},
		{
			Label:   "No TODO: affordable rent in a new market",
			Scores:  &model.ScoreRow{OverallScore: model.Float(30), PriceColor: red()},
			Metrics: lease(20, 2000),
			State:   "OH",
		},
	}
}

func demographics(enrollment, relEnrollment, wealth, relWealth float64) *model.UpstreamMetrics {
	return &model.UpstreamMetrics{
		EnrollmentScore:         model.Float(enrollment),
		RelativeEnrollmentScore: model.Float(relEnrollment),
		WealthScore:             model.Float(wealth),
		RelativeWealthScore:     model.Float(relWealth),
	}
}

func lease(rent, space float64) *model.UpstreamMetrics {
	return &model.UpstreamMetrics{
		RentPerSfYear:      model.Float(rent),
		SpaceSizeAvailable: model.Float(space),
	}
}

func init() {
	previewCmd.Flags().StringVar(&previewFormat, "format", report.FormatText, "output format: text, csv, xlsx or json")
	rootCmd.AddCommand(previewCmd)
}
