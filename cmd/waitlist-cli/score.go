package main

import (
	"fmt"
	"text/tabwriter"

	"hostelverse-workers/internal/waitlist"

	"github.com/spf13/cobra"
)

func scoreCmd() *cobra.Command {
	var (
		income, distance, score10, score12 float64
		category                           string
		asJSON                             bool
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Print the priority score breakdown for a profile",
		Long:  `Unset flags count as missing inputs, exactly as they would for a stored profile.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profile := waitlist.ApplicantProfile{UserID: "cli"}
			flags := cmd.Flags()
			if flags.Changed("income") {
				profile.AnnualIncome = waitlist.Float(income)
			}
			if flags.Changed("category") {
				profile.Category = waitlist.String(category)
			}
			if flags.Changed("distance") {
				profile.DistanceKm = waitlist.Float(distance)
			}
			if flags.Changed("score10") {
				profile.Score10th = waitlist.Float(score10)
			}
			if flags.Changed("score12") {
				profile.Score12th = waitlist.Float(score12)
			}

			breakdown := waitlist.CalculateScore(profile)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), breakdown)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "Income\t%.2f\n", breakdown.Income)
			fmt.Fprintf(tw, "Category (%s)\t%.2f\n", profile.CategoryOf(), breakdown.Category)
			fmt.Fprintf(tw, "Distance\t%.2f\n", breakdown.Distance)
			fmt.Fprintf(tw, "Academics\t%.2f\n", breakdown.Academics)
			fmt.Fprintf(tw, "Total\t%.2f\n", breakdown.Total)
			return tw.Flush()
		},
	}

	cmd.Flags().Float64Var(&income, "income", 0, "Annual family income")
	cmd.Flags().StringVar(&category, "category", "", "Reservation category (General, OBC, SC, ST, PC)")
	cmd.Flags().Float64Var(&distance, "distance", 0, "Distance from home in km")
	cmd.Flags().Float64Var(&score10, "score10", 0, "10th standard percentage")
	cmd.Flags().Float64Var(&score12, "score12", 0, "12th standard percentage")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the breakdown as JSON")
	return cmd
}
