package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"hostelverse-workers/internal/waitlist"

	"github.com/spf13/cobra"
)

func rankCmd(app *App) *cobra.Command {
	var (
		hostelID string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Compute the current waitlist ranking of a hostel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := app.Query(cmd.Context())
			if err != nil {
				return err
			}

			ranking, err := query.ComputeWaitlistRanking(cmd.Context(), hostelID)
			if err != nil {
				return fmt.Errorf("failed to rank hostel %s: %w", hostelID, err)
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), waitlist.NewSnapshot(hostelID, ranking))
			}
			printRanking(cmd.OutOrStdout(), hostelID, ranking)
			return nil
		},
	}

	cmd.Flags().StringVar(&hostelID, "hostel", "", "Hostel ID")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the ranking snapshot as JSON")
	_ = cmd.MarkFlagRequired("hostel")
	return cmd
}

func positionCmd(app *App) *cobra.Command {
	var hostelID, userID string

	cmd := &cobra.Command{
		Use:   "position",
		Short: "Show one applicant's standing on a hostel waitlist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := app.Query(cmd.Context())
			if err != nil {
				return err
			}

			position, err := query.ApplicantPosition(cmd.Context(), hostelID, userID)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s is #%d of %d on %s with %.2f points\n",
				userID, position.Applicant.Rank, position.ApplicantCount, hostelID, position.Applicant.Score)
			return nil
		},
	}

	cmd.Flags().StringVar(&hostelID, "hostel", "", "Hostel ID")
	cmd.Flags().StringVar(&userID, "user", "", "Applicant user ID")
	_ = cmd.MarkFlagRequired("hostel")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func printRanking(w io.Writer, hostelID string, ranking waitlist.Ranking) {
	fmt.Fprintf(w, "\nWaitlist for %s: %d applicants\n\n", hostelID, len(ranking))
	if len(ranking) == 0 {
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tUSER\tTOTAL\tINCOME\tCATEGORY\tDISTANCE\tACADEMICS")
	for _, a := range ranking {
		b := a.ScoreBreakdown
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%.0f\t%.0f\t%.2f\t%.2f\n",
			a.Rank, a.UserID, a.Score, b.Income, b.Category, b.Distance, b.Academics)
	}
	_ = tw.Flush()
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
