package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func latestCmd(app *App) *cobra.Command {
	var (
		hostelID string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "latest",
		Short: "Show the last ranking published to the ranking index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rankings, err := app.Rankings(cmd.Context())
			if err != nil {
				return err
			}

			snapshot, found, err := rankings.Latest(cmd.Context(), hostelID)
			if err != nil {
				return fmt.Errorf("failed to read ranking for hostel %s: %w", hostelID, err)
			}
			if !found {
				return fmt.Errorf("no ranking has been published for hostel %s", hostelID)
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), snapshot)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Ranking %s computed at %s\n",
				snapshot.RankingID, snapshot.ComputedAt.Format("2006-01-02 15:04:05 MST"))
			printRanking(cmd.OutOrStdout(), snapshot.HostelID, snapshot.Applicants)
			return nil
		},
	}

	cmd.Flags().StringVar(&hostelID, "hostel", "", "Hostel ID")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the snapshot as JSON")
	_ = cmd.MarkFlagRequired("hostel")
	return cmd
}

func forgetProfileCmd(app *App) *cobra.Command {
	var userIDs []string

	cmd := &cobra.Command{
		Use:   "forget-profile",
		Short: "Drop applicant profiles from the Redis profile cache",
		Long:  `Drop cached applicant profiles so the next ranking reads them from Postgres. Use after editing or deleting a profile while profile_cache_ttl is enabled.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles, err := app.Profiles(cmd.Context())
			if err != nil {
				return err
			}

			for _, userID := range userIDs {
				if err := profiles.Invalidate(cmd.Context(), userID); err != nil {
					return fmt.Errorf("failed to drop cached profile %s: %w", userID, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "dropped %s\n", userID)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&userIDs, "user", nil, "Applicant user ID (repeatable)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
