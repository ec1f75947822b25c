package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"winetasting/internal/client"
	"winetasting/internal/config"
	"winetasting/internal/services"
)

func newStandingsCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "standings",
		Short: "Print the current leaderboard and voting progress.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			api := client.New(cfg.APIURL, cfg.APITimeout)
			return printStandings(cmd.Context(), cmd.OutOrStdout(), api)
		},
	}
}

func printStandings(ctx context.Context, w io.Writer, api services.TournamentAPI) error {
	stats, err := api.VotingStats(ctx)
	if err != nil {
		return fmt.Errorf("loading voting progress: %w", err)
	}
	entries, err := api.Leaderboard(ctx)
	if err != nil {
		return fmt.Errorf("loading leaderboard: %w", err)
	}

	fmt.Fprintf(w, "Votes: %d of %d participants (%.0f%%)\n", stats.TotalVotes, stats.TotalParticipants, stats.VotingPercentage)
	if stats.VotingPercentage >= services.CompletePercentage {
		fmt.Fprintln(w, "Tournament complete!")
	}
	fmt.Fprintln(w)

	if len(entries) == 0 {
		fmt.Fprintln(w, "No votes yet.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, e := range services.RankLeaderboard(entries) {
		fmt.Fprintf(tw, "%s\tWine %d\t%s pts\n", humanize.Ordinal(e.Rank), e.WineID, humanize.Comma(int64(e.TotalPoints)))
	}
	return tw.Flush()
}
