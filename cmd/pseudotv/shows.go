package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var nextCmd = &cobra.Command{
	Use:   "next <show>",
	Short: "Advance a show to its next episode",
	Long: `Advance a show to its next episode and print it.

The show restarts from its first episode after the last one.
With --peek the cursor is left where it is.

Examples:
  pseudotv next "Cheers"
  pseudotv next "Cheers" --peek`,
	Args: cobra.ExactArgs(1),
	RunE: runNextCmd,
}

func init() {
	rootCmd.AddCommand(nextCmd)
	nextCmd.Flags().Bool("peek", false, "Show the next episode without advancing")
}

func runNextCmd(cmd *cobra.Command, args []string) error {
	peek, _ := cmd.Flags().GetBool("peek")

	client := NewClient(serverURL)
	var (
		ep  *EpisodeResponse
		err error
	)
	if peek {
		ep, err = client.PeekEpisode(args[0])
	} else {
		ep, err = client.NextEpisode(args[0])
	}
	if IsCode(err, "NOT_FOUND") {
		return fmt.Errorf("no episodes for %q", args[0])
	}
	if err != nil {
		return fmt.Errorf("next episode: %w", err)
	}

	if jsonOutput {
		printJSON(ep)
		return nil
	}

	code := episodeCode(ep.SeasonNumber, ep.EpisodeNumber)
	if code != "" {
		code = " " + code
	}
	fmt.Printf("%s%s - %s (%s)\n", ep.ShowTitle, code, ep.Title, formatMs(ep.DurationMs))
	return nil
}
