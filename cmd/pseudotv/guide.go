package main

import (
	"fmt"
	"os"

	"github.com/google/renameio/v2"
	"github.com/spf13/cobra"
)

var guideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Download today's XMLTV guide",
	Long: `Download today's XMLTV guide from the daemon.

Examples:
  pseudotv guide > guide.xml
  pseudotv guide -o /srv/epg/pseudotv.xml`,
	Args: cobra.NoArgs,
	RunE: runGuideCmd,
}

func init() {
	rootCmd.AddCommand(guideCmd)
	guideCmd.Flags().StringP("output", "o", "", "Write to file instead of stdout")
}

func runGuideCmd(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("output")

	client := NewClient(serverURL)
	doc, err := client.Guide()
	if err != nil {
		return fmt.Errorf("guide: %w", err)
	}

	if out == "" {
		_, err = os.Stdout.Write(doc)
		return err
	}
	if err := renameio.WriteFile(out, doc, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Fprintf(os.Stderr, "Guide written to %s\n", out)
	return nil
}
