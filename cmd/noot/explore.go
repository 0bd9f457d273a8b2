package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var exploreJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate counters",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app, cleanup := openApp()
		defer cleanup()

		stats, err := app.Stats(context.Background())
		if err != nil {
			fail(cleanup, "Failed to load stats", err)
		}
		if exploreJSON {
			if err := printJSON(stats); err != nil {
				fail(cleanup, "Error encoding JSON", err)
			}
			return
		}
		fmt.Printf("universes: %d (%d public)\nusers: %d\n", stats.TotalUniverses, stats.PublicUniverses, stats.TotalUsers)
	},
}

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Show public universes, their tags and the stats",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app, cleanup := openApp()
		defer cleanup()

		overview, err := app.Explore(context.Background())
		if err != nil {
			fail(cleanup, "Failed to explore", err)
		}
		if exploreJSON {
			if err := printJSON(overview); err != nil {
				fail(cleanup, "Error encoding JSON", err)
			}
			return
		}
		fmt.Printf("%d public universes of %d, %d users\n",
			overview.Stats.PublicUniverses, overview.Stats.TotalUniverses, overview.Stats.TotalUsers)
		if len(overview.Tags) > 0 {
			fmt.Printf("tags: %s\n", formatTags(overview.Tags))
		}
		for i, u := range overview.Public {
			fmt.Printf("%d\t%s\n", i, describeUniverse(u))
		}
	},
}

func init() {
	rootCmd.AddCommand(statsCmd, exploreCmd)
	for _, c := range []*cobra.Command{statsCmd, exploreCmd} {
		c.Flags().BoolVar(&exploreJSON, "json", false, "Output in JSON format")
	}
}
