package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nootverse/noot"
	"github.com/nootverse/noot/pkg/core"
)

var (
	universesQuery   string
	universesTag     string
	universesJSON    bool
	universeTitle    string
	universeDesc     string
	universeContent  string
	universePublic   bool
	universeTags     []string
	universesConfirm bool
)

var universesCmd = &cobra.Command{
	Use:     "universes",
	Aliases: []string{"u"},
	Short:   "Manage your universes and explore public ones",
}

func describeUniverse(u core.Universe) string {
	visibility := "private"
	if u.IsPublic {
		visibility = "public"
	}
	parts := []string{u.Title, "(" + visibility + ")"}
	if tags := formatTags(u.Tags); tags != "" {
		parts = append(parts, tags)
	}
	if !u.UpdatedAt.IsZero() {
		parts = append(parts, u.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return strings.Join(parts, " ")
}

// view applies the text and tag-pattern flags to the engine's view.
// Failures release the app before exiting.
func view(ctx context.Context, e *noot.UniversesEngine, cleanup func()) []core.Entry[core.Universe] {
	entries, err := e.Search(ctx, universesQuery)
	if err != nil {
		fail(cleanup, "Failed to search universes", err)
	}
	if universesTag != "" {
		entries, err = core.FilterByTagPattern(entries, universesTag)
		if err != nil {
			fail(cleanup, "Invalid tag pattern", err)
		}
	}
	return entries
}

func loadMine(ctx context.Context) (*noot.App, func()) {
	app, cleanup := openApp()
	if err := app.MyUniverses.Load(ctx); err != nil {
		cleanup()
		fatal("Failed to load your universes", err)
	}
	return app, cleanup
}

var universesMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List your universes, filtered locally",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		app, cleanup := loadMine(ctx)
		defer cleanup()
		if err := printEntries(view(ctx, app.MyUniverses, cleanup), universesJSON, describeUniverse); err != nil {
			fail(cleanup, "Error encoding JSON", err)
		}
	},
}

var universesPublicCmd = &cobra.Command{
	Use:   "public",
	Short: "List public universes; --query searches on the actor",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		app, cleanup := openApp()
		defer cleanup()
		if err := app.PublicUniverses.Load(ctx); err != nil {
			fail(cleanup, "Failed to load public universes", err)
		}
		if err := printEntries(view(ctx, app.PublicUniverses, cleanup), universesJSON, describeUniverse); err != nil {
			fail(cleanup, "Error encoding JSON", err)
		}
	},
}

var universesSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search public universes on the actor",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		app, cleanup := openApp()
		defer cleanup()
		if err := app.PublicUniverses.Load(ctx); err != nil {
			fail(cleanup, "Failed to load public universes", err)
		}
		universesQuery = args[0]
		if err := printEntries(view(ctx, app.PublicUniverses, cleanup), universesJSON, describeUniverse); err != nil {
			fail(cleanup, "Error encoding JSON", err)
		}
	},
}

var universesTagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List the distinct tags of public universes",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app, cleanup := openApp()
		defer cleanup()
		if err := app.PublicUniverses.Load(context.Background()); err != nil {
			fail(cleanup, "Failed to load public universes", err)
		}
		tags := core.AllTags(app.PublicUniverses.Records())
		if universesJSON {
			if err := printJSON(tags); err != nil {
				fail(cleanup, "Error encoding JSON", err)
			}
			return
		}
		for _, t := range tags {
			fmt.Println(t)
		}
	},
}

var universesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a universe",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		app, cleanup := loadMine(ctx)
		defer cleanup()

		if _, err := app.MyUniverses.OpenCreate(); err != nil {
			fail(cleanup, "Failed to create universe", err)
		}
		u, err := app.MyUniverses.Commit(ctx, core.Universe{
			Title:       universeTitle,
			Description: universeDesc,
			Content:     universeContent,
			IsPublic:    universePublic,
			Tags:        universeTags,
		})
		if err != nil {
			fail(cleanup, "Failed to create universe", err)
		}
		fmt.Printf("Universe created at position %d: %s\n", app.MyUniverses.Len()-1, u.ID)
	},
}

var universesUpdateCmd = &cobra.Command{
	Use:   "update <position>",
	Short: "Update one of your universes; omitted flags keep their value",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		pos := parsePosition(args[0])
		app, cleanup := loadMine(ctx)
		defer cleanup()

		d, err := app.MyUniverses.OpenEdit(pos)
		if err != nil {
			fail(cleanup, "Failed to open universe", err)
		}
		draft := d.Record
		flags := cmd.Flags()
		if flags.Changed("title") {
			draft.Title = universeTitle
		}
		if flags.Changed("description") {
			draft.Description = universeDesc
		}
		if flags.Changed("content") {
			draft.Content = universeContent
		}
		if flags.Changed("public") {
			draft.IsPublic = universePublic
		}
		if flags.Changed("tag") {
			draft.Tags = universeTags
		}
		u, err := app.MyUniverses.Commit(ctx, draft)
		if err != nil {
			fail(cleanup, "Failed to update universe", err)
		}
		fmt.Printf("Universe updated: %s\n", u.Title)
	},
}

var universesDeleteCmd = &cobra.Command{
	Use:   "delete <position>",
	Short: "Delete one of your universes",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		pos := parsePosition(args[0])
		app, cleanup := loadMine(ctx)
		defer cleanup()

		d, err := app.MyUniverses.OpenDelete(pos)
		if err != nil {
			fail(cleanup, "Failed to open universe", err)
		}
		if !universesConfirm && !confirm(cmd.InOrStdin(), fmt.Sprintf("Delete %q?", d.Title)) {
			app.MyUniverses.Close()
			fmt.Println("Cancelled")
			return
		}
		if err := app.MyUniverses.ConfirmDelete(ctx); err != nil {
			fail(cleanup, "Failed to delete universe", err)
		}
		fmt.Printf("Universe deleted: %s\n", d.Title)
	},
}

func init() {
	rootCmd.AddCommand(universesCmd)
	universesCmd.AddCommand(universesMineCmd, universesPublicCmd, universesSearchCmd, universesTagsCmd,
		universesCreateCmd, universesUpdateCmd, universesDeleteCmd)

	for _, c := range []*cobra.Command{universesMineCmd, universesPublicCmd} {
		c.Flags().StringVar(&universesQuery, "query", "", "Filter by text")
		c.Flags().StringVar(&universesTag, "tag", "", "Filter by tag glob (e.g. sci*)")
	}
	universesSearchCmd.Flags().StringVar(&universesTag, "tag", "", "Filter results by tag glob")
	for _, c := range []*cobra.Command{universesMineCmd, universesPublicCmd, universesSearchCmd, universesTagsCmd} {
		c.Flags().BoolVar(&universesJSON, "json", false, "Output in JSON format")
	}

	for _, c := range []*cobra.Command{universesCreateCmd, universesUpdateCmd} {
		c.Flags().StringVar(&universeTitle, "title", "", "Universe title")
		c.Flags().StringVar(&universeDesc, "description", "", "Short description")
		c.Flags().StringVar(&universeContent, "content", "", "Universe content (markdown)")
		c.Flags().BoolVar(&universePublic, "public", false, "Share the universe publicly")
		c.Flags().StringSliceVar(&universeTags, "tag", nil, "Tag (repeatable)")
	}
	universesCreateCmd.MarkFlagRequired("title")

	universesDeleteCmd.Flags().BoolVarP(&universesConfirm, "yes", "y", false, "Delete without asking")
}
