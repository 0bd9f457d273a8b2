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
	notesQuery   string
	notesTag     string
	notesJSON    bool
	noteTitle    string
	noteContent  string
	noteTags     []string
	notesConfirm bool
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Manage your private notes",
}

// loadNotes opens the app and loads the caller's notes.
func loadNotes(ctx context.Context) (*noot.App, func()) {
	app, cleanup := openApp()
	if err := app.Notes.Load(ctx); err != nil {
		cleanup()
		fatal("Failed to load notes", err)
	}
	return app, cleanup
}

func describeNote(n core.Note) string {
	return strings.TrimSpace(n.Title + " " + formatTags(n.Tags))
}

var notesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes, filtered locally by text and tag",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app, cleanup := loadNotes(context.Background())
		defer cleanup()

		entries := core.Filter(app.Notes.View(), notesQuery)
		if notesTag != "" {
			entries = core.FilterByTag(entries, notesTag)
		}
		if err := printEntries(entries, notesJSON, describeNote); err != nil {
			fail(cleanup, "Error encoding JSON", err)
		}
	},
}

var notesSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search notes on the actor",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		app, cleanup := loadNotes(ctx)
		defer cleanup()

		entries, err := app.Notes.Search(ctx, args[0])
		if err != nil {
			fail(cleanup, "Failed to search notes", err)
		}
		if err := printEntries(entries, notesJSON, describeNote); err != nil {
			fail(cleanup, "Error encoding JSON", err)
		}
	},
}

var notesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a note",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		app, cleanup := loadNotes(ctx)
		defer cleanup()

		if _, err := app.Notes.OpenCreate(); err != nil {
			fail(cleanup, "Failed to create note", err)
		}
		note, err := app.Notes.Commit(ctx, core.Note{Title: noteTitle, Content: noteContent, Tags: noteTags})
		if err != nil {
			fail(cleanup, "Failed to create note", err)
		}
		fmt.Printf("Note created at position %d: %s\n", app.Notes.Len()-1, note.ID)
	},
}

var notesViewCmd = &cobra.Command{
	Use:   "view <position>",
	Short: "Show a note",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		pos := parsePosition(args[0])
		app, cleanup := loadNotes(context.Background())
		defer cleanup()

		d, err := app.Notes.OpenView(pos)
		if err != nil {
			fail(cleanup, "Failed to open note", err)
		}
		defer app.Notes.Close()

		if notesJSON {
			if err := printJSON(d.Record); err != nil {
				fail(cleanup, "Error encoding JSON", err)
			}
			return
		}
		fmt.Printf("# %s\n", d.Record.Title)
		if tags := formatTags(d.Record.Tags); tags != "" {
			fmt.Printf("tags: %s\n", tags)
		}
		fmt.Printf("\n%s\n", d.Record.Content)
	},
}

var notesEditCmd = &cobra.Command{
	Use:   "edit <position>",
	Short: "Update a note; omitted flags keep their value",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		pos := parsePosition(args[0])
		app, cleanup := loadNotes(ctx)
		defer cleanup()

		d, err := app.Notes.OpenEdit(pos)
		if err != nil {
			fail(cleanup, "Failed to open note", err)
		}
		draft := d.Record
		if cmd.Flags().Changed("title") {
			draft.Title = noteTitle
		}
		if cmd.Flags().Changed("content") {
			draft.Content = noteContent
		}
		if cmd.Flags().Changed("tag") {
			draft.Tags = noteTags
		}
		note, err := app.Notes.Commit(ctx, draft)
		if err != nil {
			fail(cleanup, "Failed to update note", err)
		}
		fmt.Printf("Note updated: %s\n", note.Title)
	},
}

var notesDeleteCmd = &cobra.Command{
	Use:   "delete <position>",
	Short: "Delete a note",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		pos := parsePosition(args[0])
		app, cleanup := loadNotes(ctx)
		defer cleanup()

		d, err := app.Notes.OpenDelete(pos)
		if err != nil {
			fail(cleanup, "Failed to open note", err)
		}
		if !notesConfirm && !confirm(cmd.InOrStdin(), fmt.Sprintf("Delete %q?", d.Title)) {
			app.Notes.Close()
			fmt.Println("Cancelled")
			return
		}
		if err := app.Notes.ConfirmDelete(ctx); err != nil {
			fail(cleanup, "Failed to delete note", err)
		}
		fmt.Printf("Note deleted: %s\n", d.Title)
	},
}

func init() {
	rootCmd.AddCommand(notesCmd)
	notesCmd.AddCommand(notesListCmd, notesSearchCmd, notesAddCmd, notesViewCmd, notesEditCmd, notesDeleteCmd)

	notesListCmd.Flags().StringVar(&notesQuery, "query", "", "Filter by text in title, content or tags")
	notesListCmd.Flags().StringVar(&notesTag, "tag", "", "Filter by tag")
	for _, c := range []*cobra.Command{notesListCmd, notesSearchCmd, notesViewCmd} {
		c.Flags().BoolVar(&notesJSON, "json", false, "Output in JSON format")
	}

	for _, c := range []*cobra.Command{notesAddCmd, notesEditCmd} {
		c.Flags().StringVar(&noteTitle, "title", "", "Note title")
		c.Flags().StringVar(&noteContent, "content", "", "Note content (markdown)")
		c.Flags().StringSliceVar(&noteTags, "tag", nil, "Tag (repeatable)")
	}
	notesAddCmd.MarkFlagRequired("title")

	notesDeleteCmd.Flags().BoolVarP(&notesConfirm, "yes", "y", false, "Delete without asking")
}
