package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"notedown/pkg/todo"
)

var addNote string

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a new task",
	Args:  cobra.MinimumNArgs(1),
	RunE: withStore(func(cmd *cobra.Command, args []string) error {
		t, err := todos.Create(cmd.Context(), todo.CreateInput{
			Title:  strings.Join(args, " "),
			NoteID: addNote,
		})
		if err != nil {
			return err
		}
		fmt.Printf("added %s  %s\n", t.ID, t.Title)
		return nil
	}),
}

func init() {
	addCmd.Flags().StringVar(&addNote, "note", "", "attach the task to a note id")
}
