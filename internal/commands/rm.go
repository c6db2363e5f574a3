package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"notedown/internal/cascade"
)

var rmNote bool

var rmCmd = &cobra.Command{
	Use:   "rm [id]",
	Short: "Delete a task, or all tasks of a note with --note",
	Args:  cobra.ExactArgs(1),
	RunE: withStore(func(cmd *cobra.Command, args []string) error {
		if rmNote {
			n, err := cascade.NewHook(todos).NoteDeleted(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("removed %d tasks for note %s\n", n, args[0])
			return nil
		}
		if err := todos.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("removed %s\n", args[0])
		return nil
	}),
}

func init() {
	rmCmd.Flags().BoolVar(&rmNote, "note", false, "treat the argument as a note id and cascade")
}
