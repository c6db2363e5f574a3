package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var doneCmd = &cobra.Command{
	Use:   "done [id]",
	Short: "Toggle a task's completed flag",
	Args:  cobra.ExactArgs(1),
	RunE: withStore(func(cmd *cobra.Command, args []string) error {
		t, err := todos.Toggle(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		state := "pending"
		if t.Completed {
			state = "done"
		}
		fmt.Printf("%s is now %s\n", t.ID, state)
		return nil
	}),
}
