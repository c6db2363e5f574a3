package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var reorderCmd = &cobra.Command{
	Use:   "reorder [id...]",
	Short: "Move tasks to the front of the manual order",
	Long: `Reorder places the given tasks first, in the order given. Tasks not
listed keep their relative order after them. Unknown ids are ignored.`,
	Args: cobra.MinimumNArgs(1),
	RunE: withStore(func(cmd *cobra.Command, args []string) error {
		return reorderTasks(cmd.Context(), args)
	}),
}

func reorderTasks(ctx context.Context, ids []string) error {
	if err := todos.Reorder(ctx, ids); err != nil {
		return err
	}
	fmt.Printf("moved %d tasks to the front\n", len(ids))
	return nil
}
