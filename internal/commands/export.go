package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"notedown/internal/taskfile"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write all tasks to a JSON snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: withStore(func(cmd *cobra.Command, args []string) error {
		f, err := taskfile.Export(cmd.Context(), todos)
		if err != nil {
			return err
		}
		if err := f.Save(args[0]); err != nil {
			return err
		}
		fmt.Printf("exported %d tasks to %s\n", len(f.Tasks), args[0])
		return nil
	}),
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Recreate tasks from a JSON snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: withStore(func(cmd *cobra.Command, args []string) error {
		f, err := taskfile.Load(args[0])
		if err != nil {
			return err
		}
		n, err := taskfile.Import(cmd.Context(), todos, f)
		if err != nil {
			return fmt.Errorf("imported %d of %d tasks: %w", n, len(f.Tasks), err)
		}
		fmt.Printf("imported %d tasks from %s\n", n, args[0])
		return nil
	}),
}
