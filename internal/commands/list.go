package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"notedown/pkg/todo"
)

var (
	listAll   bool
	listDone  bool
	listSort  string
	listDesc  bool
	listLimit int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks (pending by default)",
	RunE: withStore(func(cmd *cobra.Command, args []string) error {
		f := todo.ListFilter{SortBy: listSort, Limit: listLimit}
		if listDesc {
			f.SortOrder = todo.SortDesc
		}
		if !listAll {
			completed := listDone
			f.Completed = &completed
		}

		tasks, err := todos.List(cmd.Context(), f)
		if err != nil {
			return err
		}
		if len(tasks) == 0 {
			fmt.Println("no tasks")
			return nil
		}
		for _, t := range tasks {
			mark := " "
			if t.Completed {
				mark = "x"
			}
			note := ""
			if t.NoteID != "" {
				note = "  (note " + t.NoteID + ")"
			}
			fmt.Printf("[%s] %s  %s%s\n", mark, t.ID, t.Title, note)
		}
		return nil
	}),
}

func init() {
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "include completed tasks")
	listCmd.Flags().BoolVar(&listDone, "done", false, "show only completed tasks")
	listCmd.Flags().StringVar(&listSort, "sort", todo.SortByPosition, "sort key: position, created_at, updated_at, title")
	listCmd.Flags().BoolVar(&listDesc, "desc", false, "sort descending")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "cap the number of results")
}
