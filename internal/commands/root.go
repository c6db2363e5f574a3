// Package commands implements the notedown CLI.
package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"notedown/internal/config"
	"notedown/pkg/kv"
	"notedown/pkg/todo"
)

var rootCmd = &cobra.Command{
	Use:   "notedown",
	Short: "Manage note-attached todos from the terminal",
	Long: `notedown is the command-line surface of the notedown task store.
Tasks live in an embedded SQLite database and can be attached to notes.`,
}

var dbPath string

// todos is the shared store handle, opened lazily by withStore.
var todos *todo.Bus

var storeCloser func() error

// withStore wraps a command run func to open the store first.
func withStore(fn func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := openStore(); err != nil {
			return err
		}
		return fn(cmd, args)
	}
}

func openStore() error {
	path := dbPath
	if path == "" {
		cfg, err := config.Load("")
		if err != nil {
			return err
		}
		path = cfg.Storage.Path
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	backing, err := kv.OpenSQLite(path)
	if err != nil {
		return err
	}
	todos = todo.NewBus(todo.NewStore(backing))
	storeCloser = backing.Close
	return nil
}

// Execute runs the root command.
func Execute() error {
	defer func() {
		if storeCloser != nil {
			storeCloser()
		}
	}()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the sqlite database (default from config)")
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(reorderCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
