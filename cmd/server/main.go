package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"notedown/internal/api"
	"notedown/internal/cascade"
	"notedown/internal/config"
	"notedown/internal/db"
	"notedown/pkg/kv"
	"notedown/pkg/todo"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(os.Getenv("NOTEDOWN_CONFIG"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var backing kv.Store
	switch cfg.Storage.Backend {
	case "postgres":
		pool, err := db.Connect(ctx, cfg.Storage.URL)
		if err != nil {
			log.Fatalf("connect: %v", err)
		}
		defer pool.Close()
		pg := kv.NewPgStore(pool, "todo_kv")
		if err := pg.EnsureTable(ctx); err != nil {
			log.Fatalf("ensure kv table: %v", err)
		}
		backing = pg
	case "sqlite":
		s, err := kv.OpenSQLite(cfg.Storage.Path)
		if err != nil {
			log.Fatalf("open sqlite: %v", err)
		}
		defer s.Close()
		backing = s
	default:
		backing = kv.NewMem()
	}

	todos := todo.NewBus(todo.NewStore(backing))
	hook := cascade.NewHook(todos)
	server := api.New(todos, hook)

	log.Printf("notedown listening on %s (%s backend)", cfg.Addr, cfg.Storage.Backend)
	if err := http.ListenAndServe(cfg.Addr, server); err != nil {
		log.Fatalf("listen: %v", err)
	}
}
