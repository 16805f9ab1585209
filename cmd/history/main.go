package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"sentraSalon/internal/auth"
	"sentraSalon/internal/config"
	"sentraSalon/internal/storage"
)

func main() {
	var (
		configPath   = flag.String("config", "config.yaml", "Path to config file")
		list         = flag.Bool("list", false, "List recent transforms")
		limit        = flag.Int("limit", 20, "How many entries -list prints")
		deleteID     = flag.String("delete", "", "Delete a history entry by id")
		hashPassword = flag.String("hash-password", "", "Print a bcrypt hash for ADMIN_PASSWORD_HASH and exit")
	)
	flag.Parse()

	if *hashPassword != "" {
		hash, err := auth.HashPassword(*hashPassword)
		if err != nil {
			log.Fatalf("hash password: %v", err)
		}
		fmt.Println(hash)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("database_url is required in config to manage history")
	}

	ctx := context.Background()
	store, err := storage.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect store: %v", err)
	}
	defer store.Close()

	switch {
	case *deleteID != "":
		if err := store.Delete(ctx, *deleteID); err != nil {
			log.Fatalf("delete entry: %v", err)
		}
		fmt.Printf("Entry %s deleted\n", *deleteID)
	case *list:
		if err := listEntries(ctx, store, *limit); err != nil {
			log.Fatalf("list entries: %v", err)
		}
	default:
		log.Fatal("nothing to do (use -list, -delete or -hash-password)")
	}
}

func listEntries(ctx context.Context, store storage.Store, limit int) error {
	entries, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}
	fmt.Printf("%-36s %-20s %-11s %-10s %s\n", "ID", "CREATED", "BACKEND", "STATUS", "IMAGE")
	for _, e := range entries {
		fmt.Printf("%-36s %-20s %-11s %-10s %s\n", e.ID, e.CreatedAt.Format("2006-01-02 15:04:05"), e.Backend, e.Status, e.ImageKey)
	}
	return nil
}
