package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"

	_ "github.com/lib/pq"

	"github.com/vncsmyrnk/questionpoll/internal/adapters/repository/postgres/migrations"
	"github.com/vncsmyrnk/questionpoll/internal/config"
)

// Usage:
//
//	migrations            apply every pending migration
//	migrations <name>     run the single file matching name, e.g. create_votes.down
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	flag.StringVar(&cfg.Database.Host, "db-host", cfg.Database.Host, "Database host")
	flag.StringVar(&cfg.Database.Port, "db-port", cfg.Database.Port, "Database port")
	flag.StringVar(&cfg.Database.User, "db-user", cfg.Database.User, "Database user")
	flag.StringVar(&cfg.Database.Password, "db-pass", cfg.Database.Password, "Database password")
	flag.StringVar(&cfg.Database.DBName, "db-name", cfg.Database.DBName, "Database name")
	flag.Parse()

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	ctx := context.Background()

	if name := flag.Arg(0); name != "" {
		file, err := migrations.Run(ctx, db, name)
		if err != nil {
			log.Fatalf("Failed to execute SQL file: %v", err)
		}
		fmt.Printf("Migration file %s executed successfully.\n", file)
		return
	}

	applied, err := migrations.Up(ctx, db)
	if err != nil {
		log.Fatalf("Failed to migrate: %v", err)
	}
	fmt.Printf("%d migration(s) applied.\n", len(applied))
	for _, name := range applied {
		fmt.Println(" -", name)
	}
}
