package main

import (
	"context"
	"fmt"
	"os"

	"fiscal-engine/internal/db"

	"github.com/joho/godotenv"
)

// Applies a migration file (default: the full schema) against DATABASE_URL.
//
//	go run ./cmd/migrate [migrations/001_schema.sql]
func main() {
	_ = godotenv.Load()

	path := "migrations/001_schema.sql"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	ctx := context.Background()
	pool, err := db.NewPoolFromEnv(ctx)
	if err != nil {
		fmt.Printf("Failed to connect to DB: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	sqlFile, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Failed to read sql file: %v\n", err)
		os.Exit(1)
	}

	if _, err := pool.Exec(ctx, string(sqlFile)); err != nil {
		fmt.Printf("Migration failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Migration successful.")
}
