package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newDataDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "data-dir",
		Usage:   "Directory containing seed CSV files",
		Value:   "./data/seeds",
		EnvVars: []string{"SEED_DATA_DIR"},
	}
}

// nullIfEmpty returns NULL if the string is empty, otherwise returns the string
func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Seed the database with initial data",
		Flags: []cli.Flag{
			newDBURLFlag(),
		},
		Commands: []*cli.Command{
			{
				Name:   "master",
				Usage:  "Seed master data (suppliers, components, BOM, SKU mappings)",
				Flags:  []cli.Flag{newDBURLFlag(), newDataDirFlag()},
				Action: runMasterSeeder,
			},
			{
				Name:   "orders",
				Usage:  "Seed historical order line items",
				Flags:  []cli.Flag{newDBURLFlag(), newDataDirFlag()},
				Action: runOrderSeeder,
			},
			{
				Name:  "all",
				Usage: "Seed master data and order history",
				Flags: []cli.Flag{newDBURLFlag(), newDataDirFlag()},
				Action: func(c *cli.Context) error {
					if err := runMasterSeeder(c); err != nil {
						return fmt.Errorf("error running master seed: %w", err)
					}
					if err := runOrderSeeder(c); err != nil {
						return fmt.Errorf("error running order seed: %w", err)
					}
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runMasterSeeder(c *cli.Context) error {
	return withTx(c, func(ctx context.Context, tx *sql.Tx) error {
		dataDir := c.String("data-dir")
		if err := seedSuppliers(ctx, tx, dataDir); err != nil {
			return fmt.Errorf("failed to seed suppliers: %w", err)
		}
		if err := seedComponents(ctx, tx, dataDir); err != nil {
			return fmt.Errorf("failed to seed components: %w", err)
		}
		if err := seedBOMEntries(ctx, tx, dataDir); err != nil {
			return fmt.Errorf("failed to seed bom entries: %w", err)
		}
		if err := seedSKUMappings(ctx, tx, dataDir); err != nil {
			return fmt.Errorf("failed to seed sku mappings: %w", err)
		}
		return nil
	})
}

func runOrderSeeder(c *cli.Context) error {
	return withTx(c, func(ctx context.Context, tx *sql.Tx) error {
		if err := seedOrderLineItems(ctx, tx, c.String("data-dir")); err != nil {
			return fmt.Errorf("failed to seed order line items: %w", err)
		}
		return nil
	})
}

func withTx(c *cli.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	log.Println("Starting database seeding...")
	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Println("Database seeding completed successfully!")
	return nil
}
