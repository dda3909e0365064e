package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shashiranjanraj/vastra/config"
	"github.com/shashiranjanraj/vastra/database/migrations"
	"github.com/shashiranjanraj/vastra/database/seeders"
	"github.com/shashiranjanraj/vastra/pkg/database"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
)

// withDB connects, runs fn, and disconnects.
func withDB(parent context.Context, fn func(ctx context.Context, db *mongo.Database) error) error {
	if err := config.Load(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(parent, 60*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, config.MongoURI(), config.MongoDB())
	if err != nil {
		return err
	}
	defer database.Disconnect(ctx, db) //nolint:errcheck

	return fn(ctx, db)
}

var dbIndexCmd = &cobra.Command{
	Use:   "db:index",
	Short: "Create the MongoDB indexes the application relies on",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDB(cmd.Context(), func(ctx context.Context, db *mongo.Database) error {
			if err := migrations.EnsureIndexes(ctx, db); err != nil {
				return err
			}
			fmt.Println("indexes ensured")
			return nil
		})
	},
}

var dbSeedCmd = &cobra.Command{
	Use:   "db:seed",
	Short: "Seed the admin account and demo catalogue",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDB(cmd.Context(), func(ctx context.Context, db *mongo.Database) error {
			if err := seeders.RunAll(ctx, db); err != nil {
				return err
			}
			fmt.Println("seeded")
			return nil
		})
	},
}
