package seeders

import (
	"context"
	"errors"
	"time"

	"github.com/gosimple/slug"
	"github.com/shashiranjanraj/vastra/app/models"
	"github.com/shashiranjanraj/vastra/app/repositories"
	"github.com/shashiranjanraj/vastra/config"
	"github.com/shashiranjanraj/vastra/pkg/auth"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func init() {
	Register("admin", SeedAdmin)
	Register("catalog", SeedCatalog)
}

// SeedAdmin inserts one elevated account for local bring-up. The password
// comes from SEED_ADMIN_PASSWORD so a real secret never lands in source.
func SeedAdmin(ctx context.Context, db *mongo.Database) error {
	users := db.Collection("users")

	email := config.Get("SEED_ADMIN_EMAIL", "admin@vastra.local")
	err := users.FindOne(ctx, bson.M{"email": email}).Err()
	if err == nil {
		return nil // already seeded
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	password, err := auth.HashPassword(config.Get("SEED_ADMIN_PASSWORD", "changeme123"))
	if err != nil {
		return err
	}
	answer, err := auth.HashPassword(config.Get("SEED_ADMIN_ANSWER", "cricket"))
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = users.InsertOne(ctx, models.User{
		Name:      "Admin",
		Email:     email,
		Password:  password,
		Phone:     "0000000000",
		Address:   "HQ",
		Answer:    answer,
		IsAdmin:   true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return err
}

// SeedCatalog inserts a small demo catalogue when the store is empty.
func SeedCatalog(ctx context.Context, db *mongo.Database) error {
	categoryRepo := repositories.NewCategoryRepository(db)
	productRepo := repositories.NewProductRepository(db)

	count, err := db.Collection("categories").EstimatedDocumentCount(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	catalog := map[string][]models.Product{
		"Sarees": {
			{Name: "Banarasi Silk Saree", Description: "Handwoven Banarasi silk with zari border", Price: 4999, Quantity: 12},
			{Name: "Cotton Handloom Saree", Description: "Lightweight everyday cotton saree", Price: 1299, Quantity: 30},
		},
		"Kurtas": {
			{Name: "Chikankari Kurta", Description: "Lucknowi chikankari on soft mulmul", Price: 1799, Quantity: 24},
		},
		"Dupattas": {
			{Name: "Bandhani Dupatta", Description: "Rajasthani bandhani tie-dye dupatta", Price: 699, Quantity: 40},
		},
	}

	for name, products := range catalog {
		category := &models.Category{Name: name, Slug: slug.Make(name)}
		if err := categoryRepo.Create(ctx, category); err != nil {
			return err
		}
		for i := range products {
			p := products[i]
			p.Slug = slug.Make(p.Name)
			p.Category = category.ID
			if err := productRepo.Create(ctx, &p); err != nil {
				return err
			}
		}
	}
	return nil
}
