package repositories

import (
	"context"
	"time"

	"github.com/shashiranjanraj/vastra/app/models"
	"github.com/shashiranjanraj/vastra/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CategoryRepository handles database operations for Category.
type CategoryRepository struct {
	col *mongo.Collection
}

func NewCategoryRepository(db *mongo.Database) *CategoryRepository {
	return &CategoryRepository{col: db.Collection("categories")}
}

// Create persists a new category.
func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	defer metrics.ObserveQuery("categories.insert", time.Now())

	res, err := r.col.InsertOne(ctx, c)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		c.ID = id
	}
	return nil
}

// FindByName looks up a category by its display name.
func (r *CategoryRepository) FindByName(ctx context.Context, name string) (*models.Category, error) {
	defer metrics.ObserveQuery("categories.findByName", time.Now())

	var c models.Category
	if err := r.col.FindOne(ctx, bson.M{"name": name}).Decode(&c); err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// FindBySlug looks up a category by its URL slug.
func (r *CategoryRepository) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	defer metrics.ObserveQuery("categories.findBySlug", time.Now())

	var c models.Category
	if err := r.col.FindOne(ctx, bson.M{"slug": slug}).Decode(&c); err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// FindByID looks up a category by primary key.
func (r *CategoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	defer metrics.ObserveQuery("categories.findByID", time.Now())

	var c models.Category
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// UpdateByID replaces name and slug, returning the updated record.
func (r *CategoryRepository) UpdateByID(ctx context.Context, id primitive.ObjectID, name, slug string) (*models.Category, error) {
	defer metrics.ObserveQuery("categories.update", time.Now())

	var c models.Category
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"name": name, "slug": slug}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&c)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// DeleteByID removes one category.
func (r *CategoryRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	defer metrics.ObserveQuery("categories.delete", time.Now())

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// All returns every category.
func (r *CategoryRepository) All(ctx context.Context) ([]models.Category, error) {
	defer metrics.ObserveQuery("categories.findAll", time.Now())

	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}

	categories := []models.Category{}
	if err := cur.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}
