package repositories

import (
	"context"
	"regexp"
	"time"

	"github.com/shashiranjanraj/vastra/app/models"
	"github.com/shashiranjanraj/vastra/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PageSize is the fixed page size of the paginated product list.
const PageSize = 6

// excludeImage keeps the inline blob out of list and detail reads; only the
// dedicated image route loads it.
var excludeImage = bson.M{"image": 0}

// ProductRepository handles database operations for Product, including the
// category expansion the storefront's product cards read.
type ProductRepository struct {
	col        *mongo.Collection
	categories *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{
		col:        db.Collection("products"),
		categories: db.Collection("categories"),
	}
}

// Create persists a new product, stamping timestamps and the id.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	defer metrics.ObserveQuery("products.insert", time.Now())

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	res, err := r.col.InsertOne(ctx, p)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = id
	}
	return nil
}

// UpdateByID replaces the product's fields (and image, when given) and
// returns the updated record without image bytes.
func (r *ProductRepository) UpdateByID(ctx context.Context, id primitive.ObjectID, p *models.Product) (*models.Product, error) {
	defer metrics.ObserveQuery("products.update", time.Now())

	set := bson.M{
		"name":        p.Name,
		"slug":        p.Slug,
		"description": p.Description,
		"price":       p.Price,
		"quantity":    p.Quantity,
		"category":    p.Category,
		"updatedAt":   time.Now().UTC(),
	}
	if p.Image != nil {
		set["image"] = p.Image
	}

	var updated models.Product
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(excludeImage),
	).Decode(&updated)
	if err != nil {
		return nil, notFound(err)
	}
	return &updated, nil
}

// DeleteByID removes one product.
func (r *ProductRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	defer metrics.ObserveQuery("products.delete", time.Now())

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// FindBySlug returns one product without image bytes.
func (r *ProductRepository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	defer metrics.ObserveQuery("products.findBySlug", time.Now())

	var p models.Product
	err := r.col.FindOne(ctx, bson.M{"slug": slug},
		options.FindOne().SetProjection(excludeImage),
	).Decode(&p)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// ImageByID loads only the image subdocument.
func (r *ProductRepository) ImageByID(ctx context.Context, id primitive.ObjectID) (*models.Image, error) {
	defer metrics.ObserveQuery("products.image", time.Now())

	var p models.Product
	err := r.col.FindOne(ctx, bson.M{"_id": id},
		options.FindOne().SetProjection(bson.M{"image": 1}),
	).Decode(&p)
	if err != nil {
		return nil, notFound(err)
	}
	if p.Image == nil || len(p.Image.Data) == 0 {
		return nil, ErrNotFound
	}
	return p.Image, nil
}

// All returns up to limit products, newest first, without image bytes and
// with category references expanded. limit <= 0 means no cap.
func (r *ProductRepository) All(ctx context.Context, limit int64) ([]models.ProductWithCategory, error) {
	defer metrics.ObserveQuery("products.findAll", time.Now())

	opts := options.Find().
		SetProjection(excludeImage).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	products, err := r.find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	return r.withCategories(ctx, products)
}

// Page returns one 1-indexed page of PageSize products, newest first.
func (r *ProductRepository) Page(ctx context.Context, page int64) ([]models.Product, error) {
	defer metrics.ObserveQuery("products.page", time.Now())

	if page < 1 {
		page = 1
	}
	opts := options.Find().
		SetProjection(excludeImage).
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page - 1) * PageSize).
		SetLimit(PageSize)
	return r.find(ctx, bson.M{}, opts)
}

// Search matches keyword case-insensitively against name or description.
func (r *ProductRepository) Search(ctx context.Context, keyword string) ([]models.Product, error) {
	defer metrics.ObserveQuery("products.search", time.Now())

	quoted := regexp.QuoteMeta(keyword)
	pattern := primitive.Regex{Pattern: quoted, Options: "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"name": pattern},
		bson.M{"description": pattern},
	}}
	return r.find(ctx, filter, options.Find().SetProjection(excludeImage))
}

// Filter applies optional category-membership and inclusive price-range
// predicates. Empty categories and a nil range mean unfiltered.
func (r *ProductRepository) Filter(ctx context.Context, categories []primitive.ObjectID, priceRange []float64) ([]models.Product, error) {
	defer metrics.ObserveQuery("products.filter", time.Now())

	filter := bson.M{}
	if len(categories) > 0 {
		filter["category"] = bson.M{"$in": categories}
	}
	if len(priceRange) == 2 {
		filter["price"] = bson.M{"$gte": priceRange[0], "$lte": priceRange[1]}
	}
	return r.find(ctx, filter, options.Find().SetProjection(excludeImage))
}

// Related returns up to limit products in the same category, excluding the
// given product, with category references expanded.
func (r *ProductRepository) Related(ctx context.Context, id, categoryID primitive.ObjectID, limit int64) ([]models.ProductWithCategory, error) {
	defer metrics.ObserveQuery("products.related", time.Now())

	filter := bson.M{
		"category": categoryID,
		"_id":      bson.M{"$ne": id},
	}
	products, err := r.find(ctx, filter, options.Find().SetProjection(excludeImage).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	return r.withCategories(ctx, products)
}

// ByCategory returns every product in one category, without image bytes.
func (r *ProductRepository) ByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]models.Product, error) {
	defer metrics.ObserveQuery("products.byCategory", time.Now())

	return r.find(ctx, bson.M{"category": categoryID},
		options.Find().SetProjection(excludeImage))
}

// Count returns the total product count for pagination UIs.
func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	defer metrics.ObserveQuery("products.count", time.Now())

	return r.col.EstimatedDocumentCount(ctx)
}

// withCategories resolves the distinct category references of products with
// one $in lookup and stitches the documents onto each product. A dangling
// reference leaves the category nil.
func (r *ProductRepository) withCategories(ctx context.Context, products []models.Product) ([]models.ProductWithCategory, error) {
	views := make([]models.ProductWithCategory, 0, len(products))
	if len(products) == 0 {
		return views, nil
	}

	ids := make([]primitive.ObjectID, 0)
	seen := map[primitive.ObjectID]bool{}
	for _, p := range products {
		if !seen[p.Category] {
			seen[p.Category] = true
			ids = append(ids, p.Category)
		}
	}

	cur, err := r.categories.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	categories := []models.Category{}
	if err := cur.All(ctx, &categories); err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*models.Category, len(categories))
	for i := range categories {
		byID[categories[i].ID] = &categories[i]
	}

	for _, p := range products {
		views = append(views, models.ProductWithCategory{Product: p, Category: byID[p.Category]})
	}
	return views, nil
}

func (r *ProductRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Product, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	products := []models.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}
