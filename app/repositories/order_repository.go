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

// OrderRepository handles database operations for Order, including the
// product/buyer expansion the order list endpoints return.
type OrderRepository struct {
	col      *mongo.Collection
	products *mongo.Collection
	users    *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{
		col:      db.Collection("orders"),
		products: db.Collection("products"),
		users:    db.Collection("users"),
	}
}

// Create persists a new order, stamping the creation time, default status,
// and id.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	defer metrics.ObserveQuery("orders.insert", time.Now())

	if o.Status == "" {
		o.Status = models.DefaultOrderStatus
	}
	o.CreatedAt = time.Now().UTC()

	res, err := r.col.InsertOne(ctx, o)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		o.ID = id
	}
	return nil
}

// ByBuyer returns the buyer's orders with product and buyer details expanded.
func (r *OrderRepository) ByBuyer(ctx context.Context, buyer primitive.ObjectID) ([]models.OrderView, error) {
	defer metrics.ObserveQuery("orders.byBuyer", time.Now())

	return r.findExpanded(ctx, bson.M{"buyer": buyer}, nil)
}

// All returns every order, newest first, with the same expansion.
func (r *OrderRepository) All(ctx context.Context) ([]models.OrderView, error) {
	defer metrics.ObserveQuery("orders.findAll", time.Now())

	sort := bson.D{{Key: "createdAt", Value: -1}}
	return r.findExpanded(ctx, bson.M{}, sort)
}

// UpdateStatus replaces the status of one order and returns the result.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Order, error) {
	defer metrics.ObserveQuery("orders.updateStatus", time.Now())

	var o models.Order
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&o)
	if err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

// findExpanded loads orders, then resolves their product references (image
// bytes projected out) and buyer names with follow-up queries. A product
// deleted since purchase simply drops out of the expansion.
func (r *OrderRepository) findExpanded(ctx context.Context, filter bson.M, sort bson.D) ([]models.OrderView, error) {
	opts := options.Find()
	if sort != nil {
		opts.SetSort(sort)
	}

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	orders := []models.Order{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return []models.OrderView{}, nil
	}

	productIDs := make([]primitive.ObjectID, 0)
	buyerIDs := make([]primitive.ObjectID, 0)
	seenProduct := map[primitive.ObjectID]bool{}
	seenBuyer := map[primitive.ObjectID]bool{}
	for _, o := range orders {
		for _, pid := range o.Products {
			if !seenProduct[pid] {
				seenProduct[pid] = true
				productIDs = append(productIDs, pid)
			}
		}
		if !seenBuyer[o.Buyer] {
			seenBuyer[o.Buyer] = true
			buyerIDs = append(buyerIDs, o.Buyer)
		}
	}

	productsByID, err := r.loadProducts(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	buyersByID, err := r.loadBuyers(ctx, buyerIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.OrderView, 0, len(orders))
	for _, o := range orders {
		view := models.OrderView{Order: o, Products: []models.Product{}}
		for _, pid := range o.Products {
			if p, ok := productsByID[pid]; ok {
				view.Products = append(view.Products, p)
			}
		}
		if b, ok := buyersByID[o.Buyer]; ok {
			view.Buyer = b
		} else {
			view.Buyer = models.OrderBuyer{ID: o.Buyer}
		}
		views = append(views, view)
	}
	return views, nil
}

func (r *OrderRepository) loadProducts(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	byID := map[primitive.ObjectID]models.Product{}
	if len(ids) == 0 {
		return byID, nil
	}

	cur, err := r.products.Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"image": 0}),
	)
	if err != nil {
		return nil, err
	}
	products := []models.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, err
	}
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID, nil
}

func (r *OrderRepository) loadBuyers(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.OrderBuyer, error) {
	byID := map[primitive.ObjectID]models.OrderBuyer{}
	if len(ids) == 0 {
		return byID, nil
	}

	cur, err := r.users.Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"name": 1}),
	)
	if err != nil {
		return nil, err
	}
	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	for _, u := range users {
		byID[u.ID] = models.OrderBuyer{ID: u.ID, Name: u.Name}
	}
	return byID, nil
}
