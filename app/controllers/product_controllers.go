package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gosimple/slug"
	"github.com/shashiranjanraj/vastra/app/middlewares"
	"github.com/shashiranjanraj/vastra/app/models"
	"github.com/shashiranjanraj/vastra/app/repositories"
	"github.com/shashiranjanraj/vastra/app/services"
	"github.com/shashiranjanraj/vastra/pkg/apperr"
	"github.com/shashiranjanraj/vastra/pkg/bind"
	"github.com/shashiranjanraj/vastra/pkg/payment"
	"github.com/shashiranjanraj/vastra/pkg/response"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fetchAllCap bounds the unpaginated product listing.
const fetchAllCap = 12

// relatedCap bounds the similar-products listing.
const relatedCap = 3

// ProductStore is the product access the controller needs.
type ProductStore interface {
	Create(ctx context.Context, p *models.Product) error
	UpdateByID(ctx context.Context, id primitive.ObjectID, p *models.Product) (*models.Product, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
	ImageByID(ctx context.Context, id primitive.ObjectID) (*models.Image, error)
	All(ctx context.Context, limit int64) ([]models.ProductWithCategory, error)
	Page(ctx context.Context, page int64) ([]models.Product, error)
	Search(ctx context.Context, keyword string) ([]models.Product, error)
	Filter(ctx context.Context, categories []primitive.ObjectID, priceRange []float64) ([]models.Product, error)
	Related(ctx context.Context, id, categoryID primitive.ObjectID, limit int64) ([]models.ProductWithCategory, error)
	ByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]models.Product, error)
	Count(ctx context.Context) (int64, error)
}

// CategoryLookup is the category access the product routes need for
// reference expansion.
type CategoryLookup interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
}

type ProductController struct {
	products   ProductStore
	categories CategoryLookup
	orders     *services.OrderService
	gateway    payment.Gateway
}

func NewProductController(products ProductStore, categories CategoryLookup, orders *services.OrderService, gateway payment.Gateway) *ProductController {
	return &ProductController{
		products:   products,
		categories: categories,
		orders:     orders,
		gateway:    gateway,
	}
}

// parseProductForm reads the multipart product fields. Each missing or
// malformed field gets its own message, matching what the admin form shows.
// Creates require the image; updates keep the stored one when none is sent.
func parseProductForm(r *http.Request, requireImage bool) (*models.Product, error) {
	name := r.FormValue("name")
	if name == "" {
		return nil, apperr.Validation("Name is Required")
	}
	description := r.FormValue("description")
	if description == "" {
		return nil, apperr.Validation("Description is Required")
	}
	rawPrice := r.FormValue("price")
	if rawPrice == "" {
		return nil, apperr.Validation("Price is Required")
	}
	price, err := strconv.ParseFloat(rawPrice, 64)
	if err != nil || price < 0 {
		return nil, apperr.Validation("Price must be a non-negative number")
	}
	rawCategory := r.FormValue("category")
	if rawCategory == "" {
		return nil, apperr.Validation("Category is Required")
	}
	category, err := primitive.ObjectIDFromHex(rawCategory)
	if err != nil {
		return nil, apperr.Validation("Invalid category id")
	}
	rawQuantity := r.FormValue("quantity")
	if rawQuantity == "" {
		return nil, apperr.Validation("Quantity is Required")
	}
	quantity, err := strconv.Atoi(rawQuantity)
	if err != nil || quantity < 0 {
		return nil, apperr.Validation("Quantity must be a non-negative integer")
	}

	file, err := bind.FormFile(r, "image", models.MaxImageBytes)
	if err != nil {
		// FormFile hands back the file header only when the size cap tripped.
		if file != nil {
			return nil, apperr.Validation("Image should be less than 1mb")
		}
		return nil, apperr.Validation("Invalid image upload")
	}
	if requireImage && file == nil {
		return nil, apperr.Validation("Image is Required")
	}

	p := &models.Product{
		Name:        name,
		Slug:        slug.Make(name),
		Description: description,
		Price:       price,
		Quantity:    quantity,
		Category:    category,
	}
	if file != nil {
		p.Image = &models.Image{Data: file.Data, ContentType: file.ContentType}
	}
	return p, nil
}

// Create adds a product from a multipart form. Admin only.
func (c *ProductController) Create(w http.ResponseWriter, r *http.Request) {
	p, err := parseProductForm(r, true)
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	if err := c.products.Create(r.Context(), p); err != nil {
		if repositories.IsDuplicateKey(err) {
			response.Fail(w, r, apperr.Conflict("Product already exists"))
			return
		}
		response.Fail(w, r, apperr.Internal("Error in creating product", err))
		return
	}
	p.Image = nil
	response.Created(w, "Product Created Successfully", response.M{"products": p})
}

// Update replaces a product's fields (and image, when sent). Admin only.
func (c *ProductController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.Fail(w, r, apperr.Validation("Invalid product id"))
		return
	}

	p, err := parseProductForm(r, false)
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	updated, err := c.products.UpdateByID(r.Context(), id, p)
	if err != nil {
		if repositories.IsDuplicateKey(err) {
			response.Fail(w, r, apperr.Conflict("Product already exists"))
			return
		}
		response.Fail(w, r, notFoundOr(err, "Product not found", "Error in updating product"))
		return
	}
	response.OK(w, "Product Updated Successfully", response.M{"products": updated})
}

// Delete removes a product by id. Admin only.
func (c *ProductController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.Fail(w, r, apperr.Validation("Invalid product id"))
		return
	}

	if err := c.products.DeleteByID(r.Context(), id); err != nil {
		response.Fail(w, r, notFoundOr(err, "Product not found", "Error while deleting product"))
		return
	}
	response.OK(w, "Product Deleted Successfully", nil)
}

// All returns the newest products, capped, with the count returned.
func (c *ProductController) All(w http.ResponseWriter, r *http.Request) {
	products, err := c.products.All(r.Context(), fetchAllCap)
	if err != nil {
		response.Fail(w, r, apperr.Internal("Error in getting products", err))
		return
	}
	response.OK(w, "All Products", response.M{
		"products": products,
		"total":    len(products),
	})
}

// Single fetches one product by slug with its category expanded.
func (c *ProductController) Single(w http.ResponseWriter, r *http.Request) {
	p, err := c.products.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		response.Fail(w, r, notFoundOr(err, "Product not found", "Error while getting single product"))
		return
	}

	view := models.ProductWithCategory{Product: *p}
	if category, err := c.categories.FindByID(r.Context(), p.Category); err == nil {
		view.Category = category
	}
	response.OK(w, "Single Product Fetched", response.M{"product": view})
}

// Image streams the stored image bytes under the stored content type.
func (c *ProductController) Image(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.Fail(w, r, apperr.Validation("Invalid product id"))
		return
	}

	img, err := c.products.ImageByID(r.Context(), id)
	if err != nil {
		response.Fail(w, r, notFoundOr(err, "Product image not found", "Error while getting product image"))
		return
	}

	ct := img.ContentType
	if ct == "" {
		ct = http.DetectContentType(img.Data)
	}
	w.Header().Set("Content-Type", ct)
	w.Write(img.Data) //nolint:errcheck
}

// List returns one fixed-size page of products, newest first.
func (c *ProductController) List(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.ParseInt(chi.URLParam(r, "page"), 10, 64)
	if err != nil || page < 1 {
		page = 1
	}

	products, err := c.products.Page(r.Context(), page)
	if err != nil {
		response.Fail(w, r, apperr.Internal("Error in per page ctrl", err))
		return
	}
	response.OK(w, "", response.M{"products": products})
}

// Search matches the keyword against product names and descriptions.
func (c *ProductController) Search(w http.ResponseWriter, r *http.Request) {
	products, err := c.products.Search(r.Context(), chi.URLParam(r, "keyword"))
	if err != nil {
		response.Fail(w, r, apperr.Internal("Error in search product", err))
		return
	}
	response.OK(w, "", response.M{"products": products})
}

// Related returns up to three products sharing the given product's category.
func (c *ProductController) Related(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.Fail(w, r, apperr.Validation("Invalid product id"))
		return
	}
	categoryID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "categoryId"))
	if err != nil {
		response.Fail(w, r, apperr.Validation("Invalid category id"))
		return
	}

	products, err := c.products.Related(r.Context(), id, categoryID, relatedCap)
	if err != nil {
		response.Fail(w, r, apperr.Internal("Error while getting related products", err))
		return
	}
	response.OK(w, "", response.M{"products": products})
}

// ByCategory returns one category and all of its products.
func (c *ProductController) ByCategory(w http.ResponseWriter, r *http.Request) {
	category, err := c.categories.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		response.Fail(w, r, notFoundOr(err, "Category not found", "Error while getting products"))
		return
	}

	products, err := c.products.ByCategory(r.Context(), category.ID)
	if err != nil {
		response.Fail(w, r, apperr.Internal("Error while getting products", err))
		return
	}
	response.OK(w, "", response.M{
		"category": category,
		"products": products,
	})
}

// Count returns the total product count for the pagination UI.
func (c *ProductController) Count(w http.ResponseWriter, r *http.Request) {
	total, err := c.products.Count(r.Context())
	if err != nil {
		response.Fail(w, r, apperr.Internal("Error in product count", err))
		return
	}
	response.OK(w, "", response.M{"total": total})
}

type filterInput struct {
	Checked []string  `json:"checked"`
	Radio   []float64 `json:"radio"`
}

// Filter applies optional category and price predicates. An empty body means
// unfiltered.
func (c *ProductController) Filter(w http.ResponseWriter, r *http.Request) {
	var in filterInput
	if _, err := bind.JSON(r, &in); err != nil {
		response.Fail(w, r, apperr.Validation(err.Error()))
		return
	}

	categories := make([]primitive.ObjectID, 0, len(in.Checked))
	for _, raw := range in.Checked {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			response.Fail(w, r, apperr.Validation("Invalid category id in filter"))
			return
		}
		categories = append(categories, id)
	}

	var priceRange []float64
	if len(in.Radio) == 2 {
		priceRange = in.Radio
	}

	products, err := c.products.Filter(r.Context(), categories, priceRange)
	if err != nil {
		response.Fail(w, r, apperr.Internal("Error while filtering products", err))
		return
	}
	response.OK(w, "", response.M{"products": products})
}

// BraintreeToken hands the frontend SDK a client token.
func (c *ProductController) BraintreeToken(w http.ResponseWriter, r *http.Request) {
	token, err := c.gateway.ClientToken(r.Context())
	if err != nil {
		response.Fail(w, r, apperr.Internal("Error while generating client token", err))
		return
	}
	response.OK(w, "", response.M{"clientToken": token})
}

type paymentInput struct {
	Cart  []services.CartItem `json:"cart"`
	Nonce string              `json:"nonce"`
}

// BraintreePayment charges the cart and records the order on success.
func (c *ProductController) BraintreePayment(w http.ResponseWriter, r *http.Request) {
	buyer, ok := middlewares.UserID(r.Context())
	if !ok {
		response.Fail(w, r, apperr.Authentication("Authorization token required"))
		return
	}

	var in paymentInput
	if _, err := bind.JSON(r, &in); err != nil {
		response.Fail(w, r, apperr.Validation(err.Error()))
		return
	}

	if _, err := c.orders.Place(r.Context(), in.Cart, in.Nonce, buyer); err != nil {
		response.Fail(w, r, err)
		return
	}
	writeOK(w)
}
