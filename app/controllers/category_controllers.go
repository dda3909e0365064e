package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gosimple/slug"
	"github.com/shashiranjanraj/vastra/app/models"
	"github.com/shashiranjanraj/vastra/app/repositories"
	"github.com/shashiranjanraj/vastra/pkg/apperr"
	"github.com/shashiranjanraj/vastra/pkg/bind"
	"github.com/shashiranjanraj/vastra/pkg/response"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CategoryStore is the category access the controller needs.
type CategoryStore interface {
	Create(ctx context.Context, c *models.Category) error
	FindByName(ctx context.Context, name string) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	UpdateByID(ctx context.Context, id primitive.ObjectID, name, slug string) (*models.Category, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
	All(ctx context.Context) ([]models.Category, error)
}

type CategoryController struct {
	categories CategoryStore
}

func NewCategoryController(categories CategoryStore) *CategoryController {
	return &CategoryController{categories: categories}
}

type categoryInput struct {
	Name string `json:"name" validate:"required"`
}

// Create adds a category, deriving the slug from the name. A duplicate name
// is a conflict.
func (c *CategoryController) Create(w http.ResponseWriter, r *http.Request) {
	var in categoryInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Fail(w, r, apperr.Validation(err.Error()))
		return
	} else if errs != nil {
		response.ValidationFailed(w, errs)
		return
	}

	_, err := c.categories.FindByName(r.Context(), in.Name)
	switch {
	case err == nil:
		response.Fail(w, r, apperr.Conflict("Category Already Exists"))
		return
	case !errors.Is(err, repositories.ErrNotFound):
		response.Fail(w, r, apperr.Internal("Error in Category", err))
		return
	}

	category := &models.Category{Name: in.Name, Slug: slug.Make(in.Name)}
	if err := c.categories.Create(r.Context(), category); err != nil {
		// The unique slug index may win a race the name read missed.
		if repositories.IsDuplicateKey(err) {
			response.Fail(w, r, apperr.Conflict("Category Already Exists"))
			return
		}
		response.Fail(w, r, apperr.Internal("Error in Category", err))
		return
	}
	response.Created(w, "New category created", response.M{"category": category})
}

// Update renames a category, re-deriving the slug.
func (c *CategoryController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.Fail(w, r, apperr.Validation("Invalid category id"))
		return
	}

	var in categoryInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Fail(w, r, apperr.Validation(err.Error()))
		return
	} else if errs != nil {
		response.ValidationFailed(w, errs)
		return
	}

	category, err := c.categories.UpdateByID(r.Context(), id, in.Name, slug.Make(in.Name))
	if err != nil {
		response.Fail(w, r, notFoundOr(err, "Category not found", "Error while updating category"))
		return
	}
	response.OK(w, "Category Updated Successfully", response.M{"category": category})
}

// Delete removes a category by id.
func (c *CategoryController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.Fail(w, r, apperr.Validation("Invalid category id"))
		return
	}

	if err := c.categories.DeleteByID(r.Context(), id); err != nil {
		response.Fail(w, r, notFoundOr(err, "Category not found", "Error while deleting category"))
		return
	}
	response.OK(w, "Category Deleted Successfully", nil)
}

// All lists every category.
func (c *CategoryController) All(w http.ResponseWriter, r *http.Request) {
	categories, err := c.categories.All(r.Context())
	if err != nil {
		response.Fail(w, r, apperr.Internal("Error while getting all categories", err))
		return
	}
	response.OK(w, "All Categories List", response.M{"category": categories})
}

// Single fetches one category by slug.
func (c *CategoryController) Single(w http.ResponseWriter, r *http.Request) {
	category, err := c.categories.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		response.Fail(w, r, notFoundOr(err, "Category not found", "Error while getting single category"))
		return
	}
	response.OK(w, "Get Single Category Successfully", response.M{"category": category})
}
