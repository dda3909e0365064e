package controllers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shashiranjanraj/vastra/app/models"
	"github.com/shashiranjanraj/vastra/app/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type fakeProducts struct {
	items     []*models.Product
	createErr error

	filterCategories []primitive.ObjectID
	filterRange      []float64
}

func (f *fakeProducts) Create(_ context.Context, p *models.Product) error {
	if f.createErr != nil {
		return f.createErr
	}
	p.ID = primitive.NewObjectID()
	// Snapshot the product as a real datastore would at insert time, so the
	// caller mutating p afterwards does not alter what was "stored".
	stored := *p
	f.items = append(f.items, &stored)
	return nil
}

func (f *fakeProducts) UpdateByID(_ context.Context, id primitive.ObjectID, p *models.Product) (*models.Product, error) {
	for _, existing := range f.items {
		if existing.ID == id {
			p.ID = id
			*existing = *p
			return existing, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeProducts) DeleteByID(_ context.Context, id primitive.ObjectID) error {
	for i, p := range f.items {
		if p.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeProducts) FindBySlug(_ context.Context, slug string) (*models.Product, error) {
	for _, p := range f.items {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeProducts) ImageByID(_ context.Context, id primitive.ObjectID) (*models.Image, error) {
	for _, p := range f.items {
		if p.ID == id && p.Image != nil {
			return p.Image, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeProducts) all(limit int64) []models.Product {
	out := []models.Product{}
	for _, p := range f.items {
		if limit > 0 && int64(len(out)) == limit {
			break
		}
		out = append(out, *p)
	}
	return out
}

func (f *fakeProducts) expanded(limit int64) []models.ProductWithCategory {
	views := []models.ProductWithCategory{}
	for _, p := range f.all(limit) {
		views = append(views, models.ProductWithCategory{Product: p})
	}
	return views
}

func (f *fakeProducts) All(_ context.Context, limit int64) ([]models.ProductWithCategory, error) {
	return f.expanded(limit), nil
}

func (f *fakeProducts) Page(context.Context, int64) ([]models.Product, error) {
	return f.all(0), nil
}

func (f *fakeProducts) Search(context.Context, string) ([]models.Product, error) {
	return f.all(0), nil
}

func (f *fakeProducts) Filter(_ context.Context, categories []primitive.ObjectID, priceRange []float64) ([]models.Product, error) {
	f.filterCategories = categories
	f.filterRange = priceRange
	return f.all(0), nil
}

func (f *fakeProducts) Related(_ context.Context, _, _ primitive.ObjectID, limit int64) ([]models.ProductWithCategory, error) {
	return f.expanded(limit), nil
}

func (f *fakeProducts) ByCategory(context.Context, primitive.ObjectID) ([]models.Product, error) {
	return f.all(0), nil
}

func (f *fakeProducts) Count(context.Context) (int64, error) {
	return int64(len(f.items)), nil
}

type fakeCategoryLookup struct {
	category *models.Category
}

func (f *fakeCategoryLookup) FindByID(context.Context, primitive.ObjectID) (*models.Category, error) {
	if f.category == nil {
		return nil, repositories.ErrNotFound
	}
	return f.category, nil
}

func (f *fakeCategoryLookup) FindBySlug(context.Context, string) (*models.Category, error) {
	if f.category == nil {
		return nil, repositories.ErrNotFound
	}
	return f.category, nil
}

func newProductController() (*ProductController, *fakeProducts, *fakeCategoryLookup) {
	products := &fakeProducts{}
	categories := &fakeCategoryLookup{}
	return NewProductController(products, categories, nil, nil), products, categories
}

// productForm builds a multipart product form; image is attached when
// imageBytes is non-nil.
func productForm(t *testing.T, fields map[string]string, imageBytes []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if imageBytes != nil {
		fw, err := mw.CreateFormFile("image", "product.jpg")
		require.NoError(t, err)
		_, err = fw.Write(imageBytes)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/products/create-product", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func validFields() map[string]string {
	return map[string]string{
		"name":        "Banarasi Silk Saree",
		"description": "Handwoven silk",
		"price":       "4999",
		"category":    primitive.NewObjectID().Hex(),
		"quantity":    "12",
	}
}

func TestProductCreate(t *testing.T) {
	t.Run("creates with derived slug and image", func(t *testing.T) {
		ctrl, store, _ := newProductController()
		rec := httptest.NewRecorder()
		ctrl.Create(rec, productForm(t, validFields(), []byte("jpegbytes")))

		assert.Equal(t, http.StatusCreated, rec.Code)
		require.Len(t, store.items, 1)
		assert.Equal(t, "banarasi-silk-saree", store.items[0].Slug)
		require.NotNil(t, store.items[0].Image)
		assert.Equal(t, []byte("jpegbytes"), store.items[0].Image.Data)
	})

	t.Run("each missing field has its own message", func(t *testing.T) {
		ctrl, _, _ := newProductController()
		for field, message := range map[string]string{
			"name":        "Name is Required",
			"description": "Description is Required",
			"price":       "Price is Required",
			"category":    "Category is Required",
			"quantity":    "Quantity is Required",
		} {
			fields := validFields()
			delete(fields, field)

			rec := httptest.NewRecorder()
			ctrl.Create(rec, productForm(t, fields, nil))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, message, decodeBody(t, rec)["message"])
		}
	})

	t.Run("missing image has its own message", func(t *testing.T) {
		ctrl, store, _ := newProductController()
		rec := httptest.NewRecorder()
		ctrl.Create(rec, productForm(t, validFields(), nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Image is Required", decodeBody(t, rec)["message"])
		assert.Empty(t, store.items)
	})

	t.Run("image over the cap is rejected", func(t *testing.T) {
		ctrl, store, _ := newProductController()
		rec := httptest.NewRecorder()
		ctrl.Create(rec, productForm(t, validFields(), make([]byte, models.MaxImageBytes+1)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Image should be less than 1mb", decodeBody(t, rec)["message"])
		assert.Empty(t, store.items)
	})

	t.Run("slug index race surfaces as a conflict", func(t *testing.T) {
		ctrl, store, _ := newProductController()
		store.createErr = mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}

		rec := httptest.NewRecorder()
		ctrl.Create(rec, productForm(t, validFields(), []byte("jpegbytes")))

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "Product already exists", decodeBody(t, rec)["message"])
	})
}

func TestProductSingleExpandsCategory(t *testing.T) {
	ctrl, store, categories := newProductController()
	categories.category = &models.Category{ID: primitive.NewObjectID(), Name: "Sarees", Slug: "sarees"}

	rec := httptest.NewRecorder()
	ctrl.Create(rec, productForm(t, validFields(), []byte("jpegbytes")))
	require.Equal(t, http.StatusCreated, rec.Code)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "slug", store.items[0].Slug)
	rec = httptest.NewRecorder()
	ctrl.Single(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	product, ok := body["product"].(map[string]any)
	require.True(t, ok)
	category, ok := product["category"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "sarees", category["slug"])
}

func TestProductImageRoute(t *testing.T) {
	ctrl, store, _ := newProductController()
	rec := httptest.NewRecorder()
	ctrl.Create(rec, productForm(t, validFields(), []byte("rawbytes")))
	require.Len(t, store.items, 1)
	store.items[0].Image.ContentType = "image/jpeg"
	id := store.items[0].ID

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", id.Hex())
	rec = httptest.NewRecorder()
	ctrl.Image(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "rawbytes", rec.Body.String())
}

func TestProductFilter(t *testing.T) {
	t.Run("passes parsed predicates through", func(t *testing.T) {
		ctrl, store, _ := newProductController()
		c1 := primitive.NewObjectID()
		c2 := primitive.NewObjectID()

		rec := postJSON(t, ctrl.Filter, "/api/products/product-filter", map[string]any{
			"checked": []string{c1.Hex(), c2.Hex()},
			"radio":   []float64{100, 500},
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []primitive.ObjectID{c1, c2}, store.filterCategories)
		assert.Equal(t, []float64{100, 500}, store.filterRange)
	})

	t.Run("empty predicates mean unfiltered", func(t *testing.T) {
		ctrl, store, _ := newProductController()
		rec := postJSON(t, ctrl.Filter, "/api/products/product-filter", map[string]any{
			"checked": []string{}, "radio": []float64{},
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, store.filterCategories)
		assert.Nil(t, store.filterRange)
	})

	t.Run("malformed category id is rejected", func(t *testing.T) {
		ctrl, _, _ := newProductController()
		rec := postJSON(t, ctrl.Filter, "/api/products/product-filter", map[string]any{
			"checked": []string{"garbage"},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestProductAllCapsAndCounts(t *testing.T) {
	ctrl, store, _ := newProductController()
	for i := 0; i < 15; i++ {
		fields := validFields()
		fields["name"] = fields["name"] + "-" + primitive.NewObjectID().Hex()
		rec := httptest.NewRecorder()
		ctrl.Create(rec, productForm(t, fields, []byte("jpegbytes")))
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	require.Len(t, store.items, 15)

	rec := httptest.NewRecorder()
	ctrl.All(rec, httptest.NewRequest(http.MethodGet, "/api/products/get-product", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	products, ok := body["products"].([]any)
	require.True(t, ok)
	assert.Len(t, products, fetchAllCap)
	assert.EqualValues(t, fetchAllCap, body["total"])
}
