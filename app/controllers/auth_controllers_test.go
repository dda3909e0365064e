package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shashiranjanraj/vastra/app/models"
	"github.com/shashiranjanraj/vastra/app/repositories"
	"github.com/shashiranjanraj/vastra/app/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeUsers is the minimal services.UserStore the auth controller tests need.
type fakeUsers struct {
	byEmail map[string]*models.User
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	u.ID = primitive.NewObjectID()
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUsers) UpdateByID(_ context.Context, id primitive.ObjectID, _ bson.M) (*models.User, error) {
	return f.FindByID(context.Background(), id)
}

func (f *fakeUsers) UpdatePassword(context.Context, primitive.ObjectID, string) error {
	return nil
}

type fakeOrders struct {
	updated *models.Order
}

func (f *fakeOrders) ByBuyer(context.Context, primitive.ObjectID) ([]models.OrderView, error) {
	return []models.OrderView{}, nil
}

func (f *fakeOrders) All(context.Context) ([]models.OrderView, error) {
	return []models.OrderView{}, nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id primitive.ObjectID, status string) (*models.Order, error) {
	f.updated = &models.Order{ID: id, Status: status}
	return f.updated, nil
}

func newAuthController() (*AuthController, *fakeOrders) {
	orders := &fakeOrders{}
	svc := services.NewAuthService(&fakeUsers{byEmail: map[string]*models.User{}})
	return NewAuthController(svc, orders), orders
}

func postJSON(t *testing.T, handler http.HandlerFunc, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func registerBody() map[string]string {
	return map[string]string{
		"name":     "Asha",
		"email":    "asha@example.com",
		"password": "secret123",
		"phone":    "9999999999",
		"address":  "Mumbai",
		"question": "cricket",
	}
}

func TestRegisterEndpoint(t *testing.T) {
	ctrl, _ := newAuthController()

	t.Run("creates the user and echoes the stored document", func(t *testing.T) {
		rec := postJSON(t, ctrl.Register, "/api/auth/register", registerBody())

		assert.Equal(t, http.StatusCreated, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, true, body["success"])

		user, ok := body["user"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "asha@example.com", user["email"])
		// The stored bcrypt digest comes back, not the plaintext.
		assert.NotEmpty(t, user["password"])
		assert.NotEqual(t, "secret123", user["password"])
	})

	t.Run("duplicate email is a 200 with success false", func(t *testing.T) {
		rec := postJSON(t, ctrl.Register, "/api/auth/register", registerBody())

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Already Register please login", body["message"])
	})

	t.Run("missing fields fail validation", func(t *testing.T) {
		rec := postJSON(t, ctrl.Register, "/api/auth/register", map[string]string{"email": "x@example.com"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, false, body["success"])
		assert.Contains(t, body, "errors")
	})
}

func TestLoginEndpoint(t *testing.T) {
	ctrl, _ := newAuthController()
	postJSON(t, ctrl.Register, "/api/auth/register", registerBody())

	t.Run("returns token and sanitized profile", func(t *testing.T) {
		rec := postJSON(t, ctrl.Login, "/api/auth/login", map[string]string{
			"email": "asha@example.com", "password": "secret123",
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.NotEmpty(t, body["token"])

		user, ok := body["user"].(map[string]any)
		require.True(t, ok)
		assert.NotContains(t, user, "password")
		assert.NotContains(t, user, "answer")
	})

	t.Run("wrong password is a 401", func(t *testing.T) {
		rec := postJSON(t, ctrl.Login, "/api/auth/login", map[string]string{
			"email": "asha@example.com", "password": "nope99",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown email is a 404", func(t *testing.T) {
		rec := postJSON(t, ctrl.Login, "/api/auth/login", map[string]string{
			"email": "ghost@example.com", "password": "secret123",
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestOrderStatusEndpoint(t *testing.T) {
	ctrl, orders := newAuthController()
	id := primitive.NewObjectID()

	send := func(status string) *httptest.ResponseRecorder {
		raw, _ := json.Marshal(map[string]string{"status": status})
		req := httptest.NewRequest(http.MethodPut, "/api/auth/order-status/"+id.Hex(), bytes.NewReader(raw))
		req = withURLParam(req, "orderId", id.Hex())
		rec := httptest.NewRecorder()
		ctrl.OrderStatus(rec, req)
		return rec
	}

	t.Run("accepts a known status", func(t *testing.T) {
		rec := send("Shipped")
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, orders.updated)
		assert.Equal(t, "Shipped", orders.updated.Status)
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		rec := send("Teleported")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
