package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shashiranjanraj/vastra/app/models"
	"github.com/shashiranjanraj/vastra/app/repositories"
	"github.com/shashiranjanraj/vastra/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeUserFinder struct {
	users map[primitive.ObjectID]*models.User
}

func (f *fakeUserFinder) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return u, nil
}

func okHandler() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}), &called
}

func TestRequireSignIn(t *testing.T) {
	id := primitive.NewObjectID()
	token, err := auth.GenerateToken(id.Hex())
	require.NoError(t, err)

	t.Run("missing header", func(t *testing.T) {
		next, called := okHandler()
		rec := httptest.NewRecorder()
		RequireSignIn(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, *called)
	})

	t.Run("garbage token", func(t *testing.T) {
		next, called := okHandler()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "not-a-token")
		rec := httptest.NewRecorder()
		RequireSignIn(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, *called)
	})

	t.Run("raw token passes", func(t *testing.T) {
		var got primitive.ObjectID
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, _ = UserID(r.Context())
		})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", token)
		rec := httptest.NewRecorder()
		RequireSignIn(next).ServeHTTP(rec, req)

		assert.Equal(t, id, got)
	})

	t.Run("bearer-prefixed token passes", func(t *testing.T) {
		next, called := okHandler()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		RequireSignIn(next).ServeHTTP(rec, req)

		assert.True(t, *called)
	})
}

func TestIsAdmin(t *testing.T) {
	admin := &models.User{ID: primitive.NewObjectID(), Name: "root", IsAdmin: true}
	shopper := &models.User{ID: primitive.NewObjectID(), Name: "asha"}
	finder := &fakeUserFinder{users: map[primitive.ObjectID]*models.User{
		admin.ID:   admin,
		shopper.ID: shopper,
	}}
	gate := IsAdmin(finder)

	serve := func(id primitive.ObjectID, next http.Handler) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(context.WithValue(req.Context(), userIDKey, id))
		rec := httptest.NewRecorder()
		gate(next).ServeHTTP(rec, req)
		return rec
	}

	t.Run("admin passes", func(t *testing.T) {
		next, called := okHandler()
		rec := serve(admin.ID, next)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, *called)
	})

	t.Run("shopper is rejected", func(t *testing.T) {
		next, called := okHandler()
		rec := serve(shopper.ID, next)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.False(t, *called)
	})

	t.Run("unknown identity fails closed", func(t *testing.T) {
		next, called := okHandler()
		rec := serve(primitive.NewObjectID(), next)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.False(t, *called)
	})

	t.Run("no identity at all fails closed", func(t *testing.T) {
		next, called := okHandler()
		rec := httptest.NewRecorder()
		gate(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, *called)
	})
}
