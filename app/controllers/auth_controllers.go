// Package controllers maps HTTP requests onto services and repositories and
// writes the JSON envelope. Controllers depend on small interfaces so tests
// can substitute fakes without a database.
package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shashiranjanraj/vastra/app/middlewares"
	"github.com/shashiranjanraj/vastra/app/models"
	"github.com/shashiranjanraj/vastra/app/services"
	"github.com/shashiranjanraj/vastra/pkg/apperr"
	"github.com/shashiranjanraj/vastra/pkg/bind"
	"github.com/shashiranjanraj/vastra/pkg/response"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderReader is the order access the auth controller needs for the order
// listing and status routes.
type OrderReader interface {
	ByBuyer(ctx context.Context, buyer primitive.ObjectID) ([]models.OrderView, error)
	All(ctx context.Context) ([]models.OrderView, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Order, error)
}

type AuthController struct {
	service *services.AuthService
	orders  OrderReader
}

func NewAuthController(service *services.AuthService, orders OrderReader) *AuthController {
	return &AuthController{service: service, orders: orders}
}

// Register creates an account. A duplicate email is reported in a 200 body
// with success:false, matching what the storefront expects.
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Fail(w, r, apperr.Validation(err.Error()))
		return
	} else if errs != nil {
		response.ValidationFailed(w, errs)
		return
	}

	user, exists, err := c.service.Register(r.Context(), in)
	if err != nil {
		response.Fail(w, r, err)
		return
	}
	if exists {
		response.Declined(w, "Already Register please login")
		return
	}

	// The created document is echoed back whole, credential digests
	// included, because the storefront's admin screens read it that way.
	response.Created(w, "User Register Successfully", response.M{"user": response.M{
		"_id":       user.ID,
		"name":      user.Name,
		"email":     user.Email,
		"password":  user.Password,
		"phone":     user.Phone,
		"address":   user.Address,
		"isAdmin":   user.IsAdmin,
		"createdAt": user.CreatedAt,
		"updatedAt": user.UpdatedAt,
	}})
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login verifies credentials and returns a session token with the sanitized
// profile.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Fail(w, r, apperr.Validation(err.Error()))
		return
	} else if errs != nil {
		response.ValidationFailed(w, errs)
		return
	}

	user, token, err := c.service.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	response.OK(w, "Login successfully", response.M{
		"user":  user.Sanitized(),
		"token": token,
	})
}

type forgotPasswordInput struct {
	Email       string `json:"email" validate:"required,email"`
	Answer      string `json:"question" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// ForgotPassword rotates the password when the email/answer pair matches.
func (c *AuthController) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var in forgotPasswordInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Fail(w, r, apperr.Validation(err.Error()))
		return
	} else if errs != nil {
		response.ValidationFailed(w, errs)
		return
	}

	if err := c.service.ForgotPassword(r.Context(), in.Email, in.Answer, in.NewPassword); err != nil {
		response.Fail(w, r, err)
		return
	}
	response.OK(w, "Password Reset Successfully", nil)
}

// UpdateProfile rotates the caller's password and replaces
// name/phone/address.
func (c *AuthController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := middlewares.UserID(r.Context())
	if !ok {
		response.Fail(w, r, apperr.Authentication("Authorization token required"))
		return
	}

	var in services.ProfileInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Fail(w, r, apperr.Validation(err.Error()))
		return
	} else if errs != nil {
		response.ValidationFailed(w, errs)
		return
	}

	user, err := c.service.UpdateProfile(r.Context(), id, in)
	if err != nil {
		response.Fail(w, r, err)
		return
	}
	response.OK(w, "Profile Updated Successfully", response.M{
		"updatedUser": user.Sanitized(),
	})
}

// Orders returns the caller's orders, products and buyer name expanded.
func (c *AuthController) Orders(w http.ResponseWriter, r *http.Request) {
	buyer, ok := middlewares.UserID(r.Context())
	if !ok {
		response.Fail(w, r, apperr.Authentication("Authorization token required"))
		return
	}

	views, err := c.orders.ByBuyer(r.Context(), buyer)
	if err != nil {
		response.Fail(w, r, apperr.Internal("Error while getting orders", err))
		return
	}
	response.OK(w, "", response.M{"orders": views})
}

// AllOrders returns every order, newest first. Admin only.
func (c *AuthController) AllOrders(w http.ResponseWriter, r *http.Request) {
	views, err := c.orders.All(r.Context())
	if err != nil {
		response.Fail(w, r, apperr.Internal("Error while getting orders", err))
		return
	}
	response.OK(w, "", response.M{"orders": views})
}

type orderStatusInput struct {
	Status string `json:"status" validate:"required"`
}

// OrderStatus replaces one order's status. Admin only.
func (c *AuthController) OrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "orderId"))
	if err != nil {
		response.Fail(w, r, apperr.Validation("Invalid order id"))
		return
	}

	var in orderStatusInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Fail(w, r, apperr.Validation(err.Error()))
		return
	} else if errs != nil {
		response.ValidationFailed(w, errs)
		return
	}
	if !models.ValidOrderStatus(in.Status) {
		response.Fail(w, r, apperr.Validation("Invalid order status"))
		return
	}

	order, err := c.orders.UpdateStatus(r.Context(), id, in.Status)
	if err != nil {
		response.Fail(w, r, notFoundOr(err, "Order not found", "Error while updating order"))
		return
	}
	response.OK(w, "", response.M{"order": order})
}

// Test is the gate smoke route behind both guards.
func (c *AuthController) Test(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Protected Routes")) //nolint:errcheck
}

// UserAuth is the signed-in probe the storefront polls.
func (c *AuthController) UserAuth(w http.ResponseWriter, r *http.Request) {
	writeOK(w)
}

// AdminAuth is the elevated probe the storefront polls.
func (c *AuthController) AdminAuth(w http.ResponseWriter, r *http.Request) {
	writeOK(w)
}

func writeOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"ok":true}`)) //nolint:errcheck
}
