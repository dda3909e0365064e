// Package routes wires controllers onto the named router. Route names use
// the "group.action" convention so `vastra route:list` reads naturally.
package routes

import (
	"net/http"

	"github.com/shashiranjanraj/vastra/app/controllers"
	"github.com/shashiranjanraj/vastra/app/middlewares"
	"github.com/shashiranjanraj/vastra/pkg/metrics"
	"github.com/shashiranjanraj/vastra/pkg/response"
	"github.com/shashiranjanraj/vastra/pkg/router"
)

// Controllers bundles everything RegisterAPI mounts.
type Controllers struct {
	Auth     *controllers.AuthController
	Category *controllers.CategoryController
	Product  *controllers.ProductController
	Users    middlewares.UserFinder
}

// RegisterAPI mounts the full API surface plus the health and metrics
// endpoints.
func RegisterAPI(r *router.Router, c Controllers) {
	signedIn := router.Middleware(middlewares.RequireSignIn)
	admin := router.Middleware(middlewares.IsAdmin(c.Users))

	r.Get("/healthz", "healthz", func(w http.ResponseWriter, _ *http.Request) {
		response.OK(w, "ok", nil)
	})
	r.Get("/metrics", "metrics", metrics.Handler())

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", "auth.register", c.Auth.Register)
	auth.Post("/login", "auth.login", c.Auth.Login)
	auth.Post("/forgot-password", "auth.forgot-password", c.Auth.ForgotPassword)
	auth.Put("/profile", "auth.profile", c.Auth.UpdateProfile, signedIn)
	auth.Get("/test", "auth.test", c.Auth.Test, signedIn, admin)
	auth.Get("/user-auth", "auth.user-auth", c.Auth.UserAuth, signedIn)
	auth.Get("/admin-auth", "auth.admin-auth", c.Auth.AdminAuth, signedIn, admin)
	auth.Get("/orders", "auth.orders", c.Auth.Orders, signedIn)
	auth.Get("/all-orders", "auth.all-orders", c.Auth.AllOrders, signedIn, admin)
	auth.Put("/order-status/{orderId}", "auth.order-status", c.Auth.OrderStatus, signedIn, admin)

	category := api.Group("/category")
	category.Post("/create-category", "category.create", c.Category.Create, signedIn, admin)
	category.Put("/update-category/{id}", "category.update", c.Category.Update, signedIn, admin)
	category.Delete("/delete-category/{id}", "category.delete", c.Category.Delete, signedIn, admin)
	category.Get("/categories", "category.all", c.Category.All)
	category.Get("/single-category/{slug}", "category.single", c.Category.Single)

	products := api.Group("/products")
	products.Post("/create-product", "products.create", c.Product.Create, signedIn, admin)
	products.Put("/update-product/{id}", "products.update", c.Product.Update, signedIn, admin)
	products.Delete("/delete-product/{id}", "products.delete", c.Product.Delete, signedIn, admin)
	products.Get("/get-product", "products.all", c.Product.All)
	products.Get("/get-product/{slug}", "products.single", c.Product.Single)
	products.Get("/product-image/{id}", "products.image", c.Product.Image)
	products.Get("/product-list/{page}", "products.list", c.Product.List)
	products.Get("/search-product/{keyword}", "products.search", c.Product.Search)
	products.Get("/related-product/{id}/{categoryId}", "products.related", c.Product.Related)
	products.Get("/product-category/{slug}", "products.by-category", c.Product.ByCategory)
	products.Get("/product-count", "products.count", c.Product.Count)
	products.Post("/product-filter", "products.filter", c.Product.Filter)
	products.Get("/braintree/token", "products.braintree-token", c.Product.BraintreeToken)
	products.Post("/braintree/payment", "products.braintree-payment", c.Product.BraintreePayment, signedIn)
}
