package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shashiranjanraj/vastra/app/controllers"
	"github.com/shashiranjanraj/vastra/app/routes"
	"github.com/shashiranjanraj/vastra/app/services"
	"github.com/shashiranjanraj/vastra/internal/server"
	"github.com/shashiranjanraj/vastra/pkg/router"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		srv, err := server.New(ctx)
		cancel()
		if err != nil {
			return err
		}
		return srv.Run()
	},
}

var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "Print every registered route",
	RunE: func(_ *cobra.Command, _ []string) error {
		// Controllers are built without storage: registration only records
		// method, path, and name, none of which touch a backend.
		r := router.New()
		routes.RegisterAPI(r, routes.Controllers{
			Auth:     controllers.NewAuthController(services.NewAuthService(nil), nil),
			Category: controllers.NewCategoryController(nil),
			Product:  controllers.NewProductController(nil, nil, services.NewOrderService(nil, nil), nil),
		})

		for _, info := range r.Routes() {
			fmt.Printf("%-7s %-45s %s\n", info.Method, info.Path, info.Name)
		}
		return nil
	},
}
