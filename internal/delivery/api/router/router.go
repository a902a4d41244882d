// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"restore/config"
	"restore/internal/delivery/api/middleware"
	"restore/internal/delivery/api/router/handler"
	"restore/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AccountHandler *handler.AccountHandler
	BuggyHandler   *handler.BuggyHandler
	AuthMiddleware *middleware.AuthMiddleware
	Config         *config.Config
}

// router holds all the handlers that need to be registered.
type router struct {
	accountHandler *handler.AccountHandler
	buggyHandler   *handler.BuggyHandler
	authMiddleware *middleware.AuthMiddleware
	config         *config.Config
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		accountHandler: params.AccountHandler,
		buggyHandler:   params.BuggyHandler,
		authMiddleware: params.AuthMiddleware,
		config:         params.Config,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)

	accountGroup := e.Group("/api/account")
	{
		accountGroup.POST("/login", r.accountHandler.Login)
		accountGroup.POST("/register", r.accountHandler.Register)
		accountGroup.GET("/currentUser", r.accountHandler.CurrentUser, r.authMiddleware.Authenticate)
	}
}

// RegisterTestRoutes mounts the error-shape endpoints when testRoutes.enabled is set.
func (r *router) RegisterTestRoutes(e *echo.Echo) {
	if r.config.TestRoutes == nil || !r.config.TestRoutes.Enabled {
		return
	}

	buggyGroup := e.Group("/api/buggy")
	{
		buggyGroup.GET("/not-found", r.buggyHandler.NotFound)
		buggyGroup.GET("/bad-request", r.buggyHandler.BadRequest)
		buggyGroup.GET("/unauthorised", r.buggyHandler.Unauthorised)
		buggyGroup.GET("/validation-error", r.buggyHandler.ValidationError)
		buggyGroup.GET("/server-error", r.buggyHandler.ServerError)
		buggyGroup.GET("/admin", r.buggyHandler.Admin,
			r.authMiddleware.Authenticate,
			r.authMiddleware.RequireRole(entity.RoleAdmin),
		)
	}
}
