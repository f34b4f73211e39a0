package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-tracker/internal/api/http/handlers"
	"github.com/spec-kit/issue-tracker/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Metrics        *handlers.MetricsHandler
	Users          *handlers.UsersHandler
	Projects       *handlers.ProjectsHandler
	Issues         *handlers.IssuesHandler
	Comments       *handlers.CommentsHandler
	Activities     *handlers.ActivitiesHandler
	Events         *handlers.EventsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics.Metrics)
	}

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	protected := api.Group("", cfg.AuthMiddleware.Handle)
	protected.Get("/auth/me", cfg.Users.Me)

	protected.Get("/projects", cfg.Projects.ListProjects)
	protected.Post("/projects", cfg.Projects.CreateProject)
	protected.Get("/projects/:id", cfg.Projects.GetProject)
	protected.Put("/projects/:id", cfg.Projects.UpdateProject)
	protected.Delete("/projects/:id", cfg.Projects.DeleteProject)

	protected.Get("/issues", cfg.Issues.ListIssues)
	protected.Post("/issues", cfg.Issues.CreateIssue)
	protected.Get("/issues/:id", cfg.Issues.GetIssue)
	protected.Put("/issues/:id", cfg.Issues.UpdateIssue)
	protected.Delete("/issues/:id", cfg.Issues.DeleteIssue)

	protected.Get("/issues/:issueId/comments", cfg.Comments.ListComments)
	protected.Post("/issues/:issueId/comments", cfg.Comments.CreateComment)
	protected.Put("/comments/:id", cfg.Comments.UpdateComment)
	protected.Delete("/comments/:id", cfg.Comments.DeleteComment)

	protected.Get("/issues/:issueId/activities", cfg.Activities.ListActivities)

	protected.Get("/events", cfg.Events.Stream)

	app.Use(NotFound)
}
