package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/grievance-go-api/internal/config"
	"github.com/noah-isme/grievance-go-api/internal/handler"
	"github.com/noah-isme/grievance-go-api/internal/middleware"
	"github.com/noah-isme/grievance-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ComplaintHandler    *handler.ComplaintHandler
	AssignmentHandler   *handler.AssignmentHandler
	SubmissionHandler   *handler.SubmissionHandler
	ResultHandler       *handler.ResultHandler
	InsightHandler      *handler.InsightHandler
	NoticeHandler       *handler.NoticeHandler
	NotificationHandler *handler.NotificationHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application. Routes are
// grouped by audience: students file complaints and submit work, faculty
// review and verify, admins control result publication.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	studentOnly := middleware.RequireRole(middleware.RoleStudent)
	facultyOnly := middleware.RequireRole(middleware.RoleFaculty, middleware.RoleAdmin)
	adminOnly := middleware.RequireRole(middleware.RoleAdmin)

	if deps.ComplaintHandler != nil {
		student := api.Group("/complaints", jwtMiddleware, studentOnly)
		deps.ComplaintHandler.RegisterStudent(student)

		faculty := api.Group("/faculty/complaints", jwtMiddleware, facultyOnly)
		deps.ComplaintHandler.RegisterFaculty(faculty)
	}

	if deps.AssignmentHandler != nil {
		student := api.Group("/assignments", jwtMiddleware, studentOnly)
		deps.AssignmentHandler.RegisterStudent(student)

		faculty := api.Group("/faculty/assignments", jwtMiddleware, facultyOnly)
		deps.AssignmentHandler.RegisterFaculty(faculty)
	}

	if deps.SubmissionHandler != nil {
		student := api.Group("/submissions", jwtMiddleware, studentOnly)
		deps.SubmissionHandler.RegisterStudent(student)

		faculty := api.Group("/faculty/submissions", jwtMiddleware, facultyOnly)
		deps.SubmissionHandler.RegisterFaculty(faculty)
	}

	if deps.ResultHandler != nil {
		student := api.Group("/results", jwtMiddleware, studentOnly)
		deps.ResultHandler.RegisterStudent(student)

		faculty := api.Group("/faculty/results", jwtMiddleware, facultyOnly)
		deps.ResultHandler.RegisterFaculty(faculty)

		admin := api.Group("/admin/results", jwtMiddleware, adminOnly)
		deps.ResultHandler.RegisterAdmin(admin)
	}

	if deps.InsightHandler != nil {
		student := api.Group("/student", jwtMiddleware, studentOnly)
		deps.InsightHandler.RegisterStudent(student)

		faculty := api.Group("/faculty", jwtMiddleware, facultyOnly)
		deps.InsightHandler.RegisterFaculty(faculty)

		admin := api.Group("/admin", jwtMiddleware, adminOnly)
		deps.InsightHandler.RegisterAdmin(admin)
	}

	if deps.NoticeHandler != nil {
		student := api.Group("/notices", jwtMiddleware, studentOnly)
		deps.NoticeHandler.RegisterStudent(student)

		admin := api.Group("/admin/notices", jwtMiddleware, adminOnly)
		deps.NoticeHandler.RegisterAdmin(admin)
	}

	if deps.NotificationHandler != nil {
		notifications := api.Group("/notifications", jwtMiddleware)
		deps.NotificationHandler.Register(notifications)
	}
}
