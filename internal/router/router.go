package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/progresssync/backend/api/handler"
)

type Handlers struct {
	Auth      *apiHandler.AuthHandler
	Task      *apiHandler.TaskHandler
	Dashboard *apiHandler.DashboardHandler
	Todoist   *apiHandler.TodoistHandler
	Calendar  *apiHandler.CalendarHandler
	Health    *apiHandler.HealthHandler
	WS        *apiHandler.WSHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Health)

	// Auth routes
	r.POST("/api/v1/auth/register", handlers.Auth.Register)
	r.POST("/api/v1/auth/login", handlers.Auth.Login)

	// Protected routes
	r.GET("/api/v1/tasks", authMiddleware(handlers.Task.GetTasks))
	r.POST("/api/v1/tasks", authMiddleware(handlers.Task.CreateTask))
	r.PATCH("/api/v1/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	r.DELETE("/api/v1/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))

	r.GET("/api/v1/dashboard", authMiddleware(handlers.Dashboard.Summary))
	r.GET("/api/v1/dashboard/activity", authMiddleware(handlers.Dashboard.Activity))

	r.GET("/api/v1/todoist/sync", authMiddleware(handlers.Todoist.Sync))
	r.GET("/api/v1/todoist/tasks", authMiddleware(handlers.Todoist.GetTasks))
	r.POST("/api/v1/todoist/tasks", authMiddleware(handlers.Todoist.CreateTask))
	r.POST("/api/v1/todoist/tasks/{id}/close", authMiddleware(handlers.Todoist.CloseTask))
	r.DELETE("/api/v1/todoist/tasks/{id}", authMiddleware(handlers.Todoist.DeleteTask))

	r.GET("/api/v1/calendar/auth", authMiddleware(handlers.Calendar.Auth))
	// The OAuth provider redirects here without a bearer token; identity rides
	// in the state parameter instead.
	r.GET("/api/v1/calendar/callback", handlers.Calendar.Callback)
	r.POST("/api/v1/calendar/events", authMiddleware(handlers.Calendar.CreateEvent))

	r.GET("/ws", handlers.WS.Serve)

	return r
}
