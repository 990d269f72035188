package http

import (
	"github.com/labstack/echo/v4"
)

type Router interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PATCH(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	DELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// Register mounts the todo routes at the root and, when apiPrefix is set,
// again under apiPrefix.
func Register(e *echo.Echo, h *Handler, apiPrefix string) {
	e.GET("/healthz", h.Health)

	registerTodoRoutes(e, h)
	if apiPrefix != "" && apiPrefix != "/" {
		registerTodoRoutes(e.Group(apiPrefix), h)
	}
}

func registerTodoRoutes(r Router, h *Handler) {
	r.POST("/todos", h.CreateTodo)
	r.GET("/todos", h.ListTodos)
	r.GET("/todos/:id", h.GetTodo)
	r.PATCH("/todos/:id", h.UpdateTodo)
	r.PUT("/todos/:id", h.UpdateTodo)
	r.DELETE("/todos/:id", h.DeleteTodo)
}
