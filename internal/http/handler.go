package http

import (
	"context"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	dto "todo-api.com/todo-api/internal/data_models"
	"todo-api.com/todo-api/internal/http/validators"
	repository "todo-api.com/todo-api/internal/repositories"
	"todo-api.com/todo-api/internal/services"
)

const maxBodyBytes = 1 << 20

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	todoService *services.TodoService
	db          Pinger
}

func NewHandler(todoService *services.TodoService, db Pinger) *Handler {
	return &Handler{
		todoService: todoService,
		db:          db,
	}
}

func (h *Handler) CreateTodo(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}
	req, err := validators.ValidateCreateTodoRequest(body)
	if err != nil {
		return err
	}

	todo, err := h.todoService.CreateTodo(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, todo)
}

func (h *Handler) ListTodos(c echo.Context) error {
	q := dto.ListTodosQuery{Offset: 0, Limit: repository.MaxListLimit}
	if err := echo.QueryParamsBinder(c).
		Int("offset", &q.Offset).
		Int("limit", &q.Limit).
		BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "offset and limit must be integers")
	}

	page, err := h.todoService.ListTodos(c.Request().Context(), q)
	if err != nil {
		return err
	}

	c.Response().Header().Set("X-Total-Count", strconv.FormatInt(page.Total, 10))
	return c.JSON(http.StatusOK, page.Todos)
}

func (h *Handler) GetTodo(c echo.Context) error {
	id, err := todoID(c)
	if err != nil {
		return err
	}

	todo, err := h.todoService.GetTodo(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, todo)
}

func (h *Handler) UpdateTodo(c echo.Context) error {
	id, err := todoID(c)
	if err != nil {
		return err
	}
	body, err := readBody(c)
	if err != nil {
		return err
	}
	req, err := validators.ValidateUpdateTodoRequest(body)
	if err != nil {
		return err
	}

	todo, err := h.todoService.UpdateTodo(c.Request().Context(), id, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, todo)
}

func (h *Handler) DeleteTodo(c echo.Context) error {
	id, err := todoID(c)
	if err != nil {
		return err
	}

	if err := h.todoService.DeleteTodo(c.Request().Context(), id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Health(c echo.Context) error {
	if err := h.db.Ping(c.Request().Context()); err != nil {
		log.Printf("health check: %v", err)
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func todoID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "todo id must be a positive integer")
	}
	return uint(id), nil
}

func readBody(c echo.Context) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes+1))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "failed to read request body")
	}
	if len(body) > maxBodyBytes {
		return nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "request body too large")
	}
	return body, nil
}
