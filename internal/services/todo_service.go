package services

import (
	"context"
	"log"
	"strings"

	dto "todo-api.com/todo-api/internal/data_models"
	apperrors "todo-api.com/todo-api/internal/errors"
	model "todo-api.com/todo-api/internal/models"
	repository "todo-api.com/todo-api/internal/repositories"
)

type TodoStore interface {
	Create(ctx context.Context, title string, description *string) (*model.Todo, error)
	List(ctx context.Context, offset, limit int) ([]model.Todo, error)
	Count(ctx context.Context) (int64, error)
	FindByID(ctx context.Context, id uint) (*model.Todo, error)
	Update(ctx context.Context, id uint, patch repository.TodoPatch) (*model.Todo, error)
	Delete(ctx context.Context, id uint) (bool, error)
}

// TodoCache is an optional read-through cache for single todos. Reads
// fill it with Add, which must not replace an existing entry; mutations
// overwrite it with Set or Tombstone. Cache failures are logged and
// never fail a request.
type TodoCache interface {
	Get(ctx context.Context, id uint) (*model.Todo, error)
	Add(ctx context.Context, todo *model.Todo) error
	Set(ctx context.Context, todo *model.Todo) error
	Tombstone(ctx context.Context, id uint) error
}

type TodoService struct {
	store TodoStore
	cache TodoCache
}

func NewTodoService(store TodoStore, cache TodoCache) *TodoService {
	return &TodoService{
		store: store,
		cache: cache,
	}
}

func (s *TodoService) CreateTodo(ctx context.Context, req dto.CreateTodoRequest) (*model.Todo, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperrors.ErrTitleRequired
	}

	todo, err := s.store.Create(ctx, req.Title, req.Description)
	if err != nil {
		return nil, apperrors.Storage("create todo", err)
	}

	return todo, nil
}

type TodoPage struct {
	Todos []model.Todo
	Total int64
}

func (s *TodoService) ListTodos(ctx context.Context, q dto.ListTodosQuery) (*TodoPage, error) {
	if q.Offset < 0 {
		return nil, apperrors.ErrInvalidOffset
	}
	if q.Limit < 0 || q.Limit > repository.MaxListLimit {
		return nil, apperrors.ErrInvalidLimit
	}

	todos, err := s.store.List(ctx, q.Offset, q.Limit)
	if err != nil {
		return nil, apperrors.Storage("list todos", err)
	}

	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, apperrors.Storage("count todos", err)
	}

	return &TodoPage{Todos: todos, Total: total}, nil
}

func (s *TodoService) GetTodo(ctx context.Context, id uint) (*model.Todo, error) {
	if cached := s.cachedTodo(ctx, id); cached != nil {
		return cached, nil
	}

	todo, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Storage("get todo", err)
	}
	if todo == nil {
		return nil, apperrors.ErrTodoNotFound
	}

	s.fillCache(ctx, todo)
	return todo, nil
}

func (s *TodoService) UpdateTodo(ctx context.Context, id uint, req dto.UpdateTodoRequest) (*model.Todo, error) {
	patch, err := patchFromRequest(req)
	if err != nil {
		return nil, err
	}

	todo, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return nil, apperrors.Storage("update todo", err)
	}
	if todo == nil {
		return nil, apperrors.ErrTodoNotFound
	}

	s.storeInCache(ctx, todo)
	return todo, nil
}

func (s *TodoService) DeleteTodo(ctx context.Context, id uint) error {
	removed, err := s.store.Delete(ctx, id)
	if err != nil {
		return apperrors.Storage("delete todo", err)
	}
	if !removed {
		return apperrors.ErrTodoNotFound
	}

	s.tombstone(ctx, id)
	return nil
}

// patchFromRequest keeps only the keys present in the request body.
func patchFromRequest(req dto.UpdateTodoRequest) (repository.TodoPatch, error) {
	var patch repository.TodoPatch

	if req.Title.Set {
		if req.Title.Null || strings.TrimSpace(req.Title.Value) == "" {
			return patch, apperrors.ErrTitleRequired
		}
		patch.Title = req.Title.Ptr()
	}

	if req.Description.Set {
		if req.Description.Null {
			patch.ClearDescription = true
		} else {
			patch.Description = req.Description.Ptr()
		}
	}

	if req.Completed.Set {
		if req.Completed.Null {
			return patch, apperrors.Validation("completed must be a boolean")
		}
		patch.Completed = req.Completed.Ptr()
	}

	return patch, nil
}

func (s *TodoService) cachedTodo(ctx context.Context, id uint) *model.Todo {
	if s.cache == nil {
		return nil
	}

	todo, err := s.cache.Get(ctx, id)
	if err != nil {
		log.Printf("todo cache: get %d: %v", id, err)
		return nil
	}
	return todo
}

func (s *TodoService) fillCache(ctx context.Context, todo *model.Todo) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Add(ctx, todo); err != nil {
		log.Printf("todo cache: add %d: %v", todo.ID, err)
	}
}

func (s *TodoService) storeInCache(ctx context.Context, todo *model.Todo) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Set(ctx, todo); err != nil {
		log.Printf("todo cache: set %d: %v", todo.ID, err)
		s.tombstone(ctx, todo.ID)
	}
}

func (s *TodoService) tombstone(ctx context.Context, id uint) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Tombstone(ctx, id); err != nil {
		log.Printf("todo cache: tombstone %d: %v", id, err)
	}
}
