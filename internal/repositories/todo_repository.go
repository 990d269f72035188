package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	model "todo-api.com/todo-api/internal/models"
)

const MaxListLimit = 100

// TodoPatch holds the fields of an update. A nil field is left unchanged;
// ClearDescription sets the description to NULL.
type TodoPatch struct {
	Title            *string
	Description      *string
	ClearDescription bool
	Completed        *bool
}

func (p TodoPatch) columns() map[string]interface{} {
	cols := make(map[string]interface{}, 4)
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.ClearDescription {
		cols["description"] = nil
	} else if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Completed != nil {
		cols["completed"] = *p.Completed
	}
	return cols
}

type TodoRepository struct {
	db  *gorm.DB
	now func() time.Time
}

type Option func(*TodoRepository)

func WithClock(now func() time.Time) Option {
	return func(r *TodoRepository) {
		r.now = now
	}
}

func NewTodoRepository(db *gorm.DB, opts ...Option) *TodoRepository {
	r := &TodoRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *TodoRepository) Create(ctx context.Context, title string, description *string) (*model.Todo, error) {
	now := r.now()
	todo := &model.Todo{
		Title:       title,
		Description: description,
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := r.db.WithContext(ctx).Create(todo).Error; err != nil {
		return nil, err
	}

	return todo, nil
}

func (r *TodoRepository) List(ctx context.Context, offset, limit int) ([]model.Todo, error) {
	if offset < 0 {
		offset = 0
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if limit <= 0 {
		return []model.Todo{}, nil
	}

	todos := make([]model.Todo, 0, limit)
	err := r.db.WithContext(ctx).
		Order("id asc").
		Offset(offset).
		Limit(limit).
		Find(&todos).Error
	if err != nil {
		return nil, err
	}

	return todos, nil
}

func (r *TodoRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Todo{}).Count(&n).Error
	return n, err
}

// findTodo uses Find rather than First so a missing row is not reported
// as ErrRecordNotFound.
func findTodo(db *gorm.DB, id uint) (*model.Todo, error) {
	var todo model.Todo
	res := db.Where("id = ?", id).Limit(1).Find(&todo)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &todo, nil
}

// FindByID returns nil, nil when no todo has the id.
func (r *TodoRepository) FindByID(ctx context.Context, id uint) (*model.Todo, error) {
	return findTodo(r.db.WithContext(ctx), id)
}

// Update applies patch and refreshes updated_at in one transaction. It
// returns nil, nil when no todo has the id.
func (r *TodoRepository) Update(ctx context.Context, id uint, patch TodoPatch) (*model.Todo, error) {
	var updated *model.Todo

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findTodo(tx, id)
		if err != nil || existing == nil {
			return err
		}

		cols := patch.columns()
		cols["updated_at"] = r.now()

		res := tx.Model(&model.Todo{}).Where("id = ?", id).Updates(cols)
		if res.Error != nil {
			return res.Error
		}

		updated, err = findTodo(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (r *TodoRepository) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&model.Todo{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Ping checks that a pooled connection can reach the database.
func (r *TodoRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
