package repository

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	model "todo-api.com/todo-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(&model.Todo{})
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

// stepClock advances by one second on every call.
type stepClock struct {
	mu  sync.Mutex
	cur time.Time
}

func newStepClock() *stepClock {
	return &stepClock{cur: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(time.Second)
	return c.cur
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestTodoRepository_CreateAndFind(t *testing.T) {
	repo := NewTodoRepository(setupTestDB(t))
	ctx := context.Background()

	todo, err := repo.Create(ctx, "Buy milk", nil)
	if err != nil {
		t.Fatalf("failed to create todo: %v", err)
	}

	if todo.ID == 0 {
		t.Error("expected todo ID to be set")
	}
	if todo.Completed {
		t.Error("expected new todo to be incomplete")
	}
	if !todo.CreatedAt.Equal(todo.UpdatedAt) {
		t.Errorf("expected created_at == updated_at, got %v and %v", todo.CreatedAt, todo.UpdatedAt)
	}

	found, err := repo.FindByID(ctx, todo.ID)
	if err != nil {
		t.Fatalf("failed to find todo: %v", err)
	}
	if found == nil {
		t.Fatal("expected todo to be found")
	}
	if found.Title != "Buy milk" || found.Description != nil {
		t.Errorf("unexpected todo %+v", found)
	}
	if !found.CreatedAt.Equal(found.UpdatedAt) {
		t.Errorf("expected stored created_at == updated_at, got %v and %v", found.CreatedAt, found.UpdatedAt)
	}
}

func TestTodoRepository_FindMissing(t *testing.T) {
	repo := NewTodoRepository(setupTestDB(t))

	todo, err := repo.FindByID(context.Background(), 42)
	if err != nil {
		t.Fatalf("expected no error for missing todo, got %v", err)
	}
	if todo != nil {
		t.Errorf("expected nil todo, got %+v", todo)
	}
}

func TestTodoRepository_UpdateOnlySetFields(t *testing.T) {
	clock := newStepClock()
	repo := NewTodoRepository(setupTestDB(t), WithClock(clock.Now))
	ctx := context.Background()

	created, _ := repo.Create(ctx, "Write report", strPtr("quarterly"))

	updated, err := repo.Update(ctx, created.ID, TodoPatch{Completed: boolPtr(true)})
	if err != nil {
		t.Fatalf("failed to update todo: %v", err)
	}
	if updated == nil {
		t.Fatal("expected updated todo")
	}

	if updated.Title != "Write report" {
		t.Errorf("expected title unchanged, got %q", updated.Title)
	}
	if updated.Description == nil || *updated.Description != "quarterly" {
		t.Errorf("expected description unchanged, got %v", updated.Description)
	}
	if !updated.Completed {
		t.Error("expected completed to be true")
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("created_at changed from %v to %v", created.CreatedAt, updated.CreatedAt)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Errorf("expected updated_at to advance, got %v then %v", created.UpdatedAt, updated.UpdatedAt)
	}
}

func TestTodoRepository_UpdateWritesFalseAndClears(t *testing.T) {
	repo := NewTodoRepository(setupTestDB(t))
	ctx := context.Background()

	created, _ := repo.Create(ctx, "Call mom", strPtr("sunday"))
	_, _ = repo.Update(ctx, created.ID, TodoPatch{Completed: boolPtr(true)})

	updated, err := repo.Update(ctx, created.ID, TodoPatch{
		Completed:        boolPtr(false),
		ClearDescription: true,
	})
	if err != nil {
		t.Fatalf("failed to update todo: %v", err)
	}

	if updated.Completed {
		t.Error("expected explicit false to be written")
	}
	if updated.Description != nil {
		t.Errorf("expected description cleared, got %q", *updated.Description)
	}
	if updated.UpdatedAt.Before(updated.CreatedAt) {
		t.Errorf("updated_at %v before created_at %v", updated.UpdatedAt, updated.CreatedAt)
	}
}

func TestTodoRepository_UpdateMissing(t *testing.T) {
	repo := NewTodoRepository(setupTestDB(t))

	todo, err := repo.Update(context.Background(), 7, TodoPatch{Title: strPtr("x")})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if todo != nil {
		t.Errorf("expected nil todo, got %+v", todo)
	}
}

func TestTodoRepository_Delete(t *testing.T) {
	repo := NewTodoRepository(setupTestDB(t))
	ctx := context.Background()

	todo, _ := repo.Create(ctx, "Throw out trash", nil)

	removed, err := repo.Delete(ctx, todo.ID)
	if err != nil {
		t.Fatalf("failed to delete todo: %v", err)
	}
	if !removed {
		t.Error("expected row to be removed")
	}

	removed, err = repo.Delete(ctx, todo.ID)
	if err != nil {
		t.Fatalf("failed to delete todo twice: %v", err)
	}
	if removed {
		t.Error("expected second delete to report nothing removed")
	}

	found, _ := repo.FindByID(ctx, todo.ID)
	if found != nil {
		t.Error("expected deleted todo to be gone")
	}
}

func TestTodoRepository_IDsNotReused(t *testing.T) {
	repo := NewTodoRepository(setupTestDB(t))
	ctx := context.Background()

	first, _ := repo.Create(ctx, "first", nil)
	second, _ := repo.Create(ctx, "second", nil)
	_, _ = repo.Delete(ctx, second.ID)

	third, err := repo.Create(ctx, "third", nil)
	if err != nil {
		t.Fatalf("failed to create todo: %v", err)
	}

	if third.ID == first.ID || third.ID == second.ID {
		t.Errorf("expected fresh id, got %d (previous %d, %d)", third.ID, first.ID, second.ID)
	}
}

func TestTodoRepository_ListPaging(t *testing.T) {
	repo := NewTodoRepository(setupTestDB(t))
	ctx := context.Background()

	const total = 120
	for i := 0; i < total; i++ {
		if _, err := repo.Create(ctx, fmt.Sprintf("todo %d", i), nil); err != nil {
			t.Fatalf("failed to create todo %d: %v", i, err)
		}
	}

	page, err := repo.List(ctx, 0, 1000)
	if err != nil {
		t.Fatalf("failed to list todos: %v", err)
	}
	if len(page) != MaxListLimit {
		t.Errorf("expected limit capped at %d, got %d", MaxListLimit, len(page))
	}

	all, _ := repo.List(ctx, 0, 100)
	skipped, _ := repo.List(ctx, 5, 10)
	if len(skipped) != 10 {
		t.Fatalf("expected 10 todos, got %d", len(skipped))
	}
	for i, todo := range skipped {
		if todo.ID != all[i+5].ID {
			t.Errorf("position %d: expected id %d, got %d", i, all[i+5].ID, todo.ID)
		}
	}

	tail, _ := repo.List(ctx, 110, 100)
	if len(tail) != total-110 {
		t.Errorf("expected %d todos past offset, got %d", total-110, len(tail))
	}

	empty, err := repo.List(ctx, 0, 0)
	if err != nil || len(empty) != 0 {
		t.Errorf("expected empty page for limit 0, got %d (%v)", len(empty), err)
	}

	n, err := repo.Count(ctx)
	if err != nil || n != total {
		t.Errorf("expected count %d, got %d (%v)", total, n, err)
	}
}

func TestTodoRepository_MissingIDIsNotLogged(t *testing.T) {
	db := setupTestDB(t)

	var buf bytes.Buffer
	db.Logger = logger.New(log.New(&buf, "", 0), logger.Config{
		LogLevel: logger.Error,
		Colorful: false,
	})
	repo := NewTodoRepository(db)
	ctx := context.Background()

	if todo, err := repo.FindByID(ctx, 404); err != nil || todo != nil {
		t.Fatalf("expected nil todo, got %v (%v)", todo, err)
	}
	if todo, err := repo.Update(ctx, 404, TodoPatch{Completed: boolPtr(true)}); err != nil || todo != nil {
		t.Fatalf("expected nil todo, got %v (%v)", todo, err)
	}

	if strings.Contains(buf.String(), "record not found") {
		t.Errorf("expected lookups of a missing id to stay quiet, got log:\n%s", buf.String())
	}
}
