package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/intizom/intizom/internal/app/domain/habit"
	"github.com/intizom/intizom/internal/app/storage"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func TestCreateCompletionInserts(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO habit_completions").
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, inserted, err := store.CreateCompletion(context.Background(), habit.Completion{
		HabitID:     "h1",
		CompletedAt: time.Now().UTC(),
		CompletedOn: "2026-08-30",
	})
	if err != nil {
		t.Fatalf("create completion: %v", err)
	}
	if !inserted {
		t.Fatalf("expected inserted = true")
	}
	if c.ID == "" {
		t.Fatalf("expected generated id")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateCompletionConflictReturnsExisting(t *testing.T) {
	store, mock := newMockStore(t)

	now := time.Now().UTC()
	mock.ExpectExec("INSERT INTO habit_completions").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id, habit_id, completed_at, completed_on, note, created_at").
		WillReturnRows(sqlmock.NewRows([]string{"id", "habit_id", "completed_at", "completed_on", "note", "created_at"}).
			AddRow("existing-id", "h1", now, "2026-08-30", "", now))

	c, inserted, err := store.CreateCompletion(context.Background(), habit.Completion{
		HabitID:     "h1",
		CompletedAt: now,
		CompletedOn: "2026-08-30",
	})
	if err != nil {
		t.Fatalf("create completion: %v", err)
	}
	if inserted {
		t.Fatalf("expected inserted = false on conflict")
	}
	if c.ID != "existing-id" {
		t.Fatalf("expected existing row back, got id %q", c.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetHabitNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT .* FROM habits").WillReturnError(sql.ErrNoRows)

	if _, err := store.GetHabit(context.Background(), "missing"); !stderrors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
