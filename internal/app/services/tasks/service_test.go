package tasks

import (
	"context"
	"testing"

	"github.com/intizom/intizom/internal/app/domain/task"
	"github.com/intizom/intizom/internal/app/storage/memory"
	"github.com/intizom/intizom/internal/errors"
)

func TestCreateDefaultsAndValidation(t *testing.T) {
	svc := New(memory.New(), nil)

	created, err := svc.Create(context.Background(), "u1", CreateInput{Title: "ship release"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != task.StatusTodo {
		t.Fatalf("status = %s, want todo default", created.Status)
	}
	if created.Priority != task.PriorityMedium {
		t.Fatalf("priority = %s, want medium default", created.Priority)
	}

	if _, err := svc.Create(context.Background(), "u1", CreateInput{Title: ""}); err == nil {
		t.Fatalf("expected validation error for blank title")
	}
	if _, err := svc.Create(context.Background(), "u1", CreateInput{Title: "x", Status: "archived"}); err == nil {
		t.Fatalf("expected validation error for unknown status")
	}
}

func TestMoveChangesColumnAndPosition(t *testing.T) {
	svc := New(memory.New(), nil)
	created, err := svc.Create(context.Background(), "u1", CreateInput{Title: "ship release"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	moved, err := svc.Move(context.Background(), "u1", created.ID, "doing", 3)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if moved.Status != task.StatusDoing || moved.Position != 3 {
		t.Fatalf("moved to %s/%d, want doing/3", moved.Status, moved.Position)
	}
}

func TestSubTaskLifecycle(t *testing.T) {
	svc := New(memory.New(), nil)
	created, err := svc.Create(context.Background(), "u1", CreateInput{Title: "ship release"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	st, err := svc.AddSubTask(context.Background(), "u1", created.ID, "write changelog", 0)
	if err != nil {
		t.Fatalf("add subtask: %v", err)
	}
	if st.Done {
		t.Fatalf("new subtask must start not done")
	}

	toggled, err := svc.ToggleSubTask(context.Background(), "u1", st.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !toggled.Done {
		t.Fatalf("expected subtask done after toggle")
	}

	detail, err := svc.Get(context.Background(), "u1", created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(detail.SubTasks) != 1 || !detail.SubTasks[0].Done {
		t.Fatalf("unexpected subtasks: %+v", detail.SubTasks)
	}

	if err := svc.DeleteSubTask(context.Background(), "u1", st.ID); err != nil {
		t.Fatalf("delete subtask: %v", err)
	}
}

func TestSubTaskOwnershipFollowsParent(t *testing.T) {
	svc := New(memory.New(), nil)
	created, err := svc.Create(context.Background(), "u1", CreateInput{Title: "ship release"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	st, err := svc.AddSubTask(context.Background(), "u1", created.ID, "write changelog", 0)
	if err != nil {
		t.Fatalf("add subtask: %v", err)
	}

	_, err = svc.ToggleSubTask(context.Background(), "u2", st.ID)
	se := errors.GetServiceError(err)
	if se == nil || se.Code != errors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestDeleteCascadesSubTasks(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)
	created, err := svc.Create(context.Background(), "u1", CreateInput{Title: "ship release"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.AddSubTask(context.Background(), "u1", created.ID, "write changelog", 0); err != nil {
		t.Fatalf("add subtask: %v", err)
	}

	if err := svc.Delete(context.Background(), "u1", created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	left, err := store.ListSubTasks(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("list subtasks: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("expected subtasks removed with task, got %d", len(left))
	}
}
