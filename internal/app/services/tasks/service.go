// Package tasks implements the kanban board: tasks with status columns,
// priorities, ordering, and per-task subtask checklists.
package tasks

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/intizom/intizom/internal/app/domain/task"
	"github.com/intizom/intizom/internal/app/storage"
	"github.com/intizom/intizom/internal/errors"
	"github.com/intizom/intizom/pkg/logger"
)

// Service manages tasks and subtasks.
type Service struct {
	store storage.TaskStore
	log   *logger.Logger
}

// New constructs a task service backed by the given store.
func New(store storage.TaskStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("tasks")
	}
	return &Service{store: store, log: log}
}

// CreateInput carries the caller-settable task fields.
type CreateInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     time.Time
	Position    int
}

// Create adds a task. Status defaults to the todo column, priority to
// medium.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (task.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return task.Task{}, errors.Validation("title is required")
	}
	status := task.StatusTodo
	if in.Status != "" {
		parsed, ok := task.ParseStatus(in.Status)
		if !ok {
			return task.Task{}, errors.Validation("status must be todo, doing or done")
		}
		status = parsed
	}
	priority, ok := task.ParsePriority(in.Priority)
	if !ok {
		return task.Task{}, errors.Validation("priority must be low, medium or high")
	}

	created, err := s.store.CreateTask(ctx, task.Task{
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Status:      status,
		Priority:    priority,
		DueDate:     in.DueDate,
		Position:    in.Position,
	})
	if err != nil {
		return task.Task{}, errors.Internal("create task", err)
	}
	s.log.WithField("task_id", created.ID).WithField("user_id", userID).Info("task created")
	return created, nil
}

// UpdateInput carries the editable task fields. Nil pointers leave the field
// unchanged.
type UpdateInput struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *time.Time
	Position    *int
}

// Update edits a task.
func (s *Service) Update(ctx context.Context, userID, taskID string, in UpdateInput) (task.Task, error) {
	t, err := s.owned(ctx, userID, taskID)
	if err != nil {
		return task.Task{}, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return task.Task{}, errors.Validation("title is required")
		}
		t.Title = title
	}
	if in.Description != nil {
		t.Description = strings.TrimSpace(*in.Description)
	}
	if in.Status != nil {
		status, ok := task.ParseStatus(*in.Status)
		if !ok {
			return task.Task{}, errors.Validation("status must be todo, doing or done")
		}
		t.Status = status
	}
	if in.Priority != nil {
		priority, ok := task.ParsePriority(*in.Priority)
		if !ok {
			return task.Task{}, errors.Validation("priority must be low, medium or high")
		}
		t.Priority = priority
	}
	if in.DueDate != nil {
		t.DueDate = *in.DueDate
	}
	if in.Position != nil {
		t.Position = *in.Position
	}

	updated, err := s.store.UpdateTask(ctx, t)
	if err != nil {
		return task.Task{}, errors.Internal("update task", err)
	}
	return updated, nil
}

// Move places a task into a column at a position. Used by board
// drag-and-drop.
func (s *Service) Move(ctx context.Context, userID, taskID, status string, position int) (task.Task, error) {
	t, err := s.owned(ctx, userID, taskID)
	if err != nil {
		return task.Task{}, err
	}
	parsed, ok := task.ParseStatus(status)
	if !ok {
		return task.Task{}, errors.Validation("status must be todo, doing or done")
	}
	t.Status = parsed
	t.Position = position
	updated, err := s.store.UpdateTask(ctx, t)
	if err != nil {
		return task.Task{}, errors.Internal("move task", err)
	}
	return updated, nil
}

// Delete removes a task and its subtasks.
func (s *Service) Delete(ctx context.Context, userID, taskID string) error {
	if _, err := s.owned(ctx, userID, taskID); err != nil {
		return err
	}
	if err := s.store.DeleteTask(ctx, taskID); err != nil {
		return errors.Internal("delete task", err)
	}
	return nil
}

// Get returns a task with its subtasks.
func (s *Service) Get(ctx context.Context, userID, taskID string) (task.WithSubTasks, error) {
	t, err := s.owned(ctx, userID, taskID)
	if err != nil {
		return task.WithSubTasks{}, err
	}
	subs, err := s.store.ListSubTasks(ctx, taskID)
	if err != nil {
		return task.WithSubTasks{}, errors.Internal("list subtasks", err)
	}
	return task.WithSubTasks{Task: t, SubTasks: subs}, nil
}

// List returns the user's tasks with subtasks, board order.
func (s *Service) List(ctx context.Context, userID string) ([]task.WithSubTasks, error) {
	items, err := s.store.ListTasks(ctx, userID)
	if err != nil {
		return nil, errors.Internal("list tasks", err)
	}
	result := make([]task.WithSubTasks, 0, len(items))
	for _, t := range items {
		subs, err := s.store.ListSubTasks(ctx, t.ID)
		if err != nil {
			return nil, errors.Internal("list subtasks", err)
		}
		result = append(result, task.WithSubTasks{Task: t, SubTasks: subs})
	}
	return result, nil
}

// AddSubTask appends a checklist item to a task.
func (s *Service) AddSubTask(ctx context.Context, userID, taskID, title string, position int) (task.SubTask, error) {
	if _, err := s.owned(ctx, userID, taskID); err != nil {
		return task.SubTask{}, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return task.SubTask{}, errors.Validation("title is required")
	}
	created, err := s.store.CreateSubTask(ctx, task.SubTask{TaskID: taskID, Title: title, Position: position})
	if err != nil {
		return task.SubTask{}, errors.Internal("create subtask", err)
	}
	return created, nil
}

// UpdateSubTask edits a checklist item's title or position.
func (s *Service) UpdateSubTask(ctx context.Context, userID, subTaskID string, title *string, position *int) (task.SubTask, error) {
	st, err := s.ownedSubTask(ctx, userID, subTaskID)
	if err != nil {
		return task.SubTask{}, err
	}
	if title != nil {
		trimmed := strings.TrimSpace(*title)
		if trimmed == "" {
			return task.SubTask{}, errors.Validation("title is required")
		}
		st.Title = trimmed
	}
	if position != nil {
		st.Position = *position
	}
	updated, err := s.store.UpdateSubTask(ctx, st)
	if err != nil {
		return task.SubTask{}, errors.Internal("update subtask", err)
	}
	return updated, nil
}

// ToggleSubTask flips a checklist item's done state.
func (s *Service) ToggleSubTask(ctx context.Context, userID, subTaskID string) (task.SubTask, error) {
	st, err := s.ownedSubTask(ctx, userID, subTaskID)
	if err != nil {
		return task.SubTask{}, err
	}
	st.Done = !st.Done
	updated, err := s.store.UpdateSubTask(ctx, st)
	if err != nil {
		return task.SubTask{}, errors.Internal("update subtask", err)
	}
	return updated, nil
}

// DeleteSubTask removes a checklist item.
func (s *Service) DeleteSubTask(ctx context.Context, userID, subTaskID string) error {
	if _, err := s.ownedSubTask(ctx, userID, subTaskID); err != nil {
		return err
	}
	if err := s.store.DeleteSubTask(ctx, subTaskID); err != nil {
		return errors.Internal("delete subtask", err)
	}
	return nil
}

func (s *Service) owned(ctx context.Context, userID, taskID string) (task.Task, error) {
	t, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return task.Task{}, errors.NotFound("task not found")
		}
		return task.Task{}, errors.Internal("load task", err)
	}
	if t.UserID != userID {
		return task.Task{}, errors.Forbidden("task belongs to another user")
	}
	return t, nil
}

func (s *Service) ownedSubTask(ctx context.Context, userID, subTaskID string) (task.SubTask, error) {
	st, err := s.store.GetSubTask(ctx, subTaskID)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return task.SubTask{}, errors.NotFound("subtask not found")
		}
		return task.SubTask{}, errors.Internal("load subtask", err)
	}
	if _, err := s.owned(ctx, userID, st.TaskID); err != nil {
		return task.SubTask{}, err
	}
	return st, nil
}
