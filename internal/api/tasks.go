package api

import (
	"context"
	"net/http"

	apperrors "donationhub/internal/errors"
	"donationhub/internal/models"
)

// TaskService is the signed-in user's task manager.
type TaskService struct {
	c *Client
}

func taskFrom(data any) (models.Task, error) {
	m := object(data)
	if inner, ok := m["task"].(map[string]any); ok {
		m = inner
	}
	var t models.Task
	err := decodeInto(m, &t)
	return t, err
}

func taskList(data any) ([]models.Task, error) {
	var tasks []models.Task
	if err := decodeInto(items(data, "tasks"), &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// List returns tasks matching filter.
func (s *TaskService) List(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	q := newQuery().
		set("status", filter.Status).
		set("priority", filter.Priority).
		set("category", filter.Category).
		set("startDate", filter.From).
		set("endDate", filter.To).
		values()

	data, err := s.c.call(ctx, http.MethodGet, "/user/tasks", q, nil)
	if err != nil {
		return nil, err
	}
	return taskList(data)
}

// Today returns tasks due today.
func (s *TaskService) Today(ctx context.Context) ([]models.Task, error) {
	data, err := s.c.call(ctx, http.MethodGet, "/user/tasks/today", nil, nil)
	if err != nil {
		return nil, err
	}
	return taskList(data)
}

// Stats counts tasks per status.
func (s *TaskService) Stats(ctx context.Context) (models.TaskStats, error) {
	data, err := s.c.call(ctx, http.MethodGet, "/user/tasks/stats", nil, nil)
	if err != nil {
		return models.TaskStats{}, err
	}
	m := object(data)
	if inner, ok := m["stats"].(map[string]any); ok {
		m = inner
	}
	var stats models.TaskStats
	err = decodeInto(m, &stats)
	return stats, err
}

// Get returns a single task.
func (s *TaskService) Get(ctx context.Context, id string) (models.Task, error) {
	data, err := s.c.call(ctx, http.MethodGet, "/user/tasks/"+escape(id), nil, nil)
	if err != nil {
		return models.Task{}, notFound(err, "task", id)
	}
	return taskFrom(data)
}

// Create adds a task.
func (s *TaskService) Create(ctx context.Context, t models.Task) (models.Task, error) {
	if t.Status == "" {
		t.Status = models.TaskPending
	}
	data, err := s.c.call(ctx, http.MethodPost, "/user/tasks", nil, t)
	if err != nil {
		return models.Task{}, err
	}
	return taskFrom(data)
}

// Update replaces a task's fields.
func (s *TaskService) Update(ctx context.Context, id string, t models.Task) (models.Task, error) {
	data, err := s.c.call(ctx, http.MethodPut, "/user/tasks/"+escape(id), nil, t)
	if err != nil {
		return models.Task{}, notFound(err, "task", id)
	}
	return taskFrom(data)
}

// UpdateStatus moves a task to another status.
func (s *TaskService) UpdateStatus(ctx context.Context, id string, status models.TaskStatus) (models.Task, error) {
	if !status.Valid() {
		return models.Task{}, apperrors.ValidationError{Field: "status", Message: "unknown task status " + string(status)}
	}
	data, err := s.c.call(ctx, http.MethodPatch, "/user/tasks/"+escape(id)+"/status", nil, map[string]models.TaskStatus{"status": status})
	if err != nil {
		return models.Task{}, notFound(err, "task", id)
	}
	return taskFrom(data)
}

// Delete removes a task.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	_, err := s.c.call(ctx, http.MethodDelete, "/user/tasks/"+escape(id), nil, nil)
	return notFound(err, "task", id)
}
