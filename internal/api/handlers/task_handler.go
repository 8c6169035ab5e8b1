package handlers

import (
	"context"
	"net/http"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/go-chi/chi/v5"
)

type TaskUsecase interface {
	ListTasks(ctx context.Context, filter entity.TaskFilter) ([]entity.Task, error)
	GetTask(ctx context.Context, id string) (*entity.Task, error)
	CreateTask(ctx context.Context, req *entity.CreateTaskRequest) (*entity.Task, error)
	UpdateTask(ctx context.Context, id string, req *entity.UpdateTaskRequest) (*entity.Task, error)
	DeleteTask(ctx context.Context, id string) error
	TaskHistory(ctx context.Context, id string) ([]entity.BoardAudit, error)
}

type TaskHandler struct {
	taskService TaskUsecase
	errs        ErrorWriter
}

func NewTaskHandler(taskService TaskUsecase, errs ErrorWriter) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		errs:        errs,
	}
}

// создаем новую задачу
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req entity.CreateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errs.badRequest(w, "Invalid JSON")
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), &req)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}

	writeJSON(w, task, http.StatusCreated)
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.taskService.GetTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeJSON(w, task, http.StatusOK)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var req entity.UpdateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errs.badRequest(w, "Invalid JSON")
		return
	}

	task, err := h.taskService.UpdateTask(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeJSON(w, task, http.StatusOK)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.taskService.DeleteTask(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeJSON(w, messageResponse{Message: "Task deleted"}, http.StatusOK)
}

func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tasks, err := h.taskService.ListTasks(r.Context(), entity.TaskFilter{
		Status: q.Get("status"),
		Search: q.Get("search"),
	})
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeJSON(w, tasks, http.StatusOK)
}

func (h *TaskHandler) TaskHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.taskService.TaskHistory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeJSON(w, history, http.StatusOK)
}
