package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockTaskService - мок для TaskUsecase
type MockTaskService struct {
	ListTasksFunc   func(ctx context.Context, filter entity.TaskFilter) ([]entity.Task, error)
	GetTaskFunc     func(ctx context.Context, id string) (*entity.Task, error)
	CreateTaskFunc  func(ctx context.Context, req *entity.CreateTaskRequest) (*entity.Task, error)
	UpdateTaskFunc  func(ctx context.Context, id string, req *entity.UpdateTaskRequest) (*entity.Task, error)
	DeleteTaskFunc  func(ctx context.Context, id string) error
	TaskHistoryFunc func(ctx context.Context, id string) ([]entity.BoardAudit, error)
}

func (m *MockTaskService) ListTasks(ctx context.Context, filter entity.TaskFilter) ([]entity.Task, error) {
	if m.ListTasksFunc != nil {
		return m.ListTasksFunc(ctx, filter)
	}
	return []entity.Task{}, nil
}

func (m *MockTaskService) GetTask(ctx context.Context, id string) (*entity.Task, error) {
	if m.GetTaskFunc != nil {
		return m.GetTaskFunc(ctx, id)
	}
	return nil, entity.ErrTaskNotFound
}

func (m *MockTaskService) CreateTask(ctx context.Context, req *entity.CreateTaskRequest) (*entity.Task, error) {
	if m.CreateTaskFunc != nil {
		return m.CreateTaskFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockTaskService) UpdateTask(ctx context.Context, id string, req *entity.UpdateTaskRequest) (*entity.Task, error) {
	if m.UpdateTaskFunc != nil {
		return m.UpdateTaskFunc(ctx, id, req)
	}
	return nil, nil
}

func (m *MockTaskService) DeleteTask(ctx context.Context, id string) error {
	if m.DeleteTaskFunc != nil {
		return m.DeleteTaskFunc(ctx, id)
	}
	return nil
}

func (m *MockTaskService) TaskHistory(ctx context.Context, id string) ([]entity.BoardAudit, error) {
	if m.TaskHistoryFunc != nil {
		return m.TaskHistoryFunc(ctx, id)
	}
	return []entity.BoardAudit{}, nil
}

// MockSectionService - мок для SectionUsecase
type MockSectionService struct {
	ListSectionsFunc  func(ctx context.Context) ([]entity.Section, error)
	AddSectionFunc    func(ctx context.Context, name string) ([]entity.Section, error)
	RenameSectionFunc func(ctx context.Context, id, name string) ([]entity.Section, error)
	DeleteSectionFunc func(ctx context.Context, id string) ([]entity.Section, error)
}

func (m *MockSectionService) ListSections(ctx context.Context) ([]entity.Section, error) {
	if m.ListSectionsFunc != nil {
		return m.ListSectionsFunc(ctx)
	}
	return []entity.Section{}, nil
}

func (m *MockSectionService) AddSection(ctx context.Context, name string) ([]entity.Section, error) {
	if m.AddSectionFunc != nil {
		return m.AddSectionFunc(ctx, name)
	}
	return []entity.Section{}, nil
}

func (m *MockSectionService) RenameSection(ctx context.Context, id, name string) ([]entity.Section, error) {
	if m.RenameSectionFunc != nil {
		return m.RenameSectionFunc(ctx, id, name)
	}
	return []entity.Section{}, nil
}

func (m *MockSectionService) DeleteSection(ctx context.Context, id string) ([]entity.Section, error) {
	if m.DeleteSectionFunc != nil {
		return m.DeleteSectionFunc(ctx, id)
	}
	return []entity.Section{}, nil
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

func newTestRouter(tasks *MockTaskService, sections *MockSectionService, detail bool) http.Handler {
	return NewRouter(
		RouterConfig{FrontendURL: "http://localhost:8080", Detail: detail},
		tasks,
		sections,
		pingerFunc(func(ctx context.Context) error { return nil }),
		NewMetrics(),
	)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRootBanner(t *testing.T) {
	rec := do(t, newTestRouter(&MockTaskService{}, &MockSectionService{}, false), http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Kanban Board API is running!", rec.Body.String())
}

func TestHealthzReportsStoreFailure(t *testing.T) {
	h := NewRouter(RouterConfig{}, &MockTaskService{}, &MockSectionService{},
		pingerFunc(func(ctx context.Context) error { return errors.New("no reachable servers") }), nil)

	rec := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unavailable", decodeMessage(t, rec)["status"])
}

func TestCreateTask(t *testing.T) {
	tasks := &MockTaskService{
		CreateTaskFunc: func(ctx context.Context, req *entity.CreateTaskRequest) (*entity.Task, error) {
			assert.Equal(t, "Write docs", req.Name)
			assert.JSONEq(t, `["alice"]`, string(req.Assignees))
			return &entity.Task{ID: "t1", Name: req.Name, Status: "Todo", Assignees: []string{"alice"}}, nil
		},
	}
	rec := do(t, newTestRouter(tasks, &MockSectionService{}, false),
		http.MethodPost, "/api/tasks", `{"name":"Write docs","assignees":["alice"]}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var task entity.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
	assert.Equal(t, "t1", task.ID)
	assert.Equal(t, "Todo", task.Status)
}

func TestMalformedJSON(t *testing.T) {
	h := newTestRouter(&MockTaskService{}, &MockSectionService{}, false)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/tasks"},
		{http.MethodPut, "/api/tasks/t1"},
		{http.MethodPost, "/api/sections"},
		{http.MethodPut, "/api/sections/s1"},
	} {
		rec := do(t, h, tc.method, tc.path, `{"name":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code, tc.path)
		assert.Equal(t, "Invalid JSON", decodeMessage(t, rec)["message"], tc.path)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		detail  bool
		code    int
		message string
		errText string
	}{
		{"validation", entity.ErrTaskNameRequired, false, http.StatusBadRequest, "Task name is required", ""},
		{"not found", entity.ErrTaskNotFound, false, http.StatusNotFound, "Task not found", ""},
		{"store hidden", entity.StoreError("get task", errors.New("socket closed")), false, http.StatusInternalServerError, "Internal server error", ""},
		{"store detail", entity.StoreError("get task", errors.New("socket closed")), true, http.StatusInternalServerError, "Internal server error", "store error: get task: socket closed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks := &MockTaskService{
				GetTaskFunc: func(ctx context.Context, id string) (*entity.Task, error) {
					return nil, tt.err
				},
			}
			rec := do(t, newTestRouter(tasks, &MockSectionService{}, tt.detail), http.MethodGet, "/api/tasks/t1", "")

			assert.Equal(t, tt.code, rec.Code)
			body := decodeMessage(t, rec)
			assert.Equal(t, tt.message, body["message"])
			assert.Equal(t, tt.errText, body["error"])
		})
	}
}

func TestListTasksPassesFilter(t *testing.T) {
	var got entity.TaskFilter
	tasks := &MockTaskService{
		ListTasksFunc: func(ctx context.Context, filter entity.TaskFilter) ([]entity.Task, error) {
			got = filter
			return []entity.Task{}, nil
		},
	}
	rec := do(t, newTestRouter(tasks, &MockSectionService{}, false),
		http.MethodGet, "/api/tasks?status=In+Progress&search=login", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
	assert.Equal(t, entity.TaskFilter{Status: "In Progress", Search: "login"}, got)
}

func TestUpdateTaskEmptyBody(t *testing.T) {
	tasks := &MockTaskService{
		UpdateTaskFunc: func(ctx context.Context, id string, req *entity.UpdateTaskRequest) (*entity.Task, error) {
			assert.Equal(t, "t1", id)
			assert.Nil(t, req.Name)
			return &entity.Task{ID: id}, nil
		},
	}
	rec := do(t, newTestRouter(tasks, &MockSectionService{}, false), http.MethodPut, "/api/tasks/t1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeleteTask(t *testing.T) {
	var deleted string
	tasks := &MockTaskService{
		DeleteTaskFunc: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	rec := do(t, newTestRouter(tasks, &MockSectionService{}, false), http.MethodDelete, "/api/tasks/t9", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "t9", deleted)
	assert.Equal(t, "Task deleted", decodeMessage(t, rec)["message"])
}

func TestTaskHistoryRoute(t *testing.T) {
	tasks := &MockTaskService{
		TaskHistoryFunc: func(ctx context.Context, id string) ([]entity.BoardAudit, error) {
			return []entity.BoardAudit{{ID: "1", Action: entity.ActionCreate, EntityType: entity.EntityTask, EntityID: id}}, nil
		},
	}
	rec := do(t, newTestRouter(tasks, &MockSectionService{}, false), http.MethodGet, "/api/tasks/t1/history", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var history []entity.BoardAudit
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history, 1)
	assert.Equal(t, "t1", history[0].EntityID)
}

func TestTaskHistoryRouteUnknownTask(t *testing.T) {
	tasks := &MockTaskService{
		TaskHistoryFunc: func(ctx context.Context, id string) ([]entity.BoardAudit, error) {
			return nil, entity.ErrTaskNotFound
		},
	}
	rec := do(t, newTestRouter(tasks, &MockSectionService{}, false), http.MethodGet, "/api/tasks/missing/history", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Task not found", decodeMessage(t, rec)["message"])
}

func TestSectionRoutes(t *testing.T) {
	board := []entity.Section{
		{ID: "s1", Name: "Todo", Order: 0, IsDefault: true},
		{ID: "s2", Name: "Review", Order: 1},
	}
	sections := &MockSectionService{
		ListSectionsFunc: func(ctx context.Context) ([]entity.Section, error) { return board, nil },
		AddSectionFunc: func(ctx context.Context, name string) ([]entity.Section, error) {
			assert.Equal(t, "Review", name)
			return board, nil
		},
		RenameSectionFunc: func(ctx context.Context, id, name string) ([]entity.Section, error) {
			assert.Equal(t, "s1", id)
			assert.Equal(t, "Backlog", name)
			return board, nil
		},
		DeleteSectionFunc: func(ctx context.Context, id string) ([]entity.Section, error) {
			if id == "s1" {
				return nil, entity.ErrDefaultSection
			}
			return board[:1], nil
		},
	}
	h := newTestRouter(&MockTaskService{}, sections, false)

	rec := do(t, h, http.MethodGet, "/api/sections", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/sections", `{"name":"Review"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	var list []entity.Section
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	rec = do(t, h, http.MethodPut, "/api/sections/s1", `{"name":"Backlog"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/sections/s1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Default section cannot be deleted", decodeMessage(t, rec)["message"])

	rec = do(t, h, http.MethodDelete, "/api/sections/s2", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(&MockTaskService{}, &MockSectionService{}, false)
	do(t, h, http.MethodGet, "/api/sections", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `kanban_http_requests_total{method="GET",route="/api/sections`)
	assert.NotContains(t, rec.Body.String(), `route="unmatched"`)
}

func TestCORSPreflight(t *testing.T) {
	h := newTestRouter(&MockTaskService{}, &MockSectionService{}, false)

	req := httptest.NewRequest(http.MethodOptions, "/api/tasks", nil)
	req.Header.Set("Origin", "http://localhost:8080")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:8080", rec.Header().Get("Access-Control-Allow-Origin"))
}
