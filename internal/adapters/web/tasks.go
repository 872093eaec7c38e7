package web

import (
	"net/http"
	"time"

	"cakeflow-backend/internal/core"
)

type categoryRequest struct {
	Name        string  `json:"name"`
	Color       *string `json:"color,omitempty"`
	Description *string `json:"description,omitempty"`
}

type taskRequest struct {
	Title       string             `json:"title"`
	Description *string            `json:"description,omitempty"`
	CategoryID  *string            `json:"category_id,omitempty"`
	Priority    *core.TaskPriority `json:"priority,omitempty"`
	DueDate     *time.Time         `json:"due_date,omitempty"`
}

type taskPatch struct {
	Title       *string            `json:"title,omitempty"`
	Description *string            `json:"description,omitempty"`
	CategoryID  *string            `json:"category_id,omitempty"`
	Status      *core.TaskStatus   `json:"status,omitempty"`
	Priority    *core.TaskPriority `json:"priority,omitempty"`
	DueDate     *time.Time         `json:"due_date,omitempty"`
}

// requireCaller returns the authenticated user id, writing a 401 when the
// context carries no identity.
func (h *Handler) requireCaller(w http.ResponseWriter, r *http.Request) (string, bool) {
	identity := identityFromContext(r.Context())
	if identity == nil {
		writeError(w, r, "not authenticated", "UNAUTHORIZED", http.StatusUnauthorized)
		return "", false
	}
	return identity.ID, true
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	categories, err := h.svc.Tasks.GetCategories(r.Context(), userID)
	if err != nil {
		writeError(w, r, "failed to list categories", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, categories)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	category, err := h.svc.Tasks.CreateCategory(r.Context(), userID, core.CreateCategoryInput{
		Name:        req.Name,
		Color:       req.Color,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	writeJSONStatus(w, http.StatusCreated, category)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	if err := h.svc.Tasks.DeleteCategory(r.Context(), userID, urlParam(r, "id")); err != nil {
		writeNotFoundOrError(w, r, err, "category")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	filter := core.TaskFilter{
		Status:     core.TaskStatus(r.URL.Query().Get("status")),
		CategoryID: r.URL.Query().Get("category_id"),
		Priority:   core.TaskPriority(r.URL.Query().Get("priority")),
	}
	tasks, err := h.svc.Tasks.GetTasks(r.Context(), userID, filter)
	if err != nil {
		writeError(w, r, "failed to list tasks", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, tasks)
}

func (h *Handler) getTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	task, err := h.svc.Tasks.GetTask(r.Context(), userID, urlParam(r, "id"))
	if err != nil {
		writeNotFoundOrError(w, r, err, "task")
		return
	}
	writeJSON(w, task)
}

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	var req taskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	task, err := h.svc.Tasks.CreateTask(r.Context(), userID, core.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	writeJSONStatus(w, http.StatusCreated, task)
}

func (h *Handler) updateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	var req taskPatch
	if !decodeJSON(w, r, &req) {
		return
	}
	task, err := h.svc.Tasks.UpdateTask(r.Context(), userID, urlParam(r, "id"), core.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		writeNotFoundOrError(w, r, err, "task")
		return
	}
	writeJSON(w, task)
}

func (h *Handler) deleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	if err := h.svc.Tasks.DeleteTask(r.Context(), userID, urlParam(r, "id")); err != nil {
		writeNotFoundOrError(w, r, err, "task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) taskStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	stats, err := h.svc.Tasks.GetTaskStats(r.Context(), userID)
	if err != nil {
		writeError(w, r, "failed to build task stats", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, stats)
}
