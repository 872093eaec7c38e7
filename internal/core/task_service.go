package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultCategoryColor = "#3B82F6"

type CreateCategoryInput struct {
	Name        string  `json:"name"`
	Color       *string `json:"color,omitempty"`
	Description *string `json:"description,omitempty"`
}

type CreateTaskInput struct {
	Title       string        `json:"title"`
	Description *string       `json:"description,omitempty"`
	CategoryID  *string       `json:"category_id,omitempty"`
	Priority    *TaskPriority `json:"priority,omitempty"`
	DueDate     *time.Time    `json:"due_date,omitempty"`
}

type UpdateTaskInput struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	CategoryID  *string       `json:"category_id,omitempty"`
	Status      *TaskStatus   `json:"status,omitempty"`
	Priority    *TaskPriority `json:"priority,omitempty"`
	DueDate     *time.Time    `json:"due_date,omitempty"`
}

// TaskFilter narrows GetTasks; zero values mean "no filter".
type TaskFilter struct {
	Status     TaskStatus
	CategoryID string
	Priority   TaskPriority
}

// TaskService manages the per-user task board and its categories. Every
// operation is scoped to the calling user's id.
type TaskService interface {
	GetCategories(ctx context.Context, userID string) ([]Category, error)
	CreateCategory(ctx context.Context, userID string, input CreateCategoryInput) (*Category, error)
	DeleteCategory(ctx context.Context, userID, id string) error

	GetTasks(ctx context.Context, userID string, filter TaskFilter) ([]Task, error)
	GetTask(ctx context.Context, userID, id string) (*Task, error)
	CreateTask(ctx context.Context, userID string, input CreateTaskInput) (*Task, error)
	UpdateTask(ctx context.Context, userID, id string, updates UpdateTaskInput) (*Task, error)
	DeleteTask(ctx context.Context, userID, id string) error

	GetTaskStats(ctx context.Context, userID string) (*TaskStats, error)
}

type taskService struct {
	pool     *pgxpool.Pool
	reporter *IssueReporter
}

func NewTaskService(pool *pgxpool.Pool, reporter *IssueReporter) TaskService {
	return &taskService{pool: pool, reporter: reporter}
}

// ── Categories ────────────────────────────────────────────────────────────────

const categoryColumns = "id, user_id, name, color, description, created_at, updated_at"

func scanCategory(row pgx.Row) (*Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *taskService) GetCategories(ctx context.Context, userID string) ([]Category, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE user_id = $1 ORDER BY name", userID)
	if err != nil {
		if IsMissingTable(err) {
			s.reporter.Report(err, "categories:list")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

func (s *taskService) CreateCategory(ctx context.Context, userID string, input CreateCategoryInput) (*Category, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.New("category name is required")
	}
	color := defaultCategoryColor
	if input.Color != nil && *input.Color != "" {
		color = *input.Color
	}

	category, err := scanCategory(s.pool.QueryRow(ctx, `
		INSERT INTO categories (user_id, name, color, description)
		VALUES ($1, $2, $3, $4)
		RETURNING `+categoryColumns,
		userID, strings.TrimSpace(input.Name), color, input.Description))
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

func (s *taskService) DeleteCategory(ctx context.Context, userID, id string) error {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM categories WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	return nil
}

// ── Tasks ─────────────────────────────────────────────────────────────────────

const taskSelect = `
	SELECT t.id, t.user_id, t.category_id, t.title, t.description,
	       t.status, t.priority, t.due_date, t.completed_at,
	       t.created_at, t.updated_at,
	       c.id, c.user_id, c.name, c.color, c.description, c.created_at, c.updated_at
	FROM tasks t
	LEFT JOIN categories c ON c.id = t.category_id
`

func scanTaskWithCategory(row pgx.Row) (*Task, error) {
	var t Task
	var cID, cUserID, cName, cColor, cDescription *string
	var cCreatedAt, cUpdatedAt *time.Time
	err := row.Scan(
		&t.ID, &t.UserID, &t.CategoryID, &t.Title, &t.Description,
		&t.Status, &t.Priority, &t.DueDate, &t.CompletedAt,
		&t.CreatedAt, &t.UpdatedAt,
		&cID, &cUserID, &cName, &cColor, &cDescription, &cCreatedAt, &cUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if cID != nil {
		t.Category = &Category{
			ID: *cID, UserID: *cUserID, Name: *cName, Color: *cColor,
			Description: cDescription, CreatedAt: *cCreatedAt, UpdatedAt: *cUpdatedAt,
		}
	}
	return &t, nil
}

func (s *taskService) GetTasks(ctx context.Context, userID string, filter TaskFilter) ([]Task, error) {
	query := taskSelect + " WHERE t.user_id = $1"
	args := []any{userID}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND t.status = $%d", len(args))
	}
	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		query += fmt.Sprintf(" AND t.category_id = $%d", len(args))
	}
	if filter.Priority != "" {
		args = append(args, filter.Priority)
		query += fmt.Sprintf(" AND t.priority = $%d", len(args))
	}
	query += " ORDER BY t.created_at DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		if IsMissingTable(err) {
			s.reporter.Report(err, "tasks:list")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTaskWithCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *taskService) GetTask(ctx context.Context, userID, id string) (*Task, error) {
	task, err := scanTaskWithCategory(s.pool.QueryRow(ctx,
		taskSelect+" WHERE t.id = $1 AND t.user_id = $2", id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

func (s *taskService) CreateTask(ctx context.Context, userID string, input CreateTaskInput) (*Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, errors.New("task title is required")
	}
	priority := PriorityMedium
	if input.Priority != nil {
		priority = *input.Priority
	}

	var id string
	err := s.pool.QueryRow(ctx, `
		INSERT INTO tasks (user_id, title, description, category_id, priority, due_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, userID, strings.TrimSpace(input.Title), input.Description, input.CategoryID, priority, input.DueDate).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return s.GetTask(ctx, userID, id)
}

func (s *taskService) UpdateTask(ctx context.Context, userID, id string, updates UpdateTaskInput) (*Task, error) {
	var set []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if updates.Title != nil {
		add("title", *updates.Title)
	}
	if updates.Description != nil {
		add("description", *updates.Description)
	}
	if updates.CategoryID != nil {
		add("category_id", *updates.CategoryID)
	}
	if updates.Status != nil {
		add("status", *updates.Status)
		// Stamp completion when a task transitions to completed; clear it
		// when it moves back.
		if *updates.Status == TaskCompleted {
			set = append(set, "completed_at = now()")
		} else {
			set = append(set, "completed_at = NULL")
		}
	}
	if updates.Priority != nil {
		add("priority", *updates.Priority)
	}
	if updates.DueDate != nil {
		add("due_date", *updates.DueDate)
	}
	if len(set) == 0 {
		return s.GetTask(ctx, userID, id)
	}
	set = append(set, "updated_at = now()")

	args = append(args, id, userID)
	query := fmt.Sprintf("UPDATE tasks SET %s WHERE id = $%d AND user_id = $%d",
		strings.Join(set, ", "), len(args)-1, len(args))

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return s.GetTask(ctx, userID, id)
}

func (s *taskService) DeleteTask(ctx context.Context, userID, id string) error {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM tasks WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *taskService) GetTaskStats(ctx context.Context, userID string) (*TaskStats, error) {
	var stats TaskStats
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'completed'),
		       COUNT(*) FILTER (WHERE status = 'pending'),
		       COUNT(*) FILTER (WHERE status = 'in_progress'),
		       COUNT(*) FILTER (WHERE priority = 'high' AND status <> 'completed')
		FROM tasks
		WHERE user_id = $1
	`, userID).Scan(
		&stats.TotalTasks, &stats.CompletedTasks, &stats.PendingTasks,
		&stats.InProgressTasks, &stats.HighPriorityTasks,
	)
	if err != nil {
		if !IsMissingTable(err) {
			return nil, fmt.Errorf("failed to aggregate task stats: %w", err)
		}
		s.reporter.Report(err, "tasks:stats")
	}

	err = s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM categories WHERE user_id = $1", userID).Scan(&stats.TotalCategories)
	if err != nil {
		if !IsMissingTable(err) {
			return nil, fmt.Errorf("failed to count categories: %w", err)
		}
		s.reporter.Report(err, "categories:stats")
	}

	return &stats, nil
}
