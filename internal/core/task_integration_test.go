package core_test

import (
	"context"
	"testing"

	"cakeflow-backend/internal/core"
)

func TestProfileService_Upsert(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	profiles := core.NewProfileService(pool, core.NewIssueReporter())
	ctx := context.Background()

	identity := core.Identity{
		ID:        "11111111-1111-1111-1111-111111111111",
		Email:     "siti@toko.id",
		FirstName: "Siti",
		LastName:  "Rahma",
		Role:      "owner", // unknown role falls back to kasir
	}

	profile, err := profiles.UpsertProfile(ctx, identity)
	if err != nil {
		t.Fatalf("UpsertProfile failed: %v", err)
	}
	if profile.FullName != "Siti Rahma" {
		t.Errorf("full name = %q, want %q", profile.FullName, "Siti Rahma")
	}
	if profile.Role != core.RoleKasir {
		t.Errorf("role = %s, want kasir", profile.Role)
	}

	// A second login refreshes the email without duplicating the row.
	identity.Email = "siti.rahma@toko.id"
	profile, err = profiles.UpsertProfile(ctx, identity)
	if err != nil {
		t.Fatalf("second UpsertProfile failed: %v", err)
	}
	if profile.Email == nil || *profile.Email != "siti.rahma@toko.id" {
		t.Errorf("email = %v, want refreshed address", profile.Email)
	}

	loaded, err := profiles.GetProfile(ctx, identity.ID)
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if loaded.ID != identity.ID {
		t.Errorf("loaded profile id = %s", loaded.ID)
	}
}

func TestTaskService_Lifecycle(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	reporter := core.NewIssueReporter()
	profiles := core.NewProfileService(pool, reporter)
	tasks := core.NewTaskService(pool, reporter)
	ctx := context.Background()

	userID := "11111111-1111-1111-1111-111111111111"
	if _, err := profiles.UpsertProfile(ctx, core.Identity{ID: userID, Email: "siti@toko.id"}); err != nil {
		t.Fatalf("UpsertProfile failed: %v", err)
	}

	category, err := tasks.CreateCategory(ctx, userID, core.CreateCategoryInput{Name: "Produksi"})
	if err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}
	if category.Color != "#3B82F6" {
		t.Errorf("default color = %s, want #3B82F6", category.Color)
	}

	high := core.PriorityHigh
	task, err := tasks.CreateTask(ctx, userID, core.CreateTaskInput{
		Title:      "Panggang brownies untuk pesanan besok",
		CategoryID: &category.ID,
		Priority:   &high,
	})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if task.Status != core.TaskPending {
		t.Errorf("new task status = %s, want pending", task.Status)
	}
	if task.Category == nil || task.Category.Name != "Produksi" {
		t.Errorf("task should carry its category")
	}

	completed := core.TaskCompleted
	task, err = tasks.UpdateTask(ctx, userID, task.ID, core.UpdateTaskInput{Status: &completed})
	if err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	if task.CompletedAt == nil {
		t.Errorf("completed task should carry a completion timestamp")
	}

	pending := core.TaskPending
	task, err = tasks.UpdateTask(ctx, userID, task.ID, core.UpdateTaskInput{Status: &pending})
	if err != nil {
		t.Fatalf("UpdateTask (reopen) failed: %v", err)
	}
	if task.CompletedAt != nil {
		t.Errorf("reopened task should have its completion timestamp cleared")
	}

	filtered, err := tasks.GetTasks(ctx, userID, core.TaskFilter{Status: core.TaskPending})
	if err != nil {
		t.Fatalf("GetTasks failed: %v", err)
	}
	if len(filtered) != 1 {
		t.Errorf("pending tasks = %d, want 1", len(filtered))
	}

	stats, err := tasks.GetTaskStats(ctx, userID)
	if err != nil {
		t.Fatalf("GetTaskStats failed: %v", err)
	}
	if stats.TotalTasks != 1 || stats.PendingTasks != 1 || stats.HighPriorityTasks != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.TotalCategories != 1 {
		t.Errorf("total categories = %d, want 1", stats.TotalCategories)
	}

	// Other users see nothing.
	otherID := "22222222-2222-2222-2222-222222222222"
	if _, err := profiles.UpsertProfile(ctx, core.Identity{ID: otherID}); err != nil {
		t.Fatalf("UpsertProfile failed: %v", err)
	}
	foreign, err := tasks.GetTasks(ctx, otherID, core.TaskFilter{})
	if err != nil {
		t.Fatalf("GetTasks failed: %v", err)
	}
	if len(foreign) != 0 {
		t.Errorf("tasks leaked across users: %d", len(foreign))
	}

	if err := tasks.DeleteTask(ctx, userID, task.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	if err := tasks.DeleteCategory(ctx, userID, category.ID); err != nil {
		t.Fatalf("DeleteCategory failed: %v", err)
	}
}
