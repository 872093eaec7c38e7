package core_test

import (
	"errors"
	"fmt"
	"testing"

	"cakeflow-backend/internal/core"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIssueReporter_DeduplicatesByContextAndCode(t *testing.T) {
	var lines []string
	r := core.NewIssueReporterWithLogger(func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	})

	err := &pgconn.PgError{Code: "23505", Message: "duplicate key"}
	r.Report(err, "orders:create")
	r.Report(err, "orders:create")
	r.Report(err, "orders:create")

	if len(lines) != 1 {
		t.Fatalf("expected 1 logged line after 3 identical reports, got %d: %v", len(lines), lines)
	}

	// Same error under a different context is a distinct key.
	r.Report(err, "production:log")
	if len(lines) != 2 {
		t.Fatalf("expected a second line for a new context, got %d", len(lines))
	}

	// Different code under an already-seen context is a distinct key too.
	r.Report(&pgconn.PgError{Code: "40001", Message: "serialization"}, "orders:create")
	if len(lines) != 3 {
		t.Fatalf("expected a third line for a new error code, got %d", len(lines))
	}
}

func TestIssueReporter_PlainErrorsKeyedByMessage(t *testing.T) {
	var lines []string
	r := core.NewIssueReporterWithLogger(func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	})

	r.Report(errors.New("connection refused"), "reports:orders")
	r.Report(errors.New("connection refused"), "reports:orders")
	r.Report(errors.New("timeout"), "reports:orders")

	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %v", len(lines), lines)
	}
}

func TestIssueReporter_MissingTableLoggedAsWarning(t *testing.T) {
	var lines []string
	r := core.NewIssueReporterWithLogger(func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	})

	missing := &pgconn.PgError{Code: "42P01", Message: `relation "orders" does not exist`}
	r.Report(missing, "orders:list")

	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if want := "warning: missing table"; len(lines[0]) < len(want) || lines[0][:len(want)] != want {
		t.Errorf("expected warning prefix, got %q", lines[0])
	}

	if !core.IsMissingTable(missing) {
		t.Error("IsMissingTable should be true for 42P01")
	}
	if core.IsMissingTable(errors.New("other")) {
		t.Error("IsMissingTable should be false for non-pg errors")
	}
}

func TestIssueReporter_NilErrorIgnored(t *testing.T) {
	var lines []string
	r := core.NewIssueReporterWithLogger(func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	})
	r.Report(nil, "anything")
	if len(lines) != 0 {
		t.Fatalf("nil error must not log, got %v", lines)
	}
}
