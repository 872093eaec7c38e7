package core

import (
	"errors"
	"log"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
)

// pgUndefinedTable is the Postgres error code raised when a query touches a
// table that has not been migrated yet. Those failures are reported as
// warnings and surfaced to callers as empty results, not errors.
const pgUndefinedTable = "42P01"

// IssueReporter deduplicates diagnostic logging for secondary failures.
// Each distinct (context, error code/message) pair is logged once; repeats
// are dropped. It is an injected collaborator, never process-global state,
// and deduplication is purely a log-noise measure, not a correctness one.
type IssueReporter struct {
	mu       sync.Mutex
	reported map[string]struct{}
	logf     func(format string, args ...any)
}

// NewIssueReporter returns a reporter writing through the standard logger.
func NewIssueReporter() *IssueReporter {
	return &IssueReporter{
		reported: make(map[string]struct{}),
		logf:     log.Printf,
	}
}

// NewIssueReporterWithLogger returns a reporter with a custom log function.
// Used by tests to capture output.
func NewIssueReporterWithLogger(logf func(format string, args ...any)) *IssueReporter {
	return &IssueReporter{
		reported: make(map[string]struct{}),
		logf:     logf,
	}
}

// Report logs err once per (context, code-or-message) pair. Missing-table
// errors are logged as migration warnings, everything else as errors.
// A nil err is ignored.
func (r *IssueReporter) Report(err error, context string) {
	if err == nil || r == nil {
		return
	}

	code := ""
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		code = pgErr.Code
	}

	key := context + ":" + code
	if code == "" {
		key = context + ":" + err.Error()
	}

	r.mu.Lock()
	if _, seen := r.reported[key]; seen {
		r.mu.Unlock()
		return
	}
	r.reported[key] = struct{}{}
	r.mu.Unlock()

	if code == pgUndefinedTable {
		r.logf("warning: missing table while querying %s (apply cakeflow migrations): %v", context, err)
		return
	}
	r.logf("error in %s: %v", context, err)
}

// IsMissingTable reports whether err is the undefined_table failure that
// list operations translate into an empty result.
func IsMissingTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable
}
