package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/corvid-labs/taskline-backend/internal/pkg/apperrors"
)

func mustTitle(t *testing.T, raw string) Title {
	t.Helper()
	title, err := ParseTitle(raw)
	if err != nil {
		t.Fatalf("ParseTitle(%q): %v", raw, err)
	}
	return title
}

func newTestTask(t *testing.T) *Task {
	t.Helper()
	task, err := NewTask(uuid.New(), uuid.New(), mustTitle(t, "write report"), time.Now())
	if err != nil {
		t.Fatalf("NewTask: %v", err)
	}
	return task
}

func TestParseTitle(t *testing.T) {
	cases := []struct {
		name      string
		raw       string
		wantErr   bool
		wantField string
		want      string
	}{
		{name: "valid", raw: "write report", want: "write report"},
		{name: "trims_whitespace", raw: "  write report  ", want: "write report"},
		{name: "empty", raw: "", wantErr: true, wantField: "title"},
		{name: "whitespace_only", raw: "   ", wantErr: true, wantField: "title"},
		{name: "too_long", raw: strings.Repeat("x", 201), wantErr: true, wantField: "title"},
		{name: "max_length", raw: strings.Repeat("x", 200), want: strings.Repeat("x", 200)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			title, err := ParseTitle(tc.raw)
			if tc.wantErr {
				e, ok := apperrors.AsError(err)
				if !ok || e.Kind != apperrors.KindDomainValidation {
					t.Fatalf("ParseTitle(%q) err=%v, want domain validation", tc.raw, err)
				}
				if e.Field != tc.wantField {
					t.Fatalf("Field=%q, want %q", e.Field, tc.wantField)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTitle(%q): %v", tc.raw, err)
			}
			if title.String() != tc.want {
				t.Fatalf("Title=%q, want %q", title.String(), tc.want)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"open", "in_progress", "done", "archived"} {
		if _, err := ParseStatus(valid); err != nil {
			t.Fatalf("ParseStatus(%q): %v", valid, err)
		}
	}
	if _, err := ParseStatus("paused"); !apperrors.IsKind(err, apperrors.KindDomainValidation) {
		t.Fatalf("ParseStatus(paused) err=%v, want domain validation", err)
	}
}

func TestNewTaskRejectsEmptyIdentifiers(t *testing.T) {
	title := mustTitle(t, "write report")

	task, err := NewTask(uuid.Nil, uuid.New(), title, time.Now())
	if task != nil {
		t.Fatal("no task instance may escape a failed construction")
	}
	e, ok := apperrors.AsError(err)
	if !ok || e.Kind != apperrors.KindDomainValidation || e.Field != "id" {
		t.Fatalf("err=%v, want domain validation on field id", err)
	}

	task, err = NewTask(uuid.New(), uuid.Nil, title, time.Now())
	if task != nil {
		t.Fatal("no task instance may escape a failed construction")
	}
	e, ok = apperrors.AsError(err)
	if !ok || e.Field != "owner_id" {
		t.Fatalf("err=%v, want domain validation on field owner_id", err)
	}
}

func TestNewTaskDefaults(t *testing.T) {
	task := newTestTask(t)
	if task.Status() != StatusOpen {
		t.Fatalf("Status=%q, want open", task.Status())
	}
	if task.Version() != 1 {
		t.Fatalf("Version=%d, want 1", task.Version())
	}
}

func TestRehydrateValidatesStoredState(t *testing.T) {
	now := time.Now()
	if _, err := RehydrateTask(uuid.New(), uuid.New(), "write report", "done", 3, now, now); err != nil {
		t.Fatalf("valid rehydrate: %v", err)
	}
	if _, err := RehydrateTask(uuid.New(), uuid.New(), "", "done", 3, now, now); !apperrors.IsKind(err, apperrors.KindDomainValidation) {
		t.Fatalf("empty title err=%v", err)
	}
	if _, err := RehydrateTask(uuid.New(), uuid.New(), "write report", "bogus", 3, now, now); !apperrors.IsKind(err, apperrors.KindDomainValidation) {
		t.Fatalf("bad status err=%v", err)
	}
	if _, err := RehydrateTask(uuid.New(), uuid.New(), "write report", "done", 0, now, now); !apperrors.IsKind(err, apperrors.KindAggregateConsistency) {
		t.Fatalf("zero version err=%v", err)
	}
}

func TestTransitions(t *testing.T) {
	cases := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{name: "open_to_in_progress", from: StatusOpen, to: StatusInProgress, allowed: true},
		{name: "in_progress_to_done", from: StatusInProgress, to: StatusDone, allowed: true},
		{name: "open_to_done_skips", from: StatusOpen, to: StatusDone, allowed: false},
		{name: "done_to_open_backwards", from: StatusDone, to: StatusOpen, allowed: false},
		{name: "open_to_archived", from: StatusOpen, to: StatusArchived, allowed: true},
		{name: "done_to_archived", from: StatusDone, to: StatusArchived, allowed: true},
		{name: "archived_to_open", from: StatusArchived, to: StatusOpen, allowed: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			now := time.Now()
			task, err := RehydrateTask(uuid.New(), uuid.New(), "write report", string(tc.from), 1, now, now)
			if err != nil {
				t.Fatalf("rehydrate: %v", err)
			}
			err = task.TransitionTo(tc.to, now)
			if tc.allowed {
				if err != nil {
					t.Fatalf("TransitionTo(%s): %v", tc.to, err)
				}
				if task.Status() != tc.to {
					t.Fatalf("Status=%q, want %q", task.Status(), tc.to)
				}
				return
			}
			if !apperrors.IsKind(err, apperrors.KindBusinessRule) {
				t.Fatalf("TransitionTo(%s) err=%v, want business rule violation", tc.to, err)
			}
			if task.Status() != tc.from {
				t.Fatalf("failed transition mutated status to %q", task.Status())
			}
		})
	}
}

func TestRenameArchivedRejected(t *testing.T) {
	now := time.Now()
	task, err := RehydrateTask(uuid.New(), uuid.New(), "write report", "archived", 2, now, now)
	if err != nil {
		t.Fatalf("rehydrate: %v", err)
	}
	err = task.Rename(mustTitle(t, "new title"), now)
	e, ok := apperrors.AsError(err)
	if !ok || e.Rule != "archived_immutable" {
		t.Fatalf("err=%v, want archived_immutable rule violation", err)
	}
	if task.Title().String() != "write report" {
		t.Fatal("failed rename mutated the title")
	}
}

func TestBumpedCopies(t *testing.T) {
	task := newTestTask(t)
	bumped := task.Bumped()
	if bumped.Version() != task.Version()+1 {
		t.Fatalf("Bumped version=%d, want %d", bumped.Version(), task.Version()+1)
	}
	if task.Version() != 1 {
		t.Fatal("Bumped mutated the receiver")
	}
}
