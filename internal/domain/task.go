// Package domain holds the Task entity and its value types. All
// invariants are enforced at construction and mutation; no function in
// this package returns a partially built instance.
package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/corvid-labs/taskline-backend/internal/pkg/apperrors"
)

const maxTitleLength = 200

// Title is an identity-less value. Equality is by content.
type Title struct {
	value string
}

// ParseTitle validates and normalizes a raw title. A Title that exists
// is always valid.
func ParseTitle(raw string) (Title, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Title{}, apperrors.NewDomainValidation("title", "title must not be empty")
	}
	if utf8.RuneCountInString(trimmed) > maxTitleLength {
		return Title{}, apperrors.NewDomainValidation("title", "title must be at most 200 characters")
	}
	return Title{value: trimmed}, nil
}

func (t Title) String() string { return t.value }

// Status is the lifecycle state of a Task.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusArchived   Status = "archived"
)

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusOpen, StatusInProgress, StatusDone, StatusArchived:
		return Status(raw), nil
	default:
		return "", apperrors.NewDomainValidation("status", "status must be one of open, in_progress, done, archived")
	}
}

// canTransition encodes the task lifecycle: forward along
// open → in_progress → done, and from anywhere into archived.
func canTransition(from, to Status) bool {
	if from == StatusArchived {
		return false
	}
	if to == StatusArchived {
		return true
	}
	switch from {
	case StatusOpen:
		return to == StatusInProgress
	case StatusInProgress:
		return to == StatusDone
	default:
		return false
	}
}

// Task is the identity-bearing aggregate root. Fields are unexported;
// state changes only through methods that re-validate invariants.
type Task struct {
	id        uuid.UUID
	ownerID   uuid.UUID
	title     Title
	status    Status
	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewTask builds a fresh Task. The identifier is generated by the
// caller (the service layer), never here and never by storage.
func NewTask(id, ownerID uuid.UUID, title Title, now time.Time) (*Task, error) {
	if id == uuid.Nil {
		return nil, apperrors.NewDomainValidation("id", "id must not be empty")
	}
	if ownerID == uuid.Nil {
		return nil, apperrors.NewDomainValidation("owner_id", "owner id must not be empty")
	}
	return &Task{
		id:        id,
		ownerID:   ownerID,
		title:     title,
		status:    StatusOpen,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// RehydrateTask rebuilds a Task from stored state. The load path runs
// the same invariant checks as construction so that corrupt rows cannot
// become live entities.
func RehydrateTask(id, ownerID uuid.UUID, rawTitle, rawStatus string, version int64, createdAt, updatedAt time.Time) (*Task, error) {
	if id == uuid.Nil {
		return nil, apperrors.NewDomainValidation("id", "id must not be empty")
	}
	if ownerID == uuid.Nil {
		return nil, apperrors.NewDomainValidation("owner_id", "owner id must not be empty")
	}
	title, err := ParseTitle(rawTitle)
	if err != nil {
		return nil, err
	}
	status, err := ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	if version < 1 {
		return nil, apperrors.NewAggregateConsistency("task version must be positive")
	}
	return &Task{
		id:        id,
		ownerID:   ownerID,
		title:     title,
		status:    status,
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}, nil
}

func (t *Task) ID() uuid.UUID        { return t.id }
func (t *Task) OwnerID() uuid.UUID   { return t.ownerID }
func (t *Task) Title() Title         { return t.title }
func (t *Task) Status() Status       { return t.status }
func (t *Task) Version() int64       { return t.version }
func (t *Task) CreatedAt() time.Time { return t.createdAt }
func (t *Task) UpdatedAt() time.Time { return t.updatedAt }

// IsOwnedBy reports whether the task belongs to the given user.
func (t *Task) IsOwnedBy(userID uuid.UUID) bool { return t.ownerID == userID }

// Rename replaces the title. No mutation happens on failure.
func (t *Task) Rename(title Title, now time.Time) error {
	if t.status == StatusArchived {
		return apperrors.NewBusinessRule("archived_immutable", "archived tasks cannot be modified")
	}
	t.title = title
	t.updatedAt = now
	return nil
}

// TransitionTo moves the task along its lifecycle. Illegal transitions
// leave the task untouched.
func (t *Task) TransitionTo(next Status, now time.Time) error {
	if t.status == StatusArchived {
		return apperrors.NewBusinessRule("archived_immutable", "archived tasks cannot be modified")
	}
	if next == t.status {
		return nil
	}
	if !canTransition(t.status, next) {
		return apperrors.NewBusinessRule("status_transition",
			"cannot transition task from "+string(t.status)+" to "+string(next))
	}
	t.status = next
	t.updatedAt = now
	return nil
}

// bumpVersion is called by the repository after a successful
// conditional write so the in-memory entity tracks the stored row.
func (t *Task) bumpVersion() { t.version++ }

// Bumped returns a copy with the version advanced by one. Used by the
// service after a successful optimistic update.
func (t *Task) Bumped() *Task {
	cp := *t
	cp.bumpVersion()
	return &cp
}
