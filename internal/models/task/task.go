package task

import (
	"time"

	"taskLists/internal/models/nullable"
)

type Task struct {
	ID          int64      `json:"id" db:"id"`
	ListID      *int64     `json:"listId" db:"list_id"`
	Title       string     `json:"title" db:"title"`
	Description *string    `json:"description" db:"description"`
	DueDate     *time.Time `json:"dueDate" db:"due_date"`
	IsCompleted bool       `json:"isCompleted" db:"is_completed"`
	Priority    Priority   `json:"priority" db:"priority"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

type Priority int

const (
	PriorityHigh   Priority = 1
	PriorityMedium Priority = 2
	PriorityLow    Priority = 3
)

const DefaultPriority = PriorityMedium

const MaxTitleLength = 300

func (p Priority) Valid() bool {
	return p >= PriorityHigh && p <= PriorityLow
}

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return "unknown"
	}
}

// Patch carries the writable fields of a task. Title is required on create;
// on update absent fields are left as they are.
type Patch struct {
	ListID      nullable.Field[int64]
	Title       nullable.Field[string]
	Description nullable.Field[string]
	DueDate     nullable.Field[time.Time]
	IsCompleted nullable.Field[bool]
	Priority    nullable.Field[Priority]
}

func (p Patch) Empty() bool {
	return !p.ListID.IsSet() && !p.Title.IsSet() && !p.Description.IsSet() &&
		!p.DueDate.IsSet() && !p.IsCompleted.IsSet() && !p.Priority.IsSet()
}

// Apply writes the set fields onto t. UpdatedAt is the caller's business.
func (p Patch) Apply(t *Task) {
	if p.ListID.IsSet() {
		t.ListID = p.ListID.Ptr()
	}
	if title, ok := p.Title.Get(); ok {
		t.Title = title
	}
	if p.Description.IsSet() {
		t.Description = p.Description.Ptr()
	}
	if p.DueDate.IsSet() {
		t.DueDate = p.DueDate.Ptr()
	}
	if done, ok := p.IsCompleted.Get(); ok {
		t.IsCompleted = done
	}
	if prio, ok := p.Priority.Get(); ok {
		t.Priority = prio
	}
}

// Filter narrows a task listing. The zero value matches every task.
type Filter struct {
	ListID      *int64
	WithoutList bool
	Completed   *bool
}

func ByList(listID int64) Filter {
	return Filter{ListID: &listID}
}

func WithoutList() Filter {
	return Filter{WithoutList: true}
}

func ByCompletion(completed bool) Filter {
	return Filter{Completed: &completed}
}

func (f Filter) Match(t *Task) bool {
	if f.ListID != nil && (t.ListID == nil || *t.ListID != *f.ListID) {
		return false
	}
	if f.WithoutList && t.ListID != nil {
		return false
	}
	if f.Completed != nil && t.IsCompleted != *f.Completed {
		return false
	}
	return true
}
