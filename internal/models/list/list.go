package list

import (
	"time"

	"taskLists/internal/models/nullable"
)

const (
	MaxNameLength  = 150
	MaxColorLength = 20
)

type List struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Color     *string   `json:"color" db:"color"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Patch carries the writable fields of a list. On create Name is required;
// on update absent fields are left as they are.
type Patch struct {
	Name  nullable.Field[string]
	Color nullable.Field[string]
}

func (p Patch) Empty() bool {
	return !p.Name.IsSet() && !p.Color.IsSet()
}

// Apply writes the set fields onto l. UpdatedAt is the caller's business.
func (p Patch) Apply(l *List) {
	if name, ok := p.Name.Get(); ok {
		l.Name = name
	}
	if p.Color.IsSet() {
		l.Color = p.Color.Ptr()
	}
}
