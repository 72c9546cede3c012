// Package dto holds the request bodies of the API and their conversion into
// service patches.
package dto

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"taskLists/internal/models/list"
	"taskLists/internal/models/nullable"
	"taskLists/internal/models/task"
	"taskLists/internal/service"
)

const dateLayout = "2006-01-02"

// ListRequest is the body of POST and PUT /api/lists.
type ListRequest struct {
	Name  nullable.Field[json.RawMessage] `json:"name"`
	Color nullable.Field[string]          `json:"color"`
}

func (r ListRequest) ToPatch() list.Patch {
	return list.Patch{
		Name:  stringField(r.Name),
		Color: r.Color,
	}
}

// TaskRequest is the body of POST and PUT /api/tasks. Loosely typed fields
// stay raw until ToPatch so a bad value maps to its own message.
type TaskRequest struct {
	ListID      nullable.Field[json.RawMessage] `json:"listId"`
	Title       nullable.Field[json.RawMessage] `json:"title"`
	Description nullable.Field[string]          `json:"description"`
	DueDate     nullable.Field[string]          `json:"dueDate"`
	IsCompleted nullable.Field[json.RawMessage] `json:"isCompleted"`
	Priority    nullable.Field[json.RawMessage] `json:"priority"`
}

func (r TaskRequest) ToPatch() (task.Patch, error) {
	patch := task.Patch{
		Title:       stringField(r.Title),
		Description: r.Description,
	}

	switch {
	case r.ListID.IsNull():
		patch.ListID = nullable.Null[int64]()
	case r.ListID.HasValue():
		raw, _ := r.ListID.Get()
		id, err := ParseListID(raw)
		if err != nil {
			return patch, err
		}
		patch.ListID = nullable.Value(id)
	}

	switch {
	case r.DueDate.IsNull():
		patch.DueDate = nullable.Null[time.Time]()
	case r.DueDate.HasValue():
		value, _ := r.DueDate.Get()
		due, ok, err := ParseDueDate(value)
		if err != nil {
			return patch, err
		}
		if ok {
			patch.DueDate = nullable.Value(due)
		} else {
			patch.DueDate = nullable.Null[time.Time]()
		}
	}

	switch {
	case r.IsCompleted.IsNull():
		patch.IsCompleted = nullable.Null[bool]()
	case r.IsCompleted.HasValue():
		raw, _ := r.IsCompleted.Get()
		var done bool
		if err := json.Unmarshal(raw, &done); err != nil {
			return patch, service.NewValidationError(service.MsgInvalidCompletion)
		}
		patch.IsCompleted = nullable.Value(done)
	}

	switch {
	case r.Priority.IsNull():
		patch.Priority = nullable.Null[task.Priority]()
	case r.Priority.HasValue():
		raw, _ := r.Priority.Get()
		prio, err := ParsePriority(raw)
		if err != nil {
			return patch, err
		}
		patch.Priority = nullable.Value(prio)
	}

	return patch, nil
}

// ParseListID accepts a JSON number or a string holding one. An empty string
// reads as 0, which the service treats as "no list".
func ParseListID(raw json.RawMessage) (int64, error) {
	raw = bytes.TrimSpace(raw)
	text := string(raw)
	if len(raw) > 0 && raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, service.NewValidationError(service.MsgInvalidListID)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return 0, nil
		}
	}

	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, service.NewValidationError(service.MsgInvalidListID)
	}
	return id, nil
}

// ParsePriority accepts any JSON number with an integral value, or a string
// holding one. Range checks are left to the service.
func ParsePriority(raw json.RawMessage) (task.Priority, error) {
	raw = bytes.TrimSpace(raw)
	text := string(raw)
	if len(raw) > 0 && raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, service.NewValidationError(service.MsgInvalidPriority)
		}
		text = strings.TrimSpace(text)
	}

	value, err := strconv.ParseFloat(text, 64)
	if err != nil || value != math.Trunc(value) || math.Abs(value) > math.MaxInt32 {
		return 0, service.NewValidationError(service.MsgInvalidPriority)
	}
	return task.Priority(value), nil
}

// stringField keeps a string value as is. Any other JSON type reads as null
// so the service answers with the field's own message.
func stringField(field nullable.Field[json.RawMessage]) nullable.Field[string] {
	raw, ok := field.Get()
	if !ok {
		if field.IsNull() {
			return nullable.Null[string]()
		}
		return nullable.Field[string]{}
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return nullable.Null[string]()
	}
	return nullable.Value(value)
}

// ParseDueDate reads RFC 3339 timestamps and plain dates. ok is false for an
// empty value, which clears the due date.
func ParseDueDate(value string) (due time.Time, ok bool, err error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC(), true, nil
	}
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, service.NewValidationError(service.MsgInvalidDueDate)
}

// DeletedResponse answers a bulk delete.
type DeletedResponse struct {
	Deleted int64 `json:"deleted"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error,omitempty"`
}

type IndexResponse struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}
