// Package events announces changes to lists and tasks so other processes
// (sync clients, caches) can react without polling the API.
package events

import (
	"context"
	"time"
)

type Type string

const (
	ListCreated   Type = "list.created"
	ListUpdated   Type = "list.updated"
	ListDeleted   Type = "list.deleted"
	TaskCreated   Type = "task.created"
	TaskUpdated   Type = "task.updated"
	TaskCompleted Type = "task.completed"
	TaskReopened  Type = "task.reopened"
	TaskDeleted   Type = "task.deleted"
	TaskOverdue   Type = "task.overdue"
	TasksPurged   Type = "tasks.purged"
)

const (
	EntityList = "list"
	EntityTask = "task"
)

type Event struct {
	Type   Type      `json:"type"`
	Entity string    `json:"entity"`
	ID     int64     `json:"id"`
	ListID *int64    `json:"listId,omitempty"`
	Count  int64     `json:"count,omitempty"`
	At     time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
