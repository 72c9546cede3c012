package service

import (
	"strings"
	"unicode/utf8"

	"taskLists/internal/models/list"
	"taskLists/internal/models/nullable"
	"taskLists/internal/models/task"
)

// normalizeListPatch trims the input and enforces the list field rules. The
// returned patch is what gets persisted.
func normalizeListPatch(p list.Patch, creating bool) (list.Patch, error) {
	out := p

	switch {
	case p.Name.HasValue():
		name, _ := p.Name.Get()
		name = strings.TrimSpace(name)
		if name == "" {
			return out, NewValidationError(emptyMessage(creating, MsgNameRequired, MsgNameEmpty))
		}
		if utf8.RuneCountInString(name) > list.MaxNameLength {
			return out, NewValidationError(MsgNameTooLong)
		}
		out.Name = nullable.Value(name)
	case p.Name.IsNull() || creating:
		return out, NewValidationError(emptyMessage(creating, MsgNameRequired, MsgNameEmpty))
	}

	if color, ok := p.Color.Get(); ok {
		color = strings.TrimSpace(color)
		if utf8.RuneCountInString(color) > list.MaxColorLength {
			return out, NewValidationError(MsgColorTooLong)
		}
		if color == "" {
			out.Color = nullable.Null[string]()
		} else {
			out.Color = nullable.Value(color)
		}
	}

	return out, nil
}

func normalizeTaskPatch(p task.Patch, creating bool) (task.Patch, error) {
	out := p

	switch {
	case p.Title.HasValue():
		title, _ := p.Title.Get()
		title = strings.TrimSpace(title)
		if title == "" {
			return out, NewValidationError(emptyMessage(creating, MsgTitleRequired, MsgTitleEmpty))
		}
		if utf8.RuneCountInString(title) > task.MaxTitleLength {
			return out, NewValidationError(MsgTitleTooLong)
		}
		out.Title = nullable.Value(title)
	case p.Title.IsNull() || creating:
		return out, NewValidationError(emptyMessage(creating, MsgTitleRequired, MsgTitleEmpty))
	}

	if p.Priority.IsNull() {
		return out, NewValidationError(MsgInvalidPriority)
	}
	if prio, ok := p.Priority.Get(); ok && !prio.Valid() {
		return out, NewValidationError(MsgInvalidPriority)
	}

	// 0 has always meant "no list"
	if id, ok := p.ListID.Get(); ok {
		if id < 0 {
			return out, NewValidationError(MsgInvalidListID)
		}
		if id == 0 {
			out.ListID = nullable.Null[int64]()
		}
	}

	if desc, ok := p.Description.Get(); ok {
		desc = strings.TrimSpace(desc)
		if desc == "" {
			out.Description = nullable.Null[string]()
		} else {
			out.Description = nullable.Value(desc)
		}
	}

	if p.IsCompleted.IsNull() {
		return out, NewValidationError(MsgInvalidCompletion)
	}

	return out, nil
}

func emptyMessage(creating bool, required, empty string) string {
	if creating {
		return required
	}
	return empty
}
