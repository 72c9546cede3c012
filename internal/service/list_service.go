package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskLists/internal/events"
	"taskLists/internal/logger"
	"taskLists/internal/models/list"
	repo "taskLists/internal/repository"

	"go.uber.org/zap"
)

type ListService struct {
	repo      ListRepository
	publisher events.Publisher
}

func NewListService(repo ListRepository, publisher events.Publisher) *ListService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &ListService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *ListService) GetAllLists(ctx context.Context) ([]*list.List, error) {
	lists, err := s.repo.GetAllLists(ctx)
	if err != nil {
		return nil, fmt.Errorf("get lists: %w", err)
	}
	return lists, nil
}

func (s *ListService) GetListByID(ctx context.Context, id int64) (*list.List, error) {
	l, err := s.repo.GetListByID(ctx, id)
	if err != nil {
		return nil, listError(err, id, "get list")
	}
	return l, nil
}

func (s *ListService) CreateList(ctx context.Context, patch list.Patch) (*list.List, error) {
	patch, err := normalizeListPatch(patch, true)
	if err != nil {
		return nil, err
	}

	l := &list.List{}
	patch.Apply(l)
	if err := s.repo.CreateList(ctx, l); err != nil {
		return nil, fmt.Errorf("create list: %w", err)
	}

	logger.Info("Service: list created", zap.Int64("list_id", l.ID))
	s.publish(ctx, events.Event{Type: events.ListCreated, Entity: events.EntityList, ID: l.ID})
	return l, nil
}

func (s *ListService) UpdateList(ctx context.Context, id int64, patch list.Patch) (*list.List, error) {
	patch, err := normalizeListPatch(patch, false)
	if err != nil {
		return nil, err
	}

	l, err := s.repo.UpdateList(ctx, id, patch)
	if err != nil {
		return nil, listError(err, id, "update list")
	}

	s.publish(ctx, events.Event{Type: events.ListUpdated, Entity: events.EntityList, ID: l.ID})
	return l, nil
}

// DeleteList removes the list. Its tasks stay and become unfiled.
func (s *ListService) DeleteList(ctx context.Context, id int64) error {
	deleted, err := s.repo.DeleteList(ctx, id)
	if err != nil {
		return fmt.Errorf("delete list %d: %w", id, err)
	}
	if !deleted {
		logger.Info("Service: list not found", zap.Int64("target_id", id))
		return NewNotFound(MsgListNotFound, repo.ErrNotFound)
	}

	logger.Info("Service: list deleted", zap.Int64("list_id", id))
	s.publish(ctx, events.Event{Type: events.ListDeleted, Entity: events.EntityList, ID: id})
	return nil
}

func (s *ListService) publish(ctx context.Context, event events.Event) {
	publish(ctx, s.publisher, event)
}

func listError(err error, id int64, op string) error {
	if errors.Is(err, repo.ErrNotFound) {
		logger.Info("Service: list not found", zap.Int64("target_id", id))
		return NewNotFound(MsgListNotFound, err)
	}
	return fmt.Errorf("%s %d: %w", op, id, err)
}

// publish never fails the caller: the write already happened.
func publish(ctx context.Context, publisher events.Publisher, event events.Event) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn("Service: event not published",
			zap.String("type", string(event.Type)),
			zap.Int64("id", event.ID),
			zap.Error(err))
	}
}
