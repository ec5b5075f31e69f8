package service

import (
	"context"

	"github.com/dutchhouse/auction/pkg/database"
	"github.com/dutchhouse/auction/pkg/model"
)

type Events interface {
	ListPage(ctx context.Context, pageNum, pageSize int) ([]model.Event, int, error)
}

type EventsGeneric struct {
	EventRepository database.EventRepository
}

func (eg *EventsGeneric) ListPage(ctx context.Context, pageNum, pageSize int) ([]model.Event, int, error) {
	return eg.EventRepository.GetPage(ctx, pageNum, pageSize)
}
