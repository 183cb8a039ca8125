package notify

import (
	"context"

	"geostories.app/core/models"
	"geostories.app/core/pubky"
)

type Notifier interface {
	NewMarker(ctx context.Context, marker *models.Marker)
	UpdateMarker(ctx context.Context, marker *models.Marker)
	DeleteMarker(ctx context.Context, marker *models.Marker)

	FriendsLoaded(ctx context.Context, self pubky.Key, friends []models.Friend)
}

// BaseNotifier is a listener that does nothing
type BaseNotifier struct{}

var _ Notifier = &BaseNotifier{}

func (m *BaseNotifier) NewMarker(ctx context.Context, marker *models.Marker)    {}
func (m *BaseNotifier) UpdateMarker(ctx context.Context, marker *models.Marker) {}
func (m *BaseNotifier) DeleteMarker(ctx context.Context, marker *models.Marker) {}

func (m *BaseNotifier) FriendsLoaded(ctx context.Context, self pubky.Key, friends []models.Friend) {}
