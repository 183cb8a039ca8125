package notify

import (
	"context"
	"log/slog"

	"geostories.app/core/models"
	"geostories.app/core/pubky"
)

// logNotifier writes one line per event.
type logNotifier struct {
	BaseNotifier
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) Notifier {
	return &logNotifier{logger: logger}
}

var _ Notifier = &logNotifier{}

func (n *logNotifier) NewMarker(ctx context.Context, marker *models.Marker) {
	n.logger.Info("marker created", "id", marker.Id, "author", marker.Author, "title", marker.Title)
}

func (n *logNotifier) UpdateMarker(ctx context.Context, marker *models.Marker) {
	n.logger.Info("marker updated", "id", marker.Id, "author", marker.Author, "photos", len(marker.Photos))
}

func (n *logNotifier) DeleteMarker(ctx context.Context, marker *models.Marker) {
	n.logger.Info("marker deleted", "id", marker.Id, "author", marker.Author)
}

func (n *logNotifier) FriendsLoaded(ctx context.Context, self pubky.Key, friends []models.Friend) {
	n.logger.Info("friends loaded", "self", self, "count", len(friends))
}
