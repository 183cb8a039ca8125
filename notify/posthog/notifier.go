package posthog

import (
	"context"

	"geostories.app/core/log"
	"geostories.app/core/models"
	"geostories.app/core/pubky"
	"geostories.app/core/notify"
	"github.com/posthog/posthog-go"
)

type posthogNotifier struct {
	client posthog.Client
	notify.BaseNotifier
}

func NewPosthogNotifier(client posthog.Client) notify.Notifier {
	return &posthogNotifier{
		client,
		notify.BaseNotifier{},
	}
}

var _ notify.Notifier = &posthogNotifier{}

func (n *posthogNotifier) enqueue(ctx context.Context, c posthog.Capture) {
	if err := n.client.Enqueue(c); err != nil {
		log.FromContext(ctx).Warn("failed to enqueue posthog event", "event", c.Event, "err", err)
	}
}

func (n *posthogNotifier) NewMarker(ctx context.Context, marker *models.Marker) {
	n.enqueue(ctx, posthog.Capture{
		DistinctId: marker.Author.String(),
		Event:      "new_marker",
		Properties: posthog.Properties{
			"marker_id": marker.Id,
			"photos":    len(marker.Photos),
		},
	})
}

func (n *posthogNotifier) UpdateMarker(ctx context.Context, marker *models.Marker) {
	n.enqueue(ctx, posthog.Capture{
		DistinctId: marker.Author.String(),
		Event:      "update_marker",
		Properties: posthog.Properties{
			"marker_id": marker.Id,
			"photos":    len(marker.Photos),
		},
	})
}

func (n *posthogNotifier) DeleteMarker(ctx context.Context, marker *models.Marker) {
	n.enqueue(ctx, posthog.Capture{
		DistinctId: marker.Author.String(),
		Event:      "delete_marker",
		Properties: posthog.Properties{"marker_id": marker.Id},
	})
}

func (n *posthogNotifier) FriendsLoaded(ctx context.Context, self pubky.Key, friends []models.Friend) {
	markers := 0
	for _, f := range friends {
		markers += f.MarkerCount
	}
	n.enqueue(ctx, posthog.Capture{
		DistinctId: self.String(),
		Event:      "friends_loaded",
		Properties: posthog.Properties{
			"friends": len(friends),
			"markers": markers,
		},
	})
}
