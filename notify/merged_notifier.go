package notify

import (
	"context"
	"log/slog"
	"reflect"
	"sync"

	"geostories.app/core/log"
	"geostories.app/core/models"
	"geostories.app/core/pubky"
)

type mergedNotifier struct {
	notifiers []Notifier
	logger    *slog.Logger
}

func NewMergedNotifier(notifiers []Notifier, logger *slog.Logger) Notifier {
	return &mergedNotifier{notifiers, logger}
}

var _ Notifier = &mergedNotifier{}

// fanout calls the same method on all notifiers concurrently
func (m *mergedNotifier) fanout(method string, ctx context.Context, args ...any) {
	ctx = log.IntoContext(ctx, m.logger.With("method", method))
	var wg sync.WaitGroup
	for _, n := range m.notifiers {
		wg.Add(1)
		go func(notifier Notifier) {
			defer wg.Done()
			v := reflect.ValueOf(notifier).MethodByName(method)
			in := make([]reflect.Value, len(args)+1)
			in[0] = reflect.ValueOf(ctx)
			for i, arg := range args {
				in[i+1] = reflect.ValueOf(arg)
			}
			v.Call(in)
		}(n)
	}
	wg.Wait()
}

func (m *mergedNotifier) NewMarker(ctx context.Context, marker *models.Marker) {
	m.fanout("NewMarker", ctx, marker)
}

func (m *mergedNotifier) UpdateMarker(ctx context.Context, marker *models.Marker) {
	m.fanout("UpdateMarker", ctx, marker)
}

func (m *mergedNotifier) DeleteMarker(ctx context.Context, marker *models.Marker) {
	m.fanout("DeleteMarker", ctx, marker)
}

func (m *mergedNotifier) FriendsLoaded(ctx context.Context, self pubky.Key, friends []models.Friend) {
	m.fanout("FriendsLoaded", ctx, self, friends)
}
