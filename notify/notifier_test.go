package notify

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"geostories.app/core/log"
	"geostories.app/core/models"
	"geostories.app/core/pubky"
	"github.com/stretchr/testify/assert"
)

type recordingNotifier struct {
	BaseNotifier
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) record(e string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *recordingNotifier) NewMarker(ctx context.Context, m *models.Marker) {
	n.record("new:" + m.Id)
}

func (n *recordingNotifier) DeleteMarker(ctx context.Context, m *models.Marker) {
	n.record("delete:" + m.Id)
}

func (n *recordingNotifier) FriendsLoaded(ctx context.Context, self pubky.Key, friends []models.Friend) {
	n.record("friends:" + string(self))
}

func TestMergedNotifier_Fanout(t *testing.T) {
	a, b := &recordingNotifier{}, &recordingNotifier{}
	n := NewMergedNotifier([]Notifier{a, b, &BaseNotifier{}}, log.New("test"))

	ctx := context.Background()
	m := &models.Marker{Id: "marker-1"}
	n.NewMarker(ctx, m)
	n.UpdateMarker(ctx, m)
	n.DeleteMarker(ctx, m)
	n.FriendsLoaded(ctx, "self", nil)

	want := []string{"new:marker-1", "delete:marker-1", "friends:self"}
	assert.Equal(t, want, a.events)
	assert.Equal(t, want, b.events)
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(log.New("test", log.Options{Level: "info", Output: &buf}))

	ctx := context.Background()
	n.NewMarker(ctx, &models.Marker{Id: "marker-1", Title: "Jazz Fest"})
	n.FriendsLoaded(ctx, "self", []models.Friend{{}, {}})

	out := buf.String()
	assert.Contains(t, out, "marker created")
	assert.Contains(t, out, "Jazz Fest")
	assert.Contains(t, out, "friends loaded")
	assert.Contains(t, out, "count=2")
}
