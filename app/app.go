// Package app is the coordinator behind every user interaction: it owns
// the selected location, the marker being edited, the active tab and the
// friend list, and routes commands to the registry and friend discovery.
package app

import (
	"context"
	"log/slog"
	"sync"

	"geostories.app/core/friends"
	"geostories.app/core/log"
	"geostories.app/core/mapview"
	"geostories.app/core/models"
	"geostories.app/core/notify"
	"geostories.app/core/pubky"
	"geostories.app/core/registry"
	"geostories.app/core/session"
)

type Tab string

const (
	TabAdd  Tab = "add"
	TabView Tab = "view"
)

// State is a snapshot of the coordinator.
type State struct {
	Identity      pubky.Key        `json:"identity,omitempty"`
	Connected     bool             `json:"connected"`
	Tab           Tab              `json:"tab"`
	Location      *models.Location `json:"location,omitempty"`
	LocationLabel string           `json:"locationLabel,omitempty"`
	EditingID     string           `json:"editingId,omitempty"`
	Viewing       pubky.Key        `json:"viewing,omitempty"`
	Markers       int              `json:"markers"`
	Friends       []models.Friend  `json:"friends"`
}

type App struct {
	logger    *slog.Logger
	session   *session.Session
	registry  *registry.Registry
	discovery *friends.Discovery
	colors    *friends.ColorAssigner
	canvas    *mapview.Canvas
	notifier  notify.Notifier
	handlers  map[string]handlerFunc

	// guards everything below and serialises commands
	mu       sync.Mutex
	location *models.Location
	label    string
	editing  string
	tab      Tab
	friends  []models.Friend
	viewing  pubky.Key
}

type Opt func(*options)

type options struct {
	notifier notify.Notifier
	profiles friends.ProfileCache
	workers  int
}

func WithNotifier(n notify.Notifier) Opt {
	return func(o *options) {
		o.notifier = n
	}
}

func WithProfileCache(c friends.ProfileCache) Opt {
	return func(o *options) {
		o.profiles = c
	}
}

func WithWorkers(n int) Opt {
	return func(o *options) {
		o.workers = n
	}
}

// New builds the coordinator for sess. A nil session is allowed; every
// command that touches the store then fails with registry.ErrNoSession.
func New(logger *slog.Logger, sess *session.Session, opts ...Opt) *App {
	o := options{
		notifier: &notify.BaseNotifier{},
		workers:  registry.DefaultWorkers,
	}
	for _, opt := range opts {
		opt(&o)
	}

	canvas := mapview.NewCanvas()
	colors := friends.NewColorAssigner()

	a := &App{
		logger:  logger,
		session: sess,
		registry: registry.New(log.SubLogger(logger, "registry"), sess,
			registry.WithSurface(canvas),
			registry.WithNotifier(o.notifier),
			registry.WithWorkers(o.workers),
		),
		colors:   colors,
		canvas:   canvas,
		notifier: o.notifier,
		tab:      TabAdd,
	}
	if sess != nil {
		dopts := []friends.Opt{friends.WithWorkers(o.workers)}
		if o.profiles != nil {
			dopts = append(dopts, friends.WithProfileCache(o.profiles))
		}
		a.discovery = friends.NewDiscovery(log.SubLogger(logger, "friends"), sess.Storage, colors, dopts...)
	}
	a.handlers = a.commandTable()

	return a
}

func (a *App) Session() *session.Session {
	return a.session
}

func (a *App) Canvas() *mapview.Canvas {
	return a.canvas
}

func (a *App) identity() pubky.Key {
	if a.session == nil {
		return ""
	}
	return a.session.Identity
}

func (a *App) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := State{
		Identity:      a.identity(),
		Connected:     a.session != nil,
		Tab:           a.tab,
		LocationLabel: a.label,
		EditingID:     a.editing,
		Viewing:       a.viewing,
		Markers:       a.registry.Len(),
		Friends:       append([]models.Friend{}, a.friends...),
	}
	if a.location != nil {
		loc := *a.location
		s.Location = &loc
	}
	return s
}

// Friends returns the friend list from the last load-friends command.
func (a *App) Friends() []models.Friend {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]models.Friend{}, a.friends...)
}

func (a *App) Markers() []*models.Marker {
	return a.registry.List()
}

func (a *App) Marker(id string) (*models.Marker, error) {
	return a.registry.Get(id)
}

// GeoJSON exports everything on the map.
func (a *App) GeoJSON() ([]byte, error) {
	return a.canvas.GeoJSON()
}

func (a *App) Bounds(author pubky.Key) (mapview.Bounds, bool) {
	return a.canvas.Bounds(author)
}

// Connect loads the session identity's own markers, as a fresh page load
// does.
func (a *App) Connect(ctx context.Context) error {
	_, err := a.Dispatch(ctx, Command{Name: CmdLoadMarkers})
	return err
}
