package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"geostories.app/core/mapview"
	"geostories.app/core/models"
	"geostories.app/core/notify"
	"geostories.app/core/pubky"
	"geostories.app/core/session"
	"geostories.app/core/store"
	"geostories.app/core/tid"
	"geostories.app/core/validator"
	"golang.org/x/sync/errgroup"
)

const DefaultWorkers = 8

var (
	ErrNoSession        = errors.New("no active session")
	ErrNoLocation       = errors.New("no location selected")
	ErrNotFound         = errors.New("marker not found")
	ErrPermissionDenied = errors.New("marker belongs to another identity")
	ErrValidation       = validator.ErrValidation
	ErrRemote           = errors.New("remote store failed")
)

// Registry holds the markers currently on the map, keyed by id, and keeps
// them in step with the remote store and the map surface.
type Registry struct {
	logger    *slog.Logger
	validator *validator.Validator
	notifier  notify.Notifier
	surface   mapview.Surface
	workers   int
	now       func() time.Time

	mu      sync.RWMutex
	session *session.Session
	markers map[string]*models.Marker
	pins    map[string]mapview.Pin
}

type Opt func(*Registry)

func WithNotifier(n notify.Notifier) Opt {
	return func(r *Registry) {
		r.notifier = n
	}
}

func WithSurface(s mapview.Surface) Opt {
	return func(r *Registry) {
		r.surface = s
	}
}

func WithWorkers(n int) Opt {
	return func(r *Registry) {
		if n > 0 {
			r.workers = n
		}
	}
}

func WithClock(now func() time.Time) Opt {
	return func(r *Registry) {
		r.now = now
	}
}

// New creates a registry for sess, which may be nil until a session is
// established.
func New(logger *slog.Logger, sess *session.Session, opts ...Opt) *Registry {
	r := &Registry{
		logger:    logger,
		validator: validator.New(),
		notifier:  &notify.BaseNotifier{},
		surface:   mapview.NewCanvas(),
		workers:   DefaultWorkers,
		now:       time.Now,
		session:   sess,
		markers:   make(map[string]*models.Marker),
		pins:      make(map[string]mapview.Pin),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func remote(op string, err error) error {
	if errors.Is(err, session.ErrCapability) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrRemote, op, err)
}

// put records m and draws it. Callers hold r.mu.
func (r *Registry) put(m *models.Marker, color string) {
	var viewer pubky.Key
	if r.session != nil {
		viewer = r.session.Identity
	}
	pin := mapview.NewPin(m, color, viewer)

	r.markers[m.Id] = m
	r.pins[m.Id] = pin
	r.surface.Remove(m.Id)
	r.surface.Place(pin)
}

// drop forgets id and erases its pin. Callers hold r.mu.
func (r *Registry) drop(id string) {
	delete(r.markers, id)
	delete(r.pins, id)
	r.surface.Remove(id)
}

// owned returns the local record for id after checking it belongs to the
// session identity. Callers hold r.mu.
func (r *Registry) owned(id string) (*models.Marker, error) {
	if r.session == nil {
		return nil, ErrNoSession
	}
	m, ok := r.markers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !m.OwnedBy(r.session.Identity) {
		return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, id)
	}
	return m, nil
}

// Create writes a new marker at loc owned by the session identity. When a
// photo is given it is uploaded after the metadata; if that upload fails the
// marker is still registered and the error is returned alongside it.
func (r *Registry) Create(ctx context.Context, loc *models.Location, title, description string, photo []byte) (*models.Marker, error) {
	l := r.logger.With("method", "Create")

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session == nil {
		return nil, ErrNoSession
	}
	if loc == nil {
		return nil, ErrNoLocation
	}

	m := &models.Marker{
		Id:          tid.MarkerID(),
		Latitude:    loc.Lat,
		Longitude:   loc.Lon,
		Title:       title,
		Description: description,
		Timestamp:   r.now().UnixMilli(),
		Photos:      []string{},
		Author:      r.session.Identity,
	}
	if err := r.validator.ValidateMarker(m); err != nil {
		return nil, err
	}

	var photoName string
	if len(photo) > 0 {
		photoName = tid.PhotoName()
		m.Photos = append(m.Photos, photoName)
	}

	st := r.session.Storage
	if err := store.PutJSON(ctx, st, m.URL(), m); err != nil {
		l.Error("failed to write marker", "id", m.Id, "err", err)
		return nil, remote("writing marker", err)
	}

	var photoErr error
	if photoName != "" {
		if err := store.PutBytes(ctx, st, m.Author.PhotoURL(m.Id, photoName), photo); err != nil {
			l.Error("failed to upload photo", "id", m.Id, "photo", photoName, "err", err)
			photoErr = remote("uploading photo for "+m.Id, err)
		}
	}

	r.put(m, "")
	l.Info("created marker", "id", m.Id, "author", m.Author)
	r.notifier.NewMarker(ctx, m.Clone())

	return m.Clone(), photoErr
}

// Update rewrites title, description and, when loc is set, the location of
// an owned marker. id, author and timestamp never change. A new photo
// replaces the old ones: it is uploaded first, then the metadata is
// written, then the old photos are deleted.
func (r *Registry) Update(ctx context.Context, id, title, description string, loc *models.Location, photo []byte) (*models.Marker, error) {
	l := r.logger.With("method", "Update", "id", id)

	r.mu.Lock()
	defer r.mu.Unlock()

	old, err := r.owned(id)
	if err != nil {
		return nil, err
	}

	m := old.Clone()
	m.Title = title
	m.Description = description
	if loc != nil {
		m.Latitude, m.Longitude = loc.Lat, loc.Lon
	}
	if err := r.validator.ValidateMarker(m); err != nil {
		return nil, err
	}

	st := r.session.Storage

	var stale []string
	if len(photo) > 0 {
		name := tid.PhotoName()
		if err := store.PutBytes(ctx, st, m.Author.PhotoURL(m.Id, name), photo); err != nil {
			l.Error("failed to upload photo", "photo", name, "err", err)
			return nil, remote("uploading photo", err)
		}
		stale = old.PhotoURLs()
		m.Photos = []string{name}
	}

	if err := store.PutJSON(ctx, st, m.URL(), m); err != nil {
		l.Error("failed to write marker", "err", err)
		return nil, remote("writing marker", err)
	}

	for _, u := range stale {
		if err := st.Delete(ctx, u); err != nil {
			l.Warn("failed to delete old photo", "url", u, "err", err)
		}
	}

	color := r.pins[id].Color
	r.put(m, color)
	l.Info("updated marker")
	r.notifier.UpdateMarker(ctx, m.Clone())

	return m.Clone(), nil
}

// Delete removes an owned marker: metadata first, then its photos. Photo
// deletion failures are logged; the marker leaves the registry either way.
func (r *Registry) Delete(ctx context.Context, id string) error {
	l := r.logger.With("method", "Delete", "id", id)

	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.owned(id)
	if err != nil {
		return err
	}

	st := r.session.Storage
	if err := st.Delete(ctx, m.URL()); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			l.Error("failed to delete marker", "err", err)
			return remote("deleting marker", err)
		}
		l.Warn("marker already gone from store")
	}

	for _, u := range m.PhotoURLs() {
		if err := st.Delete(ctx, u); err != nil {
			l.Warn("failed to delete photo", "url", u, "err", err)
		}
	}

	r.drop(id)
	l.Info("deleted marker")
	r.notifier.DeleteMarker(ctx, m.Clone())

	return nil
}

// fetchAuthor reads every marker object of author. Objects that fail to
// fetch or decode are logged and skipped. The result follows listing order.
func (r *Registry) fetchAuthor(ctx context.Context, st store.Store, author pubky.Key) ([]*models.Marker, error) {
	l := r.logger.With("method", "fetchAuthor", "author", author)

	urls, err := st.List(ctx, author.MarkersURL())
	if err != nil {
		return nil, remote("listing markers", err)
	}

	var objects []string
	for _, u := range urls {
		if author.IsMarkerObject(u) {
			objects = append(objects, u)
		}
	}

	results := make([]*models.Marker, len(objects))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, u := range objects {
		g.Go(func() error {
			data, err := store.GetBytes(gctx, st, u)
			if err != nil {
				l.Warn("failed to fetch marker", "url", u, "err", err)
				return nil
			}
			m, err := models.DecodeMarker(data)
			if err != nil {
				l.Warn("skipping marker", "url", u, "err", err)
				return nil
			}
			if m.Author != author || m.URL() != u {
				l.Warn("skipping marker stored under the wrong address", "url", u, "id", m.Id, "claimed", m.Author)
				return nil
			}
			results[i] = m
			return nil
		})
	}
	_ = g.Wait()

	markers := make([]*models.Marker, 0, len(results))
	for _, m := range results {
		if m != nil {
			markers = append(markers, m)
		}
	}
	l.Debug("fetched markers", "listed", len(objects), "loaded", len(markers))
	return markers, nil
}

// LoadAuthor replaces the registry contents with author's markers, drawn in
// color. It returns how many were loaded.
func (r *Registry) LoadAuthor(ctx context.Context, author pubky.Key, color string) (int, error) {
	l := r.logger.With("method", "LoadAuthor", "author", author)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session == nil {
		return 0, ErrNoSession
	}

	markers, err := r.fetchAuthor(ctx, r.session.Storage, author)
	if err != nil {
		l.Error("failed to load markers", "err", err)
		return 0, err
	}

	r.clear()
	for _, m := range markers {
		r.put(m, color)
	}
	l.Info("loaded markers", "count", len(markers))
	return len(markers), nil
}

// LoadAllFriends replaces the registry contents with the markers of every
// friend, each drawn in the friend's colour. Friends whose markers cannot be
// listed are skipped.
func (r *Registry) LoadAllFriends(ctx context.Context, friends []models.Friend) (int, error) {
	l := r.logger.With("method", "LoadAllFriends")

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session == nil {
		return 0, ErrNoSession
	}

	r.clear()
	total := 0
	for _, f := range friends {
		markers, err := r.fetchAuthor(ctx, r.session.Storage, f.Key)
		if err != nil {
			l.Warn("skipping friend", "pubky", f.Key, "err", err)
			continue
		}
		for _, m := range markers {
			r.put(m, f.Color)
		}
		total += len(markers)
	}
	l.Info("loaded friends' markers", "friends", len(friends), "markers", total)
	return total, nil
}

func (r *Registry) Get(id string) (*models.Marker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.markers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return m.Clone(), nil
}

// List returns every registered marker, newest first.
func (r *Registry) List() []*models.Marker {
	r.mu.RLock()
	defer r.mu.RUnlock()
	markers := make([]*models.Marker, 0, len(r.markers))
	for _, m := range r.markers {
		markers = append(markers, m.Clone())
	}
	models.SortNewestFirst(markers)
	return markers
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.markers)
}

// Focus returns the marker and pin to centre the map on.
func (r *Registry) Focus(id string) (*models.Marker, mapview.Pin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.markers[id]
	if !ok {
		return nil, mapview.Pin{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return m.Clone(), r.pins[id], nil
}

func (r *Registry) clear() {
	clear(r.markers)
	clear(r.pins)
	r.surface.Clear()
}
