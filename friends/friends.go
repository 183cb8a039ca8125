package friends

import (
	"context"
	"log/slog"

	"geostories.app/core/models"
	"geostories.app/core/pubky"
	"geostories.app/core/store"
	"golang.org/x/sync/errgroup"
)

const DefaultWorkers = 8

// Discovery finds followed identities that have published markers.
type Discovery struct {
	logger   *slog.Logger
	store    store.Store
	colors   *ColorAssigner
	profiles ProfileCache
	workers  int
}

type Opt func(*Discovery)

func WithProfileCache(c ProfileCache) Opt {
	return func(d *Discovery) {
		d.profiles = c
	}
}

func WithWorkers(n int) Opt {
	return func(d *Discovery) {
		if n > 0 {
			d.workers = n
		}
	}
}

func NewDiscovery(logger *slog.Logger, st store.Store, colors *ColorAssigner, opts ...Opt) *Discovery {
	d := &Discovery{
		logger:   logger,
		store:    st,
		colors:   colors,
		profiles: noProfileCache{},
		workers:  DefaultWorkers,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Follows lists the identities self follows, in follow-list order. Entries
// that are not valid keys are skipped.
func (d *Discovery) Follows(ctx context.Context, self pubky.Key) []pubky.Key {
	l := d.logger.With("method", "Follows", "self", self)

	urls, err := d.store.List(ctx, self.FollowsURL())
	if err != nil {
		l.Warn("failed to list follows", "err", err)
		return nil
	}

	seen := make(map[pubky.Key]bool, len(urls))
	keys := make([]pubky.Key, 0, len(urls))
	for _, u := range urls {
		k, err := pubky.ParseKey(pubky.LastSegment(u))
		if err != nil {
			l.Debug("skipping follow", "url", u, "err", err)
			continue
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys
}

// CountMarkers counts k's marker objects. Listing failures count as zero.
func (d *Discovery) CountMarkers(ctx context.Context, k pubky.Key) int {
	urls, err := d.store.List(ctx, k.MarkersURL())
	if err != nil {
		d.logger.Debug("failed to list markers", "pubky", k, "err", err)
		return 0
	}
	n := 0
	for _, u := range urls {
		if k.IsMarkerObject(u) {
			n++
		}
	}
	return n
}

// Profile fetches k's profile, going through the cache. It never fails;
// an unfetchable profile is reported as unknown.
func (d *Discovery) Profile(ctx context.Context, k pubky.Key) models.Profile {
	if p, ok := d.profiles.Get(ctx, k); ok {
		return p
	}

	data, err := store.GetBytes(ctx, d.store, k.ProfileURL())
	if err != nil {
		d.logger.Debug("failed to fetch profile", "pubky", k, "err", err)
		return models.UnknownProfile()
	}

	p := models.DecodeProfile(data)
	if p.Known {
		d.profiles.Set(ctx, k, p)
	}
	return p
}

// Discover returns the followed identities of self with at least one
// marker, in follow-list order, each with a profile and a colour.
func (d *Discovery) Discover(ctx context.Context, self pubky.Key) []models.Friend {
	l := d.logger.With("method", "Discover", "self", self)

	follows := d.Follows(ctx, self)
	results := make([]*models.Friend, len(follows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for i, k := range follows {
		g.Go(func() error {
			count := d.CountMarkers(gctx, k)
			if count == 0 {
				return nil
			}
			results[i] = &models.Friend{
				Key:         k,
				MarkerCount: count,
				Profile:     d.Profile(gctx, k),
			}
			return nil
		})
	}
	// workers never fail
	_ = g.Wait()

	friends := make([]models.Friend, 0, len(follows))
	for _, f := range results {
		if f == nil {
			continue
		}
		f.Color = d.colors.Color(f.Key)
		friends = append(friends, *f)
	}

	l.Info("discovered friends", "follows", len(follows), "friends", len(friends))
	return friends
}
