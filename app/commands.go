package app

import (
	"context"
	"errors"
	"fmt"

	"geostories.app/core/mapview"
	"geostories.app/core/models"
	"geostories.app/core/pubky"
	"geostories.app/core/registry"
	"geostories.app/core/validator"
)

const (
	CmdSelectLocation = "select-location"
	CmdGeocodeResult  = "geocode-result"
	CmdCreateMarker   = "create-marker"
	CmdEditMarker     = "edit-marker"
	CmdUpdateMarker   = "update-marker"
	CmdDeleteMarker   = "delete-marker"
	CmdLoadMarkers    = "load-markers"
	CmdLoadFriends    = "load-friends"
	CmdShowFriend     = "show-friend"
	CmdShowAllFriends = "show-all-friends"
	CmdFocusMarker    = "focus-marker"
	CmdFocusFriend    = "focus-friend"
	CmdSwitchTab      = "switch-tab"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUnknownTab     = errors.New("unknown tab")
	ErrNoMarkers      = errors.New("no markers to show")
)

// Command is one user interaction. Which fields matter depends on Name.
type Command struct {
	Name        string
	Location    *models.Location
	Label       string
	MarkerID    string
	Title       string
	Description string
	Photo       []byte
	Author      pubky.Key
	Tab         Tab
}

// LoadResult reports a bulk marker load.
type LoadResult struct {
	Author  pubky.Key       `json:"author,omitempty"`
	Count   int             `json:"count"`
	Bounds  *mapview.Bounds `json:"bounds,omitempty"`
	Friends int             `json:"friends,omitempty"`
}

// FocusResult is where the map should centre.
type FocusResult struct {
	Marker *models.Marker `json:"marker"`
	Pin    mapview.Pin    `json:"pin"`
}

type handlerFunc func(ctx context.Context, cmd Command) (any, error)

func (a *App) commandTable() map[string]handlerFunc {
	return map[string]handlerFunc{
		CmdSelectLocation: a.selectLocation,
		CmdGeocodeResult:  a.geocodeResult,
		CmdCreateMarker:   a.createMarker,
		CmdEditMarker:     a.editMarker,
		CmdUpdateMarker:   a.updateMarker,
		CmdDeleteMarker:   a.deleteMarker,
		CmdLoadMarkers:    a.loadMarkers,
		CmdLoadFriends:    a.loadFriends,
		CmdShowFriend:     a.showFriend,
		CmdShowAllFriends: a.showAllFriends,
		CmdFocusMarker:    a.focusMarker,
		CmdFocusFriend:    a.focusFriend,
		CmdSwitchTab:      a.switchTab,
	}
}

// Dispatch runs cmd. Commands run one at a time.
func (a *App) Dispatch(ctx context.Context, cmd Command) (any, error) {
	h, ok := a.handlers[cmd.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Name)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	l := a.logger.With("command", cmd.Name)
	res, err := h(ctx, cmd)
	if err != nil {
		l.Warn("command failed", "err", err)
		return res, err
	}
	l.Debug("command done")
	return res, nil
}

func (a *App) setLocation(loc *models.Location, label string) error {
	if loc == nil {
		return registry.ErrNoLocation
	}
	if err := validator.New().ValidateLocation(*loc); err != nil {
		return err
	}
	l := *loc
	a.location = &l
	a.label = label
	a.canvas.Select(&l)
	return nil
}

// resetForm returns to the marker list after a successful save.
func (a *App) resetForm() {
	a.tab = TabView
	a.location = nil
	a.label = ""
	a.editing = ""
	a.canvas.Select(nil)
}

func (a *App) selectLocation(ctx context.Context, cmd Command) (any, error) {
	if err := a.setLocation(cmd.Location, ""); err != nil {
		return nil, err
	}
	return *a.location, nil
}

func (a *App) geocodeResult(ctx context.Context, cmd Command) (any, error) {
	if err := a.setLocation(cmd.Location, cmd.Label); err != nil {
		return nil, err
	}
	return *a.location, nil
}

func (a *App) createMarker(ctx context.Context, cmd Command) (any, error) {
	if a.editing != "" {
		cmd.MarkerID = a.editing
		return a.updateMarker(ctx, cmd)
	}

	loc := a.location
	if cmd.Location != nil {
		loc = cmd.Location
	}

	m, err := a.registry.Create(ctx, loc, cmd.Title, cmd.Description, cmd.Photo)
	if m != nil {
		a.resetForm()
	}
	return m, err
}

func (a *App) editMarker(ctx context.Context, cmd Command) (any, error) {
	if a.session == nil {
		return nil, registry.ErrNoSession
	}
	m, err := a.registry.Get(cmd.MarkerID)
	if err != nil {
		return nil, err
	}
	if !m.OwnedBy(a.session.Identity) {
		return nil, fmt.Errorf("%w: %s", registry.ErrPermissionDenied, m.Id)
	}

	a.editing = m.Id
	a.tab = TabAdd
	loc := m.Location()
	a.location = &loc
	a.label = ""
	a.canvas.Select(&loc)
	return m, nil
}

func (a *App) updateMarker(ctx context.Context, cmd Command) (any, error) {
	id := cmd.MarkerID
	if id == "" {
		id = a.editing
	}
	loc := a.location
	if cmd.Location != nil {
		loc = cmd.Location
	}

	m, err := a.registry.Update(ctx, id, cmd.Title, cmd.Description, loc, cmd.Photo)
	if err != nil {
		return nil, err
	}
	a.resetForm()
	return m, nil
}

func (a *App) deleteMarker(ctx context.Context, cmd Command) (any, error) {
	if err := a.registry.Delete(ctx, cmd.MarkerID); err != nil {
		return nil, err
	}
	if a.editing == cmd.MarkerID {
		a.editing = ""
		a.location = nil
		a.canvas.Select(nil)
	}
	return nil, nil
}

func (a *App) friendColor(k pubky.Key) string {
	if k == a.identity() {
		return ""
	}
	c, _ := a.colors.Lookup(k)
	return c
}

func (a *App) load(ctx context.Context, author pubky.Key) (LoadResult, error) {
	n, err := a.registry.LoadAuthor(ctx, author, a.friendColor(author))
	if err != nil {
		return LoadResult{}, err
	}
	a.viewing = author

	res := LoadResult{Author: author, Count: n}
	if b, ok := a.canvas.Bounds(""); ok {
		res.Bounds = &b
	}
	return res, nil
}

func (a *App) loadMarkers(ctx context.Context, cmd Command) (any, error) {
	author := cmd.Author
	if author == "" {
		if a.session == nil {
			return nil, registry.ErrNoSession
		}
		author = a.session.Identity
	}
	return a.load(ctx, author)
}

func (a *App) loadFriends(ctx context.Context, cmd Command) (any, error) {
	if a.session == nil {
		return nil, registry.ErrNoSession
	}
	a.friends = a.discovery.Discover(ctx, a.session.Identity)
	a.notifier.FriendsLoaded(ctx, a.session.Identity, append([]models.Friend{}, a.friends...))
	return append([]models.Friend{}, a.friends...), nil
}

func (a *App) showFriend(ctx context.Context, cmd Command) (any, error) {
	if cmd.Author == "" {
		return nil, fmt.Errorf("%w: no friend given", validator.ErrValidation)
	}
	return a.load(ctx, cmd.Author)
}

func (a *App) showAllFriends(ctx context.Context, cmd Command) (any, error) {
	n, err := a.registry.LoadAllFriends(ctx, a.friends)
	if err != nil {
		return nil, err
	}
	a.viewing = ""

	res := LoadResult{Count: n, Friends: len(a.friends)}
	if b, ok := a.canvas.Bounds(""); ok {
		res.Bounds = &b
	}
	return res, nil
}

func (a *App) focusMarker(ctx context.Context, cmd Command) (any, error) {
	m, pin, err := a.registry.Focus(cmd.MarkerID)
	if err != nil {
		return nil, err
	}
	return FocusResult{Marker: m, Pin: pin}, nil
}

func (a *App) focusFriend(ctx context.Context, cmd Command) (any, error) {
	b, ok := a.canvas.Bounds(cmd.Author)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoMarkers, cmd.Author.Short())
	}
	return b, nil
}

func (a *App) switchTab(ctx context.Context, cmd Command) (any, error) {
	switch cmd.Tab {
	case TabAdd, TabView:
		a.tab = cmd.Tab
		return a.tab, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTab, cmd.Tab)
	}
}
