package web

import (
	"log/slog"
	"net/http"

	"geostories.app/core/app"
	"geostories.app/core/state"
	"geostories.app/core/web/handler"
	"geostories.app/core/web/middleware"
	"github.com/go-chi/chi/v5"
)

// Rules
// - One function per endpoint, named after the path.
// - Handlers take the App and nothing else; all state changes go through
//   App.Dispatch.

func RouterFromState(s *state.State, logger *slog.Logger) http.Handler {
	return Router(logger, s.App)
}

func Router(logger *slog.Logger, a *app.App) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithLogger(logger))
	r.Use(middleware.WithSession(a.Session()))

	needSession := middleware.RequireSession()

	r.Get("/state", handler.State(a))
	r.Post("/location", handler.Location(a))
	r.Post("/tab", handler.Tab(a))

	r.Route("/markers", func(r chi.Router) {
		r.With(middleware.Paginate).Get("/", handler.Markers(a))
		r.Post("/load", handler.MarkersLoad(a))
		r.With(needSession).Post("/", handler.MarkerCreate(a))

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", handler.Marker(a))
			r.With(needSession).Put("/", handler.MarkerUpdate(a))
			r.With(needSession).Delete("/", handler.MarkerDelete(a))
			r.With(needSession).Post("/edit", handler.MarkerEdit(a))
			r.Post("/focus", handler.MarkerFocus(a))
		})
	})

	r.Get("/map.geojson", handler.MapGeoJSON(a))
	r.Get("/map/bounds", handler.MapBounds(a))

	r.Route("/friends", func(r chi.Router) {
		r.Get("/", handler.Friends(a))
		r.With(needSession).Post("/refresh", handler.FriendsRefresh(a))
		r.Post("/show-all", handler.FriendsShowAll(a))
		r.Post("/{key}/show", handler.FriendShow(a))
		r.Post("/{key}/focus", handler.FriendFocus(a))
	})

	return r
}
