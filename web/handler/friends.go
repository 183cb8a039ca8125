package handler

import (
	"net/http"

	"geostories.app/core/app"
	"geostories.app/core/pubky"
	"github.com/go-chi/chi/v5"
)

func Friends(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, a.Friends())
	}
}

func FriendsRefresh(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := a.Dispatch(r.Context(), app.Command{Name: app.CmdLoadFriends})
		if err != nil {
			fail(w, r, "FriendsRefresh", err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func FriendsShowAll(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := a.Dispatch(r.Context(), app.Command{Name: app.CmdShowAllFriends})
		if err != nil {
			fail(w, r, "FriendsShowAll", err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// friendCommand runs name against the {key} path parameter.
func friendCommand(a *app.App, name, handler string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		k, err := pubky.ParseKey(chi.URLParam(r, "key"))
		if err != nil {
			fail(w, r, handler, err)
			return
		}
		res, err := a.Dispatch(r.Context(), app.Command{Name: name, Author: k})
		if err != nil {
			fail(w, r, handler, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func FriendShow(a *app.App) http.HandlerFunc {
	return friendCommand(a, app.CmdShowFriend, "FriendShow")
}

func FriendFocus(a *app.App) http.HandlerFunc {
	return friendCommand(a, app.CmdFocusFriend, "FriendFocus")
}
