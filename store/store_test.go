package store

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice = "pubky://alice"
	bob   = "pubky://bob"
)

type storeFactory func(t *testing.T) Store

func backends() map[string]storeFactory {
	return map[string]storeFactory{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore()
		},
		"sqlite": func(t *testing.T) Store {
			s, err := NewSQLiteStore(":memory:")
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
		"fs": func(t *testing.T) Store {
			s, err := NewFSStore(t.TempDir())
			require.NoError(t, err)
			return s
		},
		"homeserver": func(t *testing.T) Store {
			srv := httptest.NewServer(fakeHomeserver(t, NewMemoryStore(), "alice", "s3cret"))
			t.Cleanup(srv.Close)
			s, err := NewHomeserverStore(srv.URL, WithSessionSecret("alice", "s3cret"))
			require.NoError(t, err)
			return s
		},
	}
}

func TestStores(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			t.Run("put and get", func(t *testing.T) {
				s := factory(t)
				ctx := context.Background()

				url := alice + "/pub/geostories.app/markers/m1.json"
				require.NoError(t, PutJSON(ctx, s, url, map[string]any{"id": "m1"}))

				var got map[string]any
				require.NoError(t, GetJSON(ctx, s, url, &got))
				assert.Equal(t, "m1", got["id"])

				require.NoError(t, PutBytes(ctx, s, url, []byte(`{"id":"m2"}`)))
				data, err := GetBytes(ctx, s, url)
				require.NoError(t, err)
				assert.Equal(t, `{"id":"m2"}`, string(data))
			})

			t.Run("missing object", func(t *testing.T) {
				s := factory(t)
				ctx := context.Background()

				_, err := s.Get(ctx, alice+"/pub/nothing.json")
				assert.ErrorIs(t, err, ErrNotFound)

				err = s.Delete(ctx, alice+"/pub/nothing.json")
				assert.ErrorIs(t, err, ErrNotFound)
			})

			t.Run("list by prefix", func(t *testing.T) {
				s := factory(t)
				ctx := context.Background()

				urls := []string{
					alice + "/pub/geostories.app/markers/b.json",
					alice + "/pub/geostories.app/markers/a.json",
					alice + "/pub/geostories.app/markers/a/photo-1.jpg",
					alice + "/pub/pubky.app/profile.json",
				}
				for _, u := range urls {
					require.NoError(t, s.Put(ctx, u, []byte("x")))
				}

				got, err := s.List(ctx, alice+"/pub/geostories.app/markers/")
				require.NoError(t, err)
				assert.Equal(t, []string{
					alice + "/pub/geostories.app/markers/a.json",
					alice + "/pub/geostories.app/markers/a/photo-1.jpg",
					alice + "/pub/geostories.app/markers/b.json",
				}, got)

				got, err = s.List(ctx, bob+"/pub/geostories.app/markers/")
				require.NoError(t, err)
				assert.Empty(t, got)
			})

			t.Run("delete", func(t *testing.T) {
				s := factory(t)
				ctx := context.Background()

				url := alice + "/pub/geostories.app/markers/m1.json"
				require.NoError(t, s.Put(ctx, url, []byte("x")))
				require.NoError(t, s.Delete(ctx, url))

				_, err := s.Get(ctx, url)
				assert.ErrorIs(t, err, ErrNotFound)

				got, err := s.List(ctx, alice+"/pub/geostories.app/markers/")
				require.NoError(t, err)
				assert.Empty(t, got)
			})
		})
	}
}

func TestFSStore_RejectsEscape(t *testing.T) {
	root := t.TempDir()
	s, err := NewFSStore(root)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Put(ctx, alice+"/../../escape.json", []byte("x")))

	// securejoin keeps the write inside alice's directory
	got, err := s.List(ctx, alice+"/")
	require.NoError(t, err)
	assert.Equal(t, []string{alice + "/escape.json"}, got)
}

func TestHomeserverStore_Paging(t *testing.T) {
	backing := NewMemoryStore()
	ctx := context.Background()
	for i := range 250 {
		require.NoError(t, backing.Put(ctx, alice+"/pub/geostories.app/markers/m"+strconv.Itoa(1000+i)+".json", []byte("x")))
	}

	var requests atomic.Int32
	h := fakeHomeserver(t, backing, "alice", "s3cret")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		h.ServeHTTP(w, r)
	}))
	defer srv.Close()

	s, err := NewHomeserverStore(srv.URL)
	require.NoError(t, err)

	got, err := s.List(ctx, alice+"/pub/geostories.app/markers/")
	require.NoError(t, err)
	assert.Len(t, got, 250)
	assert.Equal(t, int32(3), requests.Load())
}

func TestHomeserverStore_WriteNeedsSession(t *testing.T) {
	srv := httptest.NewServer(fakeHomeserver(t, NewMemoryStore(), "alice", "s3cret"))
	defer srv.Close()

	s, err := NewHomeserverStore(srv.URL)
	require.NoError(t, err)

	err = s.Put(context.Background(), alice+"/pub/geostories.app/markers/m1.json", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestNewHomeserverStore_BadURL(t *testing.T) {
	_, err := NewHomeserverStore("ftp://example.com")
	assert.Error(t, err)
}

// fakeHomeserver serves a MemoryStore with the homeserver's http shape.
func fakeHomeserver(t *testing.T, backing *MemoryStore, owner, secret string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		key := r.Header.Get("pubky-host")
		url := "pubky://" + key + r.URL.Path

		switch r.Method {
		case http.MethodGet:
			if strings.HasSuffix(r.URL.Path, "/") {
				all, _ := backing.List(ctx, url)
				cursor := r.URL.Query().Get("cursor")
				limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
				var page []string
				for _, u := range all {
					if cursor != "" && u <= cursor {
						continue
					}
					if limit > 0 && len(page) == limit {
						break
					}
					page = append(page, u)
				}
				if len(all) == 0 {
					http.NotFound(w, r)
					return
				}
				io.WriteString(w, strings.Join(page, "\n"))
				return
			}
			data, err := backing.Get(ctx, url)
			if err != nil {
				http.NotFound(w, r)
				return
			}
			w.Write(data)
		case http.MethodPut, http.MethodDelete:
			c, err := r.Cookie(owner)
			if key != owner || err != nil || c.Value != secret {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if r.Method == http.MethodDelete {
				if err := backing.Delete(ctx, url); err != nil {
					http.NotFound(w, r)
				}
				return
			}
			data, _ := io.ReadAll(r.Body)
			backing.Put(ctx, url, data)
			w.WriteHeader(http.StatusCreated)
		}
	})
}
