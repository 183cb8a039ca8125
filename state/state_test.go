package state

import (
	"context"
	"strings"
	"testing"

	"geostories.app/core/app"
	"geostories.app/core/config"
	"geostories.app/core/models"
	"geostories.app/core/store"
	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, env map[string]string) *config.Config {
	t.Helper()
	c, err := config.LoadConfigFrom(context.Background(), envconfig.MapLookuper(env))
	require.NoError(t, err)
	return c
}

func TestOpenStore(t *testing.T) {
	tests := []struct {
		backend string
		want    any
	}{
		{"memory", &store.MemoryStore{}},
		{"fs", &store.FSStore{}},
		{"sqlite", &store.SqliteStore{}},
		{"homeserver", &store.HomeserverStore{}},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			c := load(t, map[string]string{
				"GEOSTORIES_STORE_BACKEND": tt.backend,
				"GEOSTORIES_STORE_ROOT":    t.TempDir(),
				"GEOSTORIES_STORE_DB_PATH": ":memory:",
			})
			st, err := OpenStore(c)
			require.NoError(t, err)
			assert.IsType(t, tt.want, st)
			if cl, ok := st.(store.Closer); ok {
				cl.Close()
			}
		})
	}

	_, err := OpenStore(load(t, map[string]string{"GEOSTORIES_STORE_BACKEND": "s3"}))
	assert.Error(t, err)
}

func TestMake(t *testing.T) {
	key := strings.Repeat("y", 52)
	c := load(t, map[string]string{
		"GEOSTORIES_STORE_BACKEND": "memory",
		"GEOSTORIES_SESSION_PUBKY": key,
	})

	s, err := Make(context.Background(), c)
	require.NoError(t, err)
	defer s.Close()

	require.NotNil(t, s.App.Session())
	assert.Equal(t, key, s.App.Session().Identity.String())

	ctx := context.Background()
	_, err = s.App.Dispatch(ctx, app.Command{Name: app.CmdSelectLocation, Location: &models.Location{Lat: 1, Lon: 2}})
	require.NoError(t, err)
	_, err = s.App.Dispatch(ctx, app.Command{Name: app.CmdCreateMarker, Title: "hello"})
	require.NoError(t, err)
	assert.Len(t, s.App.Markers(), 1)
}

func TestMake_ReadOnly(t *testing.T) {
	s, err := Make(context.Background(), load(t, map[string]string{"GEOSTORIES_STORE_BACKEND": "memory"}))
	require.NoError(t, err)
	defer s.Close()
	assert.Nil(t, s.App.Session())
}
