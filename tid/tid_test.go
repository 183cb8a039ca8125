package tid

import (
	"strings"
	"testing"

	"github.com/bluesky-social/indigo/atproto/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTID_Increasing(t *testing.T) {
	prev := TID()
	for range 1000 {
		next := TID()
		require.Greater(t, next, prev)
		prev = next
	}

	_, err := syntax.ParseTID(prev)
	assert.NoError(t, err)
}

func TestNames(t *testing.T) {
	id := MarkerID()
	assert.True(t, strings.HasPrefix(id, "marker-"))
	_, err := syntax.ParseTID(strings.TrimPrefix(id, "marker-"))
	assert.NoError(t, err)

	photo := PhotoName()
	assert.True(t, strings.HasPrefix(photo, "photo-"))
	assert.True(t, strings.HasSuffix(photo, ".jpg"))
}
