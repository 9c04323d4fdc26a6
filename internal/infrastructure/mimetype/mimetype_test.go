// ABOUTME: Tests for the fallback content type
// ABOUTME: Verifies the fixed value and that the stream is left untouched
package mimetype

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/stream-media-source/internal/domain"
)

func TestForStream(t *testing.T) {
	r := strings.NewReader("\x00\x00\x00\x18ftypmp42")

	ct, err := ForStream(r)
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", ct)
	assert.Equal(t, 12, r.Len())
}

func TestForStream_Nil(t *testing.T) {
	_, err := ForStream(nil)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
