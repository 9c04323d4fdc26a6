// ABOUTME: Fallback content type for streams with no native sniffing
// ABOUTME: Deliberately performs no inspection of the stream
package mimetype

import (
	"fmt"
	"io"

	"github.com/harper/stream-media-source/internal/domain"
)

// Default is reported for every stream.
const Default = "application/octet-stream"

// ForStream returns the content type to advertise for r. Callers that
// know the real media type should pass it explicitly instead.
func ForStream(r io.Reader) (string, error) {
	if r == nil {
		return "", fmt.Errorf("mime type: nil stream: %w", domain.ErrInvalidArgument)
	}
	return Default, nil
}
