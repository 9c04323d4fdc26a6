// ABOUTME: Error taxonomy shared by the data source adapters
// ABOUTME: End of input is io.EOF and is not listed here
package domain

import "errors"

var (
	// ErrInvalidArgument reports a nil stream, buffer or request.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrSeekUnsupported reports a nonzero offset on a stream that cannot seek.
	ErrSeekUnsupported = errors.New("stream does not support seeking")

	// ErrReleased reports use of an adapter after Release.
	ErrReleased = errors.New("data source released")
)
