// ABOUTME: Domain interfaces for dependency inversion
// ABOUTME: Host-facing data source capabilities and the stream provider abstraction
package domain

import (
	"context"
	"io"
)

// LengthUnset marks an unknown or open-ended length.
const LengthUnset int64 = -1

// StreamProvider opens the byte stream behind a media item.
// The provider owns the returned stream; adapters only borrow it.
type StreamProvider interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// DataSpec describes the byte range a host wants served.
type DataSpec struct {
	URI      string
	Position int64
	Length   int64 // LengthUnset reads until end of input
}

// TransferListener receives transfer progress from a data source.
type TransferListener interface {
	OnBytesTransferred(spec DataSpec, n int)
}

// PullDataSource is driven by a host read loop.
// Read returns io.EOF once the session has nothing more to serve.
type PullDataSource interface {
	Open(spec *DataSpec) (int64, error)
	Read(buf []byte, offset, length int) (int, error)
	Close() error
	AddTransferListener(l TransferListener)
	URI() string
	ResponseHeaders() map[string][]string
}

// ContentInfo is filled in by a PushDataSource.
type ContentInfo struct {
	ContentType              string
	ContentLength            int64
	ByteRangeAccessSupported bool
}

// DataRequest is a host-owned request for a byte range. CurrentOffset is
// advanced by the host as Respond delivers data.
type DataRequest interface {
	RequestedOffset() int64
	RequestedLength() int64
	CurrentOffset() int64
	RequestsAllDataToEnd() bool
	Respond(data []byte)
}

// LoadingRequest bundles the optional content-info and data parts of a
// single host request with its completion callbacks.
type LoadingRequest interface {
	ContentInformationRequest() *ContentInfo
	DataRequest() DataRequest
	FinishLoading()
	FinishLoadingWithError(err error)
}

// PushDataSource fills host-issued loading requests.
type PushDataSource interface {
	ShouldWaitForLoading(req LoadingRequest) bool
}
