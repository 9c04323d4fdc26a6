// ABOUTME: Host-side loading requests that drive the resource loader over HTTP
// ABOUTME: Tracks current offset across partial fills and streams responses to the client
package http

import (
	"io"

	"github.com/harper/stream-media-source/internal/domain"
)

type loadingRequest struct {
	info     *domain.ContentInfo
	data     *dataRequest
	finished bool
	err      error
}

func (r *loadingRequest) ContentInformationRequest() *domain.ContentInfo {
	return r.info
}

func (r *loadingRequest) DataRequest() domain.DataRequest {
	if r.data == nil {
		return nil
	}
	return r.data
}

func (r *loadingRequest) FinishLoading() {
	r.finished = true
}

func (r *loadingRequest) FinishLoadingWithError(err error) {
	r.finished = true
	r.err = err
}

// dataRequest writes every Respond straight to w.
type dataRequest struct {
	offset  int64
	length  int64
	current int64

	w        io.Writer
	writeErr error
}

func newDataRequest(w io.Writer, offset, length int64) *dataRequest {
	return &dataRequest{offset: offset, length: length, current: offset, w: w}
}

func (d *dataRequest) RequestedOffset() int64     { return d.offset }
func (d *dataRequest) RequestedLength() int64     { return d.length }
func (d *dataRequest) CurrentOffset() int64       { return d.current }
func (d *dataRequest) RequestsAllDataToEnd() bool { return false }

func (d *dataRequest) Respond(data []byte) {
	if d.writeErr != nil {
		return
	}
	n, err := d.w.Write(data)
	d.current += int64(n)
	d.writeErr = err
}

func (d *dataRequest) delivered() int64 {
	return d.current - d.offset
}

func (d *dataRequest) done() bool {
	return d.delivered() >= d.length
}
