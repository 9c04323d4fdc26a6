// ABOUTME: Tests for the probe command
// ABOUTME: Runs the command tree against temp files and HTTP sources
package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbe_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intro.mp4")
	require.NoError(t, os.WriteFile(path, make([]byte, 5000), 0644))

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"probe", path, "--content-type", "video/mp4"})

	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "content type: video/mp4")
	assert.Contains(t, out.String(), "length:       5000 (4.9 KiB)")
	assert.Contains(t, out.String(), "byte ranges:  true")
	assert.Contains(t, out.String(), "bytes read:   5000")
}

func TestProbe_URL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hal 9000 audio"))
	}))
	defer server.Close()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"probe", server.URL})

	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "content type: application/octet-stream")
	assert.Contains(t, out.String(), "length:       unknown")
	assert.Contains(t, out.String(), "byte ranges:  false")
	assert.Contains(t, out.String(), "bytes read:   14")
}

func TestProbe_MissingArg(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"probe"})

	assert.Error(t, cmd.Execute())
}
