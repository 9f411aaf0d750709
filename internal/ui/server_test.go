package ui

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapflow/internal/document"
	"github.com/leapstack-labs/leapflow/internal/testutil"
	"github.com/leapstack-labs/leapflow/internal/workspace"
	"github.com/leapstack-labs/leapflow/pkg/core"
)

func newTestServer(t *testing.T, file string) (*Server, *workspace.Workspace) {
	t.Helper()
	ws := workspace.New(workspace.Config{IDs: &testutil.SeqIDs{}, Logger: testutil.NewTestLogger(t)})
	srv := NewServer(Config{
		Workspace:     ws,
		Port:          0,
		Watch:         true,
		File:          file,
		SessionSecret: "test-secret-key-32-bytes-long!!",
		Logger:        testutil.NewTestLogger(t),
	})
	return srv, ws
}

func TestHandlerServesAPIAndAssets(t *testing.T) {
	srv, _ := newTestServer(t, "")
	h, err := srv.Handler()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"nodes":[]`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/editor.css", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".swatch")
}

func TestWatchRequiresFile(t *testing.T) {
	srv, _ := newTestServer(t, "")
	assert.False(t, srv.watch, "nothing to watch without a file")
}

func TestReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flow.json")

	src := workspace.New(workspace.Config{IDs: &testutil.SeqIDs{}})
	_, err := src.DropNode(string(core.NodeDataModel), core.Position{X: 1, Y: 2})
	require.NoError(t, err)
	require.NoError(t, document.WriteFile(path, src.Export()))

	srv, ws := newTestServer(t, path)
	updates := srv.Notifier().Subscribe()
	defer srv.Notifier().Unsubscribe(updates)

	require.NoError(t, srv.Reload())

	assert.Len(t, ws.Nodes(), 1)
	assert.Len(t, ws.Rows(core.NodeDataModel), 1)
	select {
	case <-updates:
	default:
		t.Error("reload should notify subscribers")
	}
}

func TestReloadKeepsStateOnInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flow.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"nodes":`), 0o600))

	srv, ws := newTestServer(t, path)
	_, err := ws.DropNode(string(core.NodePrerequisite), core.Position{})
	require.NoError(t, err)

	err = srv.Reload()

	require.ErrorIs(t, err, core.ErrInvalidDocument)
	assert.Len(t, ws.Nodes(), 1)
}
