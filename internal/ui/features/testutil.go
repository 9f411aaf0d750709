// Package features provides shared test utilities for UI feature tests.
package features

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapflow/internal/testutil"
	"github.com/leapstack-labs/leapflow/internal/ui/features/editor"
	"github.com/leapstack-labs/leapflow/internal/ui/notifier"
	"github.com/leapstack-labs/leapflow/internal/workspace"
	"github.com/leapstack-labs/leapflow/pkg/core"
)

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Workspace    *workspace.Workspace
	State        *editor.State
	Notifier     *notifier.Notifier
	SessionStore *sessions.CookieStore
	// IDs lists the ids of the nodes dropped by SetupTestFixture, in order.
	IDs []string
}

// SetupTestFixture creates a workspace with predictable ids and drops one
// node of each given type, 100 units apart.
func SetupTestFixture(t *testing.T, types ...core.NodeType) *TestFixture {
	t.Helper()

	ws := workspace.New(workspace.Config{
		IDs:    &testutil.SeqIDs{},
		Logger: testutil.NewTestLogger(t),
	})

	var ids []string
	for i, nt := range types {
		n, err := ws.DropNode(string(nt), core.Position{X: float64(i * 100), Y: 0})
		require.NoError(t, err)
		ids = append(ids, n.ID)
	}

	notify := notifier.New()
	return &TestFixture{
		Workspace:    ws,
		State:        editor.NewState(ws, notify),
		Notifier:     notify,
		SessionStore: NewTestSessionStore(),
		IDs:          ids,
	}
}

// RequestWithPathParam wraps a request with chi URL params, given as
// key/value pairs.
func RequestWithPathParam(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}
