package editor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/leapflow/internal/canvas"
	"github.com/leapstack-labs/leapflow/internal/connect"
	"github.com/leapstack-labs/leapflow/internal/document"
	"github.com/leapstack-labs/leapflow/internal/registry"
	"github.com/leapstack-labs/leapflow/internal/ui/features/editor/pages"
	editortypes "github.com/leapstack-labs/leapflow/internal/ui/features/editor/types"
	"github.com/leapstack-labs/leapflow/internal/ui/notifier"
	"github.com/leapstack-labs/leapflow/internal/workspace"
	"github.com/leapstack-labs/leapflow/pkg/core"
	"github.com/starfederation/datastar-go/datastar"
)

const (
	sessionName = "leapflow"
	maxBodySize = 8 << 20
)

// ErrBadRequest is returned for request bodies that cannot be decoded.
var ErrBadRequest = errors.New("bad request")

// Handlers provides HTTP handlers for the editor feature.
type Handlers struct {
	state        *State
	sessionStore sessions.Store
	notifier     *notifier.Notifier
	logger       *slog.Logger
	isDev        bool
	now          func() time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(state *State, sessionStore sessions.Store, notify *notifier.Notifier, logger *slog.Logger, isDev bool) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		state:        state,
		sessionStore: sessionStore,
		notifier:     notify,
		logger:       logger,
		isDev:        isDev,
		now:          time.Now,
	}
}

// StateView is the full editor state as the client sees it.
type StateView struct {
	Nodes       []core.Node `json:"nodes"`
	Edges       []core.Edge `json:"edges"`
	Tables      core.Tables `json:"tables"`
	AllExpanded bool        `json:"allExpanded"`
	Dragging    string      `json:"dragging,omitempty"`
	Clipboard   int         `json:"clipboard"`
}

// TypeView is a palette entry with the types it may connect to.
type TypeView struct {
	registry.TypeSpec
	Targets []core.NodeType `json:"targets"`
}

// SessionView is the per-browser UI state kept in the session cookie.
type SessionView struct {
	Table string `json:"table,omitempty"`
	Row   string `json:"row,omitempty"`
}

// DropRequest is the body of POST /api/nodes.
type DropRequest struct {
	Type     string        `json:"type"`
	Position core.Position `json:"position"`
}

// FieldRequest is the body of node and cell edits.
type FieldRequest struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

// ConnectStartRequest is the body of POST /api/connect/start.
type ConnectStartRequest struct {
	NodeID string `json:"nodeId"`
}

// ExpandRequest is the body of POST /api/expand. A missing Expanded toggles.
type ExpandRequest struct {
	Expanded *bool `json:"expanded"`
}

func snapshot(ws *workspace.Workspace) StateView {
	doc := ws.Snapshot()
	drag, _ := ws.Dragging()
	doc.Tables.Normalize()
	return StateView{
		Nodes:       nonNil(doc.Nodes),
		Edges:       nonNil(doc.Edges),
		Tables:      doc.Tables,
		AllExpanded: ws.AllExpanded(),
		Dragging:    drag,
		Clipboard:   ws.ClipboardLen(),
	}
}

// GetState returns the full state.
func (h *Handlers) GetState(w http.ResponseWriter, _ *http.Request) {
	var view StateView
	_ = h.state.Do(func(ws *workspace.Workspace) error {
		view = snapshot(ws)
		return nil
	})
	writeJSON(w, http.StatusOK, view)
}

// DropNode adds a node of the requested type.
func (h *Handlers) DropNode(w http.ResponseWriter, r *http.Request) {
	var req DropRequest
	if !h.decode(w, r, &req) {
		return
	}
	var node core.Node
	err := h.state.Do(func(ws *workspace.Workspace) error {
		var err error
		node, err = ws.DropNode(req.Type, req.Position)
		return err
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, node)
}

// NodesChange applies a batch of canvas node changes.
func (h *Handlers) NodesChange(w http.ResponseWriter, r *http.Request) {
	var changes []canvas.NodeChange
	if !h.decode(w, r, &changes) {
		return
	}
	h.mutate(w, func(ws *workspace.Workspace) error {
		return ws.OnNodesChange(changes)
	})
}

// EdgesChange applies a batch of canvas edge changes.
func (h *Handlers) EdgesChange(w http.ResponseWriter, r *http.Request) {
	var changes []canvas.EdgeChange
	if !h.decode(w, r, &changes) {
		return
	}
	h.mutate(w, func(ws *workspace.Workspace) error {
		return ws.OnEdgesChange(changes)
	})
}

// Connect validates and adds an edge.
func (h *Handlers) Connect(w http.ResponseWriter, r *http.Request) {
	var c core.Connection
	if !h.decode(w, r, &c) {
		return
	}
	var edge core.Edge
	err := h.state.Do(func(ws *workspace.Workspace) error {
		var err error
		edge, err = ws.Connect(c)
		return err
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, edge)
}

// ConnectStart dims the nodes that cannot accept a connection from the
// dragged node.
func (h *Handlers) ConnectStart(w http.ResponseWriter, r *http.Request) {
	var req ConnectStartRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.mutate(w, func(ws *workspace.Workspace) error {
		return ws.ConnectStart(req.NodeID)
	})
}

// ConnectEnd restores every node's opacity.
func (h *Handlers) ConnectEnd(w http.ResponseWriter, _ *http.Request) {
	h.mutate(w, func(ws *workspace.Workspace) error {
		ws.ConnectEnd()
		return nil
	})
}

// UpdateNodeData edits one field of a node's data.
func (h *Handlers) UpdateNodeData(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req FieldRequest
	if !h.decode(w, r, &req) {
		return
	}
	var node core.Node
	err := h.state.Do(func(ws *workspace.Workspace) error {
		if err := ws.UpdateNodeField(id, req.Field, req.Value); err != nil {
			return err
		}
		node, _ = ws.Node(id)
		return nil
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, node)
}

// EditCell edits one cell of a type's table.
func (h *Handlers) EditCell(w http.ResponseWriter, r *http.Request) {
	nt, key := core.NodeType(chi.URLParam(r, "type")), chi.URLParam(r, "key")
	var req FieldRequest
	if !h.decode(w, r, &req) {
		return
	}
	var row core.Row
	err := h.state.Do(func(ws *workspace.Workspace) error {
		if err := ws.EditCell(nt, key, req.Field, req.Value); err != nil {
			return err
		}
		row, _ = ws.Row(nt, key)
		return nil
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

// SelectRow selects the node paired with a row and remembers the row in
// the session.
func (h *Handlers) SelectRow(w http.ResponseWriter, r *http.Request) {
	nt, key := core.NodeType(chi.URLParam(r, "type")), chi.URLParam(r, "key")
	var selected []core.Node
	err := h.state.Do(func(ws *workspace.Workspace) error {
		if err := ws.SelectRow(nt, key); err != nil {
			return err
		}
		selected = ws.Selected()
		return nil
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	session, err := h.sessionStore.Get(r, sessionName)
	if err != nil {
		h.logger.Debug("discarding unreadable session", "error", err)
	}
	session.Values["table"] = string(nt)
	session.Values["row"] = key
	if err := session.Save(r, w); err != nil {
		h.logger.Warn("failed to save session", "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"selected": nonNil(selected)})
}

// GetSession returns the session's remembered table and row.
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	var view SessionView
	if session, err := h.sessionStore.Get(r, sessionName); err == nil {
		view.Table, _ = session.Values["table"].(string)
		view.Row, _ = session.Values["row"].(string)
	}
	writeJSON(w, http.StatusOK, view)
}

// DeleteNode removes a node with its row and edges.
func (h *Handlers) DeleteNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.state.Do(func(ws *workspace.Workspace) error { return ws.DeleteNode(id) }); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Copy puts the selected nodes on the clipboard.
func (h *Handlers) Copy(w http.ResponseWriter, _ *http.Request) {
	var n int
	_ = h.state.Do(func(ws *workspace.Workspace) error {
		n = ws.Copy()
		return nil
	})
	writeJSON(w, http.StatusOK, map[string]int{"copied": n})
}

// Paste inserts the clipboard contents as new nodes.
func (h *Handlers) Paste(w http.ResponseWriter, _ *http.Request) {
	var pasted []core.Node
	err := h.state.Do(func(ws *workspace.Workspace) error {
		var err error
		pasted, err = ws.Paste()
		return err
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	status := http.StatusCreated
	if len(pasted) == 0 {
		status = http.StatusOK
	}
	writeJSON(w, status, map[string]any{"nodes": nonNil(pasted)})
}

// Expand sets or toggles collapse/expand-all.
func (h *Handlers) Expand(w http.ResponseWriter, r *http.Request) {
	var req ExpandRequest
	if r.ContentLength != 0 && !h.decode(w, r, &req) {
		return
	}
	var expanded bool
	_ = h.state.Do(func(ws *workspace.Workspace) error {
		if req.Expanded == nil {
			expanded = ws.ToggleExpandAll()
			return nil
		}
		ws.SetAllExpanded(*req.Expanded)
		expanded = *req.Expanded
		return nil
	})
	writeJSON(w, http.StatusOK, map[string]bool{"allExpanded": expanded})
}

// Export downloads the document as JSON, or YAML with ?format=yaml.
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	format, err := document.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.writeError(w, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	var doc *core.Document
	_ = h.state.Do(func(ws *workspace.Workspace) error {
		doc = ws.Export()
		return nil
	})
	data, err := document.Encode(doc, format)
	if err != nil {
		h.writeError(w, err)
		return
	}

	name := document.FileName(h.now())
	contentType := "application/json"
	if format == document.FormatYAML {
		name = strings.TrimSuffix(name, ".json") + ".yaml"
		contentType = "application/yaml"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	_, _ = w.Write(data)
}

// Import replaces the state with the posted document. The format comes
// from ?format, then the Content-Type, and defaults to JSON.
func (h *Handlers) Import(w http.ResponseWriter, r *http.Request) {
	format, err := requestFormat(r)
	if err != nil {
		h.writeError(w, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		h.writeError(w, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	doc, err := document.Decode(data, format)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.mutate(w, func(ws *workspace.Workspace) error {
		return ws.Import(doc)
	})
}

// Types lists the palette, filtered by ?q.
func (h *Handlers) Types(w http.ResponseWriter, r *http.Request) {
	var reg *registry.Registry
	_ = h.state.Do(func(ws *workspace.Workspace) error {
		reg = ws.Registry()
		return nil
	})
	specs := reg.Search(r.URL.Query().Get("q"))
	out := make([]TypeView, 0, len(specs))
	for _, s := range specs {
		out = append(out, TypeView{TypeSpec: s, Targets: nonNil(connect.Targets(s.Type))})
	}
	writeJSON(w, http.StatusOK, out)
}

// Check reports node/row consistency problems.
func (h *Handlers) Check(w http.ResponseWriter, _ *http.Request) {
	var report workspace.Report
	_ = h.state.Do(func(ws *workspace.Workspace) error {
		report = ws.Check()
		return nil
	})
	writeJSON(w, http.StatusOK, map[string]any{"ok": report.OK(), "problems": nonNil(report.Problems)})
}

// IndexPage renders the editor page with the current summary.
func (h *Handlers) IndexPage(w http.ResponseWriter, r *http.Request) {
	summary := h.summary()
	if err := pages.EditorPage("Flowchart", h.isDev, summary).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Events is the long-lived SSE endpoint. It patches the summary panel on
// every change; the initial state is rendered by IndexPage.
func (h *Handlers) Events(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	updates := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(updates)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-updates:
			if err := sse.PatchElementTempl(pages.SummaryPanel(h.summary())); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

func (h *Handlers) summary() editortypes.Summary {
	var s editortypes.Summary
	_ = h.state.Do(func(ws *workspace.Workspace) error {
		s = buildSummary(ws)
		return nil
	})
	s.Last, s.Changes = h.state.LastEvent()
	return s
}

// mutate runs fn and answers with the resulting state.
func (h *Handlers) mutate(w http.ResponseWriter, fn func(ws *workspace.Workspace) error) {
	var view StateView
	err := h.state.Do(func(ws *workspace.Workspace) error {
		if err := fn(ws); err != nil {
			return err
		}
		view = snapshot(ws)
		return nil
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil {
		h.writeError(w, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return false
	}
	return true
}

// writeError maps domain errors onto status codes. Refused connections
// carry the user-facing message.
func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err)
	} else {
		h.logger.Debug("request rejected", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": connect.UserMessage(err)})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, core.ErrNodeNotFound),
		errors.Is(err, core.ErrEdgeNotFound),
		errors.Is(err, core.ErrRowNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidConnection):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, core.ErrUnknownNodeType),
		errors.Is(err, core.ErrInvalidDocument),
		errors.Is(err, core.ErrUnknownField),
		errors.Is(err, core.ErrInvalidValue),
		errors.Is(err, core.ErrDuplicateID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func requestFormat(r *http.Request) (document.Format, error) {
	if f := r.URL.Query().Get("format"); f != "" {
		return document.ParseFormat(f)
	}
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		return document.FormatYAML, nil
	}
	return document.FormatJSON, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
