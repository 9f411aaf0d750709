package editor

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/leapflow/internal/ui/notifier"
)

// SetupRoutes configures routes for the editor feature.
func SetupRoutes(
	router chi.Router,
	state *State,
	sessionStore sessions.Store,
	notify *notifier.Notifier,
	logger *slog.Logger,
	isDev bool,
) error {
	handlers := NewHandlers(state, sessionStore, notify, logger, isDev)

	router.Get("/", handlers.IndexPage)

	router.Route("/api", func(r chi.Router) {
		r.Get("/state", handlers.GetState)
		r.Get("/events", handlers.Events)
		r.Get("/types", handlers.Types)
		r.Get("/check", handlers.Check)
		r.Get("/session", handlers.GetSession)

		r.Post("/nodes", handlers.DropNode)
		r.Post("/nodes/changes", handlers.NodesChange)
		r.Patch("/nodes/{id}/data", handlers.UpdateNodeData)
		r.Delete("/nodes/{id}", handlers.DeleteNode)
		r.Post("/edges/changes", handlers.EdgesChange)

		r.Post("/connect", handlers.Connect)
		r.Post("/connect/start", handlers.ConnectStart)
		r.Post("/connect/end", handlers.ConnectEnd)

		r.Patch("/tables/{type}/{key}", handlers.EditCell)
		r.Post("/tables/{type}/{key}/select", handlers.SelectRow)

		r.Post("/clipboard/copy", handlers.Copy)
		r.Post("/clipboard/paste", handlers.Paste)
		r.Post("/expand", handlers.Expand)

		r.Get("/export", handlers.Export)
		r.Post("/import", handlers.Import)
	})

	return nil
}
