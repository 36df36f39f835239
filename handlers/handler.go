// Package handlers adapts player intents arriving over HTTP into controller
// calls. Handlers validate preconditions, log and re-render on invalid
// input, and never let a game error escape as a crash.
package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/jung-kurt/gofpdf"

	"splynt/game"
	"splynt/sanitize"
	"splynt/session"
	"splynt/store"
	"splynt/templates"
)

// Handler wires the gateway, session manager and archive into the HTTP
// surface.
type Handler struct {
	Gateway game.Generator
	Manager *session.Manager
	Archive *store.Archive // nil disables archiving
	Timeout time.Duration
}

// Start resolves the requested settings and begins a new session game.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	settings, err := game.ResolveSettings(r.FormValue("difficulty"), r.FormValue("language"))
	if err != nil {
		log.Printf("start: %v", err)
		http.Error(w, "Invalid game settings.", http.StatusBadRequest)
		return
	}

	ctrl := game.NewController(h.Gateway, settings)
	h.Manager.Start(w, ctrl)
	h.render(w, r, templates.DoorView())
}

// OpenDoor starts the interview for the session's game.
func (h *Handler) OpenDoor(w http.ResponseWriter, r *http.Request) {
	sess := h.Manager.Get(r)
	if sess == nil {
		http.Error(w, "No running game. Start a new one.", http.StatusBadRequest)
		return
	}

	before := sess.Controller.View().Phase
	ctx, cancel := h.callContext(r)
	defer cancel()
	if err := sess.Controller.OpenDoor(ctx); err != nil {
		log.Printf("open door: %v", err)
	}
	h.finishTurn(w, r, sess, before)
}

// Choice commits the selected choice. Invalid or mistimed selections log
// and re-render unchanged.
func (h *Handler) Choice(w http.ResponseWriter, r *http.Request) {
	sess := h.Manager.Get(r)
	if sess == nil {
		http.Error(w, "No running game. Start a new one.", http.StatusBadRequest)
		return
	}

	n, err := strconv.Atoi(r.FormValue("choice"))
	if err != nil {
		log.Printf("choice: bad index %q", r.FormValue("choice"))
		h.render(w, r, templates.GameView(sess.Controller.View()))
		return
	}

	before := sess.Controller.View().Phase
	ctx, cancel := h.callContext(r)
	defer cancel()
	if err := sess.Controller.Choose(ctx, n); err != nil {
		log.Printf("choice: %v", err)
	}
	h.finishTurn(w, r, sess, before)
}

// Respond commits a free-text reply.
func (h *Handler) Respond(w http.ResponseWriter, r *http.Request) {
	sess := h.Manager.Get(r)
	if sess == nil {
		http.Error(w, "No running game. Start a new one.", http.StatusBadRequest)
		return
	}

	before := sess.Controller.View().Phase
	ctx, cancel := h.callContext(r)
	defer cancel()
	if err := sess.Controller.Respond(ctx, r.FormValue("text")); err != nil {
		log.Printf("respond: %v", err)
	}
	h.finishTurn(w, r, sess, before)
}

// Exit renders the advisory leave-confirmation dialog. It never mutates the
// game; leaving remains the browser's decision.
func (h *Handler) Exit(w http.ResponseWriter, r *http.Request) {
	sess := h.Manager.Get(r)
	if sess == nil {
		http.Error(w, "No running game.", http.StatusBadRequest)
		return
	}

	ctx, cancel := h.callContext(r)
	defer cancel()
	confirm := sess.Controller.ExitAttempt(ctx)
	h.render(w, r, templates.ExitDialog(confirm))
}

// Restart resets the session's game to a fresh one with the same settings.
func (h *Handler) Restart(w http.ResponseWriter, r *http.Request) {
	sess := h.Manager.Get(r)
	if sess == nil {
		http.Error(w, "No running game. Start a new one.", http.StatusBadRequest)
		return
	}

	sess.Controller.Restart()
	h.render(w, r, templates.DoorView())
}

// Logs renders the diagnostic log fragment.
func (h *Handler) Logs(w http.ResponseWriter, r *http.Request) {
	sess := h.Manager.Get(r)
	if sess == nil {
		http.Error(w, "No running game.", http.StatusBadRequest)
		return
	}
	h.render(w, r, templates.LogsView(sess.Controller.Log()))
}

// Games lists archived games, or renders one archived game's log when an
// id is given. Returns 404 when archiving is disabled.
func (h *Handler) Games(w http.ResponseWriter, r *http.Request) {
	if h.Archive == nil {
		http.Error(w, "Archiving is disabled.", http.StatusNotFound)
		return
	}

	if idValue := r.FormValue("id"); idValue != "" {
		id, err := strconv.ParseInt(idValue, 10, 64)
		if err != nil {
			http.Error(w, "Bad game id.", http.StatusBadRequest)
			return
		}
		entries, err := h.Archive.GameLog(r.Context(), id)
		if err != nil {
			log.Printf("games: %v", err)
			http.Error(w, "Archive unavailable.", http.StatusInternalServerError)
			return
		}
		h.render(w, r, templates.LogsView(entries))
		return
	}

	games, err := h.Archive.RecentGames(r.Context(), 20)
	if err != nil {
		log.Printf("games: %v", err)
		http.Error(w, "Archive unavailable.", http.StatusInternalServerError)
		return
	}
	h.render(w, r, templates.ArchiveView(games))
}

// Download renders the resolved turns as a PDF transcript.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	sess := h.Manager.Get(r)
	if sess == nil {
		http.Error(w, "No running game.", http.StatusBadRequest)
		return
	}

	view := sess.Controller.View()
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Interview Transcript", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	for _, turn := range sess.Controller.Progress() {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.MultiCell(0, 6, sanitize.PlainText(turn.Narrator), "", "L", false)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.MultiCell(0, 6, sanitize.PlainText(turn.Player), "", "L", false)
		pdf.Ln(2)
	}

	if view.Outcome != "" {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.MultiCell(0, 8, "Outcome: "+string(view.Outcome), "", "L", false)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, sanitize.PlainText(view.Conclusion), "", "L", false)
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="interview.pdf"`)
	if err := pdf.Output(w); err != nil {
		log.Printf("download: %v", err)
	}
}

// finishTurn renders the post-commit view and archives the game, but only
// on the transition into Over. A post-game request sees Over on both sides
// of the call and must not insert a second record.
func (h *Handler) finishTurn(w http.ResponseWriter, r *http.Request, sess *session.Session, before game.Phase) {
	view := sess.Controller.View()
	ended := before != game.PhaseOver && view.Phase == game.PhaseOver
	if h.Archive != nil && ended && view.Outcome != "" {
		if _, err := h.Archive.SaveGame(r.Context(), view.Settings, view.Hireability, view.Outcome, sess.Controller.Log()); err != nil {
			log.Printf("archive: %v", err)
		}
	}
	h.render(w, r, templates.GameView(view))
}

func (h *Handler) callContext(r *http.Request) (context.Context, context.CancelFunc) {
	if h.Timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), h.Timeout)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		log.Printf("render: %v", err)
	}
}
