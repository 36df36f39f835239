// Package templates renders the game's HTML fragments as templ components.
// Narrative text goes through the sanitizer before it is written; everything
// else is escaped.
package templates

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"

	"splynt/game"
	"splynt/sanitize"
	"splynt/store"
)

// Index is the start screen with the difficulty and language menus.
func Index(title string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8"/>
<title>%s</title>
<script src="/static/htmx.min.js"></script>
<link rel="stylesheet" href="/static/style.css"/>
</head>
<body>
<div class="inner text-center">
<h1 class="title">AI-Powered Interactive Story Game</h1>
<p class="description">Experience a unique, ever-evolving interview where your choices guide the narrative, powered by real-time AI without predefined scripts.</p>
<form hx-post="/start" hx-target="#game" hx-swap="innerHTML">
<fieldset class="menu"><legend>Difficulty</legend>`, html.EscapeString(title)); err != nil {
			return err
		}
		for i, d := range game.Difficulties {
			checked := ""
			if i == 0 {
				checked = ` checked`
			}
			if _, err := fmt.Fprintf(w,
				`<label><input type="radio" name="difficulty" value="%s"%s/> %s</label>`,
				html.EscapeString(d.Key), checked, html.EscapeString(d.Label)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</fieldset><fieldset class="menu"><legend>Language</legend><select name="language">`); err != nil {
			return err
		}
		for _, l := range game.Languages {
			if _, err := fmt.Fprintf(w, `<option value="%s">%s</option>`,
				html.EscapeString(l.Key), html.EscapeString(l.Label)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</select></fieldset>
<button class="btn-begin" type="submit">Begin Game</button>
</form>
<div id="game"></div>
</div>
</body>
</html>`)
		return err
	})
}

// DoorView is shown after /start: the opener scene is not fetched yet, the
// player has to open the door first.
func DoorView() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div class="door-scene">
<p>You stand in front of Harvey Specter's office.</p>
<button class="btn-door" hx-post="/door" hx-target="#game" hx-swap="innerHTML">Open the door</button>
</div>`)
		return err
	})
}

// GameView renders the whole playable area from a controller snapshot.
func GameView(v game.View) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		status := GetScoreStatus(v.Hireability)
		if _, err := fmt.Fprintf(w, `<div class="game-area">
<div class="game-header">
<button class="btn-restart" hx-post="/restart" hx-target="#game" hx-swap="innerHTML">Start Over</button>
<span class="step-count">Current Step: %d</span>
<button class="btn-exit" hx-post="/exit" hx-target="#exit-dialog" hx-swap="innerHTML">Leave</button>
<button class="btn-logs" hx-get="/logs" hx-target="#log-modal" hx-swap="innerHTML">Logs</button>
<div class="score-bar" title="%s">
<label>Chances of getting hired</label>
<progress max="100" value="%d" style="accent-color: %s"></progress>
<span>%d%%</span>
</div>
</div>
<div id="exit-dialog"></div>
<div id="log-modal"></div>`,
			v.Steps, html.EscapeString(status.Description), v.Hireability, status.Color, v.Hireability); err != nil {
			return err
		}

		if v.Error != "" {
			if _, err := fmt.Fprintf(w, `<p class="error">Error: %s</p>`, html.EscapeString(v.Error)); err != nil {
				return err
			}
		}

		if err := backlog(w, v.Backlog); err != nil {
			return err
		}

		switch v.Phase {
		case game.PhasePlaying:
			if err := stepSection(w, v); err != nil {
				return err
			}
		case game.PhaseConcluding:
			if _, err := io.WriteString(w, `<p class="loading">Harvey is making up his mind...</p>`); err != nil {
				return err
			}
		case game.PhaseOver:
			if err := conclusion(w, v); err != nil {
				return err
			}
		}

		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

// ExitDialog renders the advisory leave-confirmation dialog.
func ExitDialog(confirm game.ExitConfirmation) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div class="exit-dialog">
<h3>%s</h3>
<p>%s</p>
<a class="btn-leave" href="/">Leave</a>
<button class="btn-stay" onclick="this.closest('.exit-dialog').remove()">Stay</button>
</div>`, html.EscapeString(confirm.Title), html.EscapeString(confirm.Body))
		return err
	})
}

// LogsView renders the diagnostic log with mm:ss offsets from the first
// entry.
func LogsView(entries []game.LogEntry) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<div class="log-modal"><h3>Game Log</h3>`); err != nil {
			return err
		}
		if len(entries) == 0 {
			if _, err := io.WriteString(w, `<p>No logs yet</p></div>`); err != nil {
				return err
			}
			return nil
		}
		first := entries[0].Timestamp
		for _, e := range entries {
			if _, err := fmt.Fprintf(w, `<div class="log-line log-%s"><span class="log-time">%s</span> <span>%s</span></div>`,
				html.EscapeString(e.Type), Elapsed(first, e.Timestamp), html.EscapeString(e.Text)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `<a class="btn-download" href="/download">Download transcript</a></div>`)
		return err
	})
}

// ArchiveView lists archived games, newest first. Each row links to the
// game's archived log.
func ArchiveView(games []store.ArchivedGame) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<div class="archive"><h3>Finished Games</h3>`); err != nil {
			return err
		}
		if len(games) == 0 {
			_, err := io.WriteString(w, `<p>No finished games yet</p></div>`)
			return err
		}
		if _, err := io.WriteString(w, `<table class="archive-table">
<tr><th>Game</th><th>Difficulty</th><th>Language</th><th>Score</th><th>Outcome</th><th>Finished</th></tr>`); err != nil {
			return err
		}
		for _, g := range games {
			if _, err := fmt.Fprintf(w,
				`<tr><td><a href="/games?id=%d">#%d</a></td><td>%s</td><td>%s</td><td>%d</td><td>%s</td><td>%s</td></tr>`,
				g.ID, g.ID,
				html.EscapeString(g.Difficulty), html.EscapeString(g.Language),
				g.Hireability, html.EscapeString(g.Outcome),
				g.FinishedAt.Format("2006-01-02 15:04")); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</table></div>`)
		return err
	})
}

// backlog writes the resolved turns. Model text may carry the allowed HTML
// subset, so it is sanitized rather than escaped; player text is always
// plain.
func backlog(w io.Writer, messages []game.Message) error {
	if _, err := io.WriteString(w, `<div class="game-body">`); err != nil {
		return err
	}
	for _, m := range messages {
		switch m.Type {
		case game.LogUser:
			if _, err := fmt.Fprintf(w, `<p class="msg-user">%s</p>`, html.EscapeString(m.Text)); err != nil {
				return err
			}
		default:
			if _, err := fmt.Fprintf(w, `<p class="msg-model">%s</p>`, sanitize.Narrative(m.Text)); err != nil {
				return err
			}
		}
	}
	_, err := io.WriteString(w, `</div>`)
	return err
}

func stepSection(w io.Writer, v game.View) error {
	if v.Loading || v.Step == nil {
		_, err := io.WriteString(w, `<p class="loading">...</p>`)
		return err
	}
	if _, err := fmt.Fprintf(w, `<p class="step-story">%s</p><div class="choices">`, sanitize.Narrative(v.Step.Story)); err != nil {
		return err
	}
	for i, c := range v.Step.Choices {
		if _, err := fmt.Fprintf(w, `<button class="choice" hx-post="/choice" hx-vals='{"choice": "%d"}' hx-target="#game" hx-swap="innerHTML">%s</button>`,
			i+1, html.EscapeString(c.Text)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `</div>
<form class="respond-form" hx-post="/respond" hx-target="#game" hx-swap="innerHTML">
<textarea name="text" rows="1" placeholder="Type a response..."></textarea>
<button type="submit">Send</button>
</form>`)
	return err
}

func conclusion(w io.Writer, v game.View) error {
	if v.Outcome == "" {
		// Forced over by a fatal step failure; no verdict to show.
		_, err := io.WriteString(w, `<button class="btn-restart" hx-post="/restart" hx-target="#game" hx-swap="innerHTML">Play Again</button>`)
		return err
	}
	_, err := fmt.Fprintf(w, `<div class="conclusion">
<p class="conclusion-title">Interview Concluded!</p>
<p>%s</p>
<p class="outcome">Outcome: %s</p>
<button class="btn-restart" hx-post="/restart" hx-target="#game" hx-swap="innerHTML">Play Again</button>
</div>`, sanitize.Narrative(v.Conclusion), html.EscapeString(string(v.Outcome)))
	return err
}
