package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/spotkit/internal/auth"
	"github.com/desertthunder/spotkit/internal/repositories"
)

// StatusView is everything `spotkit status` shows about one client's session.
type StatusView struct {
	ClientID string
	Record   auth.TokenRecord
	Status   *auth.Status // nil when no session is running
	Events   []repositories.RefreshEvent
	Now      time.Time
}

// RenderStatus renders v as a labelled block followed by the refresh history.
func RenderStatus(v StatusView) string {
	now := v.Now
	if now.IsZero() {
		now = time.Now()
	}

	var b strings.Builder
	b.WriteString(styles.title.Render("Spotify session"))
	b.WriteString("\n")

	row := func(label, value string) {
		fmt.Fprintf(&b, "%s %s\n", styles.label.Render(label), value)
	}

	row("Client", v.ClientID)
	if v.Record.Empty() {
		row("Token", styles.error.Render("none stored, run `spotkit auth`"))
		return b.String()
	}

	expires := v.Record.ExpirationTime()
	if v.Record.Expired(now) {
		row("Token", styles.warning.Render("expired "+Since(now, expires)+" ago"))
	} else {
		row("Token", styles.success.Render("valid for "+Since(expires, now)))
	}
	row("Expires", expires.Local().Format(time.DateTime))
	row("Scope", orNone(v.Record.Scope))
	row("Refresh token", present(v.Record.RefreshToken != ""))

	if st := v.Status; st != nil {
		row("Scheduler", st.State.String())
		if !st.NextAttempt.IsZero() {
			row("Next refresh", "in "+Since(st.NextAttempt, now))
		}
		if st.Failures > 0 {
			row("Failures", styles.warning.Render(fmt.Sprintf("%d (%v)", st.Failures, st.LastError)))
		}
		if st.Stale {
			row("Stale", styles.error.Render("yes"))
		}
	}

	if len(v.Events) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.help.Render("Recent refreshes"))
		b.WriteString("\n")
		for _, ev := range v.Events {
			mark := styles.success.Render("✓")
			detail := ""
			if !ev.Succeeded {
				mark = styles.error.Render("✗")
				detail = " " + ev.Error
			}
			fmt.Fprintf(&b, "  %s %s%s\n", mark, ev.OccurredAt.Local().Format(time.DateTime), detail)
		}
	}
	return b.String()
}

// Since formats the non-negative span from b to a rounded to seconds.
func Since(a, b time.Time) string {
	d := max(a.Sub(b), 0)
	return d.Round(time.Second).String()
}

func present(ok bool) string {
	if ok {
		return "present"
	}
	return styles.warning.Render("missing")
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
