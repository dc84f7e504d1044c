package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"PipSentinel/internal/scheduler"
)

// FormatRunReport formats a batch result into a Telegram message.
func FormatRunReport(res *scheduler.RunResult) string {
	var b strings.Builder

	icon := "📊"
	if res.Failed() {
		icon = "⚠️"
	}
	b.WriteString(fmt.Sprintf("%s <b>PipSentinel run</b> | %s\n", icon, res.StartedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Output: <code>%s</code>\n", html.EscapeString(res.Folder)))
	b.WriteString(fmt.Sprintf("Duration: %s\n\n", res.FinishedAt.Sub(res.StartedAt).Round(time.Millisecond)))

	for _, p := range res.Pairs {
		if p.Status != scheduler.StatusOK {
			b.WriteString(fmt.Sprintf("❌ %s: %s\n", p.Pair, html.EscapeString(p.Error)))
			continue
		}
		b.WriteString(fmt.Sprintf("✅ %s: %d days", p.Pair, p.Days))
		if p.Skipped > 0 {
			b.WriteString(fmt.Sprintf(", %d skipped", p.Skipped))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Runner is the part of the scheduler that chat commands drive.
type Runner interface {
	LastRun() *scheduler.RunResult
	RunNow()
}

// Commands returns the chat command handler for r.
func Commands(r Runner) CommandHandler {
	return func(command string) string {
		switch command {
		case "/status":
			last := r.LastRun()
			if last == nil {
				return "No run has finished yet."
			}
			return FormatRunReport(last)
		case "/run":
			go r.RunNow()
			return "🔄 Batch run started."
		default:
			return "Available commands:\n• /status\n• /run"
		}
	}
}
