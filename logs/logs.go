// Package logs builds the process-wide slog logger.
//
// On a terminal it writes text lines to stderr. When the process runs as a
// systemd service the stderr handler is dropped and records go to the
// journal instead, with attribute keys mapped to journal-field form.
package logs

import (
	"context"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	slogmulti "github.com/samber/slog-multi"
	slogjournal "github.com/systemd/slog-journal"
)

// New builds the root logger. trace enables debug-level records.
func New(trace bool) *slog.Logger {
	level := slog.LevelInfo
	if trace {
		level = slog.LevelDebug
	}

	var handlers []slog.Handler

	var textHandler slog.Handler
	if !underSystemd() {
		textHandler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})
		handlers = append(handlers, textHandler)
	}

	journalHandler, err := slogjournal.NewHandler(&slogjournal.Options{
		ReplaceGroup: toJournalKey,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			a.Key = toJournalKey(a.Key)
			return a
		},
	})
	if err != nil {
		if textHandler != nil {
			record := slog.NewRecord(time.Now(), slog.LevelWarn, "systemd journal handler unavailable", 0)
			record.Add("error", err)
			_ = textHandler.Handle(context.Background(), record)
		}
	} else {
		handlers = append(handlers, journalHandler)
	}

	// Running as a service with no reachable journal still needs a sink.
	if len(handlers) == 0 {
		handlers = append(handlers, slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}))
	}

	return slog.New(slogmulti.Fanout(handlers...))
}

func underSystemd() bool {
	cgroup, err := cgroupPath()
	if err != nil {
		return false
	}
	return strings.HasSuffix(path.Dir(cgroup), ".service")
}

func cgroupPath() (string, error) {
	content, err := os.ReadFile("/proc/self/cgroup")
	if err != nil {
		return "", err
	}
	parts := strings.SplitN(string(content), ":", 3)
	if len(parts) >= 3 {
		return strings.TrimSpace(parts[2]), nil
	}
	return "", nil
}

func toJournalKey(str string) string {
	str = strings.ToUpper(str)
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, str)
}
