// Package events publishes build completion events to NATS so CI dashboards
// and chat bots can react to watch-mode rebuilds.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/bookbuilder/internal/report"
)

// BuildEvent is the wire payload published per finished build.
type BuildEvent struct {
	BuildID   string         `json:"build_id"`
	Outcome   report.Outcome `json:"outcome"`
	Errors    int            `json:"errors"`
	Warnings  int            `json:"warnings"`
	Documents int            `json:"documents"`
	Renders   int            `json:"renders"`
	Duration  time.Duration  `json:"duration"`
	Timestamp time.Time      `json:"timestamp"`
}

// Publisher sends build events over a NATS connection.
type Publisher struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
}

// Connect dials the NATS server. The connection reconnects automatically;
// publishes while disconnected are buffered by the client.
func Connect(url, subject string, logger *slog.Logger) (*Publisher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := nats.Connect(url,
		nats.Name("bookbuilder"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS %s: %w", url, err)
	}

	logger.Info("connected to NATS", slog.String("url", url), slog.String("subject", subject))
	return &Publisher{conn: conn, subject: subject, logger: logger}, nil
}

// PublishReport sends a summary of a finished build. Publish failures are
// logged, not returned: event delivery never fails a build.
func (p *Publisher) PublishReport(r *report.BuildReport) {
	event := BuildEvent{
		BuildID:   r.BuildID,
		Outcome:   r.Outcome,
		Errors:    r.ErrorCount(),
		Warnings:  r.WarningCount(),
		Documents: r.Documents,
		Renders:   len(r.Renders),
		Duration:  r.Duration(),
		Timestamp: time.Now(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("marshal build event", slog.Any("error", err))
		return
	}
	if err := p.conn.Publish(p.subject, payload); err != nil {
		p.logger.Warn("publish build event", slog.Any("error", err))
	}
}

// Close flushes pending messages and drops the connection.
func (p *Publisher) Close() {
	_ = p.conn.Flush()
	p.conn.Close()
}
