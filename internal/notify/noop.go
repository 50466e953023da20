package notify

import (
	"context"
	"log/slog"

	domain "github.com/donaldgifford/ebay-autolister/pkg/types"
)

// NoOpNotifier implements Notifier by logging discarded summaries. It is
// used when no webhook backend is configured.
type NoOpNotifier struct {
	log *slog.Logger
}

// NewNoOpNotifier creates a notifier that discards summaries with a log
// message.
func NewNoOpNotifier(log *slog.Logger) *NoOpNotifier {
	return &NoOpNotifier{log: log}
}

// SendSummary logs and discards a run summary.
func (n *NoOpNotifier) SendSummary(_ context.Context, summary *domain.RunSummary) error {
	n.log.Debug("summary notification discarded (no backend configured)",
		"run_id", summary.RunID,
		"attempted", summary.Attempted,
		"failed", len(summary.Failures),
	)
	return nil
}
