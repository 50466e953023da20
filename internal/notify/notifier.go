// Package notify defines the notification interface and implementations
// for run summary delivery.
package notify

import (
	"context"

	domain "github.com/donaldgifford/ebay-autolister/pkg/types"
)

// Notifier defines the interface for delivering a completed run summary.
type Notifier interface {
	SendSummary(ctx context.Context, summary *domain.RunSummary) error
}
