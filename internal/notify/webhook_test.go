package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/ebay-autolister/pkg/types"
)

func testSummary() *domain.RunSummary {
	return &domain.RunSummary{
		RunID:            "run-123",
		File:             "products.csv",
		Attempted:        4,
		InventoryCreated: 3,
		Failures: []domain.ItemFailure{
			{SKU: "SKU-4", Phase: domain.PhaseInventory, Reason: "retries_exhausted"},
		},
	}
}

func TestWebhookNotifier_SendSummary(t *testing.T) {
	t.Parallel()

	var gotBody []byte
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, WithHeaders(map[string]string{
		"Authorization": "Bearer hook-token",
	}))

	require.NoError(t, n.SendSummary(context.Background(), testSummary()))
	assert.Equal(t, "Bearer hook-token", gotAuth)

	var payload summaryPayload
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	assert.Equal(t, "run_completed", payload.Event)
	require.NotNil(t, payload.Summary)
	assert.Equal(t, "run-123", payload.Summary.RunID)
	assert.Equal(t, 3, payload.Summary.InventoryCreated)
	require.Len(t, payload.Summary.Failures, 1)
	assert.Equal(t, "SKU-4", payload.Summary.Failures[0].SKU)
}

func TestWebhookNotifier_ServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream broken"))
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL)

	err := n.SendSummary(context.Background(), testSummary())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "upstream broken")
}

func TestNoOpNotifier_SendSummary(t *testing.T) {
	t.Parallel()

	n := NewNoOpNotifier(slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.NoError(t, n.SendSummary(context.Background(), testSummary()))
}
