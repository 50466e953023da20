package pipeline_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/ebay-autolister/internal/ebay"
	"github.com/donaldgifford/ebay-autolister/internal/pipeline"
	domain "github.com/donaldgifford/ebay-autolister/pkg/types"
)

func TestStateMachine_Advance(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	m := pipeline.NewStateMachine(client, testPolicy(3))

	res, err := m.Advance(context.Background(), records(1)[0])
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPublished, res.State.Status)
	assert.Equal(t, "offer-SKU-001", res.OfferID)
	assert.Equal(t, "listing-offer-SKU-001", res.ListingID)
	assert.Equal(t, 1, client.offerCalls)
	assert.Equal(t, 1, client.publishCalls)
}

func TestStateMachine_OfferFailureSkipsPublish(t *testing.T) {
	t.Parallel()

	client := &fakeClient{
		offerFn: func(int, domain.ProductRecord) (string, error) {
			return "", &ebay.APIError{Operation: "create_offer", StatusCode: 400, Body: "no payment policy"}
		},
	}
	m := pipeline.NewStateMachine(client, testPolicy(3))

	res, err := m.Advance(context.Background(), records(1)[0])
	require.NoError(t, err)

	// A record failing at offer creation never attempts publish and keeps
	// the offer phase in its terminal state.
	assert.Equal(t, domain.StatusFailed, res.State.Status)
	assert.Equal(t, domain.PhaseOffer, res.State.FailedPhase)
	assert.Equal(t, 1, client.offerCalls)
	assert.Equal(t, 0, client.publishCalls)
}

func TestStateMachine_OfferRetriesExhausted(t *testing.T) {
	t.Parallel()

	client := &fakeClient{
		offerFn: func(int, domain.ProductRecord) (string, error) {
			return "", &ebay.APIError{Operation: "create_offer", StatusCode: 503}
		},
	}
	m := pipeline.NewStateMachine(client, testPolicy(3))

	res, err := m.Advance(context.Background(), records(1)[0])
	require.NoError(t, err)

	assert.Equal(t, 3, client.offerCalls)
	assert.Equal(t, domain.StatusFailed, res.State.Status)
	assert.Equal(t, domain.PhaseOffer, res.State.FailedPhase)
	assert.Equal(t, "retries_exhausted", res.State.Reason)
}

func TestStateMachine_PublishFailureKeepsOffer(t *testing.T) {
	t.Parallel()

	client := &fakeClient{
		publishFn: func(int, string) (string, error) {
			return "", &ebay.APIError{Operation: "publish_offer", StatusCode: 400, Body: "missing location"}
		},
	}
	m := pipeline.NewStateMachine(client, testPolicy(3))

	res, err := m.Advance(context.Background(), records(1)[0])
	require.NoError(t, err)

	assert.Equal(t, domain.StatusFailed, res.State.Status)
	assert.Equal(t, domain.PhasePublish, res.State.FailedPhase)
	assert.Equal(t, "offer-SKU-001", res.OfferID)
	assert.Empty(t, res.ListingID)
}

func TestStateMachine_FatalAuthPropagates(t *testing.T) {
	t.Parallel()

	client := &fakeClient{
		offerFn: func(int, domain.ProductRecord) (string, error) {
			return "", &ebay.AuthError{Err: context.DeadlineExceeded}
		},
	}
	m := pipeline.NewStateMachine(client, testPolicy(3))

	res, err := m.Advance(context.Background(), records(1)[0])
	require.Error(t, err)
	assert.True(t, ebay.IsFatal(err))
	assert.Equal(t, domain.StatusInventoryCreated, res.State.Status)
}
