package ebay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/donaldgifford/ebay-autolister/internal/metrics"
	domain "github.com/donaldgifford/ebay-autolister/pkg/types"
)

const (
	defaultBaseURL     = "https://api.ebay.com/sell/inventory/v1"
	defaultMarketplace = "EBAY_US"
	defaultCurrency    = "USD"

	// maxImages is the Sell API's per-item image limit.
	maxImages = 12
)

// ListingPolicies holds the seller's default policy identifiers applied to
// every created offer.
type ListingPolicies struct {
	FulfillmentPolicyID string
	PaymentPolicyID     string
	ReturnPolicyID      string
	MerchantLocationKey string
}

// SellClient implements InventoryClient against the Sell Inventory API.
// Every call goes through the rate limiter (when set) and the token
// provider before touching the network.
type SellClient struct {
	tokens      TokenProvider
	baseURL     string
	marketplace string
	currency    string
	policies    ListingPolicies
	client      *http.Client
	limiter     *RateLimiter
}

// SellOption configures the SellClient.
type SellOption func(*SellClient)

// WithBaseURL overrides the default Sell Inventory API base URL.
func WithBaseURL(u string) SellOption {
	return func(c *SellClient) {
		c.baseURL = u
	}
}

// WithMarketplace overrides the default marketplace.
func WithMarketplace(m string) SellOption {
	return func(c *SellClient) {
		c.marketplace = m
	}
}

// WithCurrency overrides the default offer currency.
func WithCurrency(cur string) SellOption {
	return func(c *SellClient) {
		c.currency = cur
	}
}

// WithSellHTTPClient overrides the default HTTP client.
func WithSellHTTPClient(hc *http.Client) SellOption {
	return func(c *SellClient) {
		c.client = hc
	}
}

// WithSellRateLimiter injects the rate limiter paced ahead of every call.
func WithSellRateLimiter(r *RateLimiter) SellOption {
	return func(c *SellClient) {
		c.limiter = r
	}
}

// WithListingPolicies sets the default policy identifiers for offers.
func WithListingPolicies(p ListingPolicies) SellOption {
	return func(c *SellClient) {
		c.policies = p
	}
}

// NewSellClient creates a new Sell Inventory API client.
func NewSellClient(tokens TokenProvider, opts ...SellOption) *SellClient {
	c := &SellClient{
		tokens:      tokens,
		baseURL:     defaultBaseURL,
		marketplace: defaultMarketplace,
		currency:    defaultCurrency,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BulkCreateInventoryItems implements InventoryClient.
func (c *SellClient) BulkCreateInventoryItems(
	ctx context.Context,
	records []domain.ProductRecord,
) ([]ItemStatus, error) {
	req := bulkInventoryRequest{
		Requests: make([]bulkInventoryEntry, 0, len(records)),
	}
	for i := range records {
		req.Requests = append(req.Requests, buildInventoryEntry(&records[i]))
	}

	var resp bulkInventoryResponse
	err := c.do(ctx, "bulk_create_inventory", http.MethodPost,
		"/bulk_create_or_replace_inventory_item", req, &resp)
	if err != nil {
		return nil, err
	}

	// Responses are keyed by sku; preserve input order in the result. A
	// sku the API did not echo back is treated as created, matching the
	// endpoint's create-or-replace semantics.
	bySKU := make(map[string]bulkItemResponse, len(resp.Responses))
	for _, r := range resp.Responses {
		bySKU[r.SKU] = r
	}

	statuses := make([]ItemStatus, 0, len(records))
	for i := range records {
		r, ok := bySKU[records[i].SKU]
		if !ok {
			statuses = append(statuses, ItemStatus{
				SKU:        records[i].SKU,
				StatusCode: http.StatusOK,
			})
			continue
		}
		st := ItemStatus{SKU: r.SKU, StatusCode: r.StatusCode}
		for _, e := range r.Errors {
			st.Errors = append(st.Errors, e.Message)
		}
		statuses = append(statuses, st)
	}

	return statuses, nil
}

// GetInventoryItem implements InventoryClient.
func (c *SellClient) GetInventoryItem(
	ctx context.Context,
	sku string,
) (*InventoryItem, error) {
	var item InventoryItem
	err := c.do(ctx, "get_inventory_item", http.MethodGet,
		"/inventory_item/"+url.PathEscape(sku), nil, &item)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateOffer implements InventoryClient.
func (c *SellClient) CreateOffer(
	ctx context.Context,
	rec domain.ProductRecord,
) (string, error) {
	req := offerRequest{
		SKU:               rec.SKU,
		MarketplaceID:     c.marketplace,
		Format:            "FIXED_PRICE",
		AvailableQuantity: rec.Quantity,
		CategoryID:        rec.CategoryID,
		PricingSummary: pricingSummary{
			Price: offerPrice{
				Value:    strconv.FormatFloat(rec.Price, 'f', 2, 64),
				Currency: c.currency,
			},
		},
		ListingPolicies: listingPolicies{
			FulfillmentPolicyID: c.policies.FulfillmentPolicyID,
			PaymentPolicyID:     c.policies.PaymentPolicyID,
			ReturnPolicyID:      c.policies.ReturnPolicyID,
		},
		MerchantLocationKey: c.policies.MerchantLocationKey,
	}

	var resp offerResponse
	if err := c.do(ctx, "create_offer", http.MethodPost, "/offer", req, &resp); err != nil {
		return "", err
	}
	if resp.OfferID == "" {
		return "", fmt.Errorf("create_offer response missing offerId")
	}
	return resp.OfferID, nil
}

// PublishOffer implements InventoryClient.
func (c *SellClient) PublishOffer(
	ctx context.Context,
	offerID string,
) (string, error) {
	var resp publishResponse
	err := c.do(ctx, "publish_offer", http.MethodPost,
		"/offer/"+url.PathEscape(offerID)+"/publish", nil, &resp)
	if err != nil {
		return "", err
	}
	return resp.ListingID, nil
}

// do performs one authenticated, rate-limited API call. Non-2xx responses
// return *APIError; transport failures return the wrapped client error.
func (c *SellClient) do(
	ctx context.Context,
	op, method, path string,
	reqBody, respBody any,
) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("getting auth token: %w", err)
	}

	var body io.Reader = http.NoBody
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("encoding %s request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating %s request: %w", op, err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Language", "en-US")
	req.Header.Set("X-EBAY-C-MARKETPLACE-ID", c.marketplace)

	metrics.APICallsTotal.WithLabelValues(op).Inc()

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.APICallErrorsTotal.WithLabelValues(op).Inc()
		return fmt.Errorf("executing %s request: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.APICallErrorsTotal.WithLabelValues(op).Inc()
		return &APIError{
			Operation:  op,
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}
	}

	if respBody != nil && len(data) > 0 {
		if err := json.Unmarshal(data, respBody); err != nil {
			return fmt.Errorf("parsing %s response: %w", op, err)
		}
	}

	return nil
}

// buildInventoryEntry maps a validated record to the bulk wire shape.
func buildInventoryEntry(rec *domain.ProductRecord) bulkInventoryEntry {
	images := rec.Images
	if len(images) > maxImages {
		images = images[:maxImages]
	}

	mpn := rec.MPN
	if mpn == "" {
		mpn = rec.SKU
	}

	product := Product{
		Title:       rec.Title,
		Description: rec.Description,
		Brand:       rec.Brand,
		MPN:         mpn,
		ImageUrls:   images,
	}
	if rec.Brand != "" {
		product.Aspects = map[string][]string{"Brand": {rec.Brand}}
	}

	return bulkInventoryEntry{
		SKU:       rec.SKU,
		Condition: string(rec.Condition),
		Product:   product,
		Availability: Availability{
			ShipToLocationAvailability: ShipToLocationAvailability{
				Quantity: rec.Quantity,
			},
		},
		PackageWeightAndSize: PackageWeightAndSize{
			Dimensions: PackageDimensions{
				Height: rec.Dimensions.Height,
				Length: rec.Dimensions.Length,
				Width:  rec.Dimensions.Width,
				Unit:   "INCH",
			},
			Weight: PackageWeight{
				Value: rec.Weight,
				Unit:  "POUND",
			},
		},
	}
}
