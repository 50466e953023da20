package ebay

// Wire shapes for the Sell Inventory API. Field names follow the API's
// camelCase JSON exactly.

// Product carries the descriptive attributes of an inventory item.
type Product struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Aspects     map[string][]string `json:"aspects,omitempty"`
	Brand       string              `json:"brand,omitempty"`
	MPN         string              `json:"mpn,omitempty"`
	ImageUrls   []string            `json:"imageUrls,omitempty"`
}

// ShipToLocationAvailability is the sellable quantity.
type ShipToLocationAvailability struct {
	Quantity int `json:"quantity"`
}

// Availability wraps the ship-to-location quantity.
type Availability struct {
	ShipToLocationAvailability ShipToLocationAvailability `json:"shipToLocationAvailability"`
}

// PackageDimensions is the package size in the stated unit.
type PackageDimensions struct {
	Height float64 `json:"height"`
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Unit   string  `json:"unit"`
}

// PackageWeight is the package weight in the stated unit.
type PackageWeight struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// PackageWeightAndSize combines package dimensions and weight.
type PackageWeightAndSize struct {
	Dimensions PackageDimensions `json:"dimensions"`
	Weight     PackageWeight     `json:"weight"`
}

// InventoryItem is the read shape returned by GetInventoryItem.
type InventoryItem struct {
	SKU          string       `json:"sku"`
	Condition    string       `json:"condition"`
	Product      Product      `json:"product"`
	Availability Availability `json:"availability"`
}

type bulkInventoryEntry struct {
	SKU                  string               `json:"sku"`
	Condition            string               `json:"condition"`
	Product              Product              `json:"product"`
	Availability         Availability         `json:"availability"`
	PackageWeightAndSize PackageWeightAndSize `json:"packageWeightAndSize"`
}

type bulkInventoryRequest struct {
	Requests []bulkInventoryEntry `json:"requests"`
}

type apiErrorDetail struct {
	ErrorID int    `json:"errorId"`
	Message string `json:"message"`
}

type bulkItemResponse struct {
	SKU        string           `json:"sku"`
	StatusCode int              `json:"statusCode"`
	Errors     []apiErrorDetail `json:"errors,omitempty"`
}

type bulkInventoryResponse struct {
	Responses []bulkItemResponse `json:"responses"`
}

type offerPrice struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type pricingSummary struct {
	Price offerPrice `json:"price"`
}

type listingPolicies struct {
	FulfillmentPolicyID string `json:"fulfillmentPolicyId,omitempty"`
	PaymentPolicyID     string `json:"paymentPolicyId,omitempty"`
	ReturnPolicyID      string `json:"returnPolicyId,omitempty"`
}

type offerRequest struct {
	SKU                 string          `json:"sku"`
	MarketplaceID       string          `json:"marketplaceId"`
	Format              string          `json:"format"`
	AvailableQuantity   int             `json:"availableQuantity"`
	CategoryID          string          `json:"categoryId"`
	PricingSummary      pricingSummary  `json:"pricingSummary"`
	ListingPolicies     listingPolicies `json:"listingPolicies"`
	MerchantLocationKey string          `json:"merchantLocationKey,omitempty"`
}

type offerResponse struct {
	OfferID string `json:"offerId"`
}

type publishResponse struct {
	ListingID string `json:"listingId"`
}
