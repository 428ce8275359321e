package model

// SearchResponse mirrors the top-level upstream search JSON response.
type SearchResponse struct {
	Listings         []Listing `json:"listings"`
	TotalResultCount int       `json:"totalResultCount"`
}

// Listing mirrors a single upstream search result. Listings are ephemeral:
// fetched fresh on every check and never persisted directly.
type Listing struct {
	ItemID      string     `json:"itemId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	PriceInfo   *PriceInfo `json:"priceInfo"`
	ImageURLs   []string   `json:"imageUrls"`
	VipURL      string     `json:"vipUrl"`
	Date        string     `json:"date"`
}

// PriceInfo mirrors the upstream price block. Prices come in minor units.
type PriceInfo struct {
	PriceCents *int64 `json:"priceCents"`
	PriceType  string `json:"priceType"`
}

// PriceEuros converts the minor-unit price to euros, nil when unpriced.
func (l Listing) PriceEuros() *float64 {
	if l.PriceInfo == nil || l.PriceInfo.PriceCents == nil {
		return nil
	}
	euros := float64(*l.PriceInfo.PriceCents) / 100.0
	return &euros
}

// FirstImageURL returns the first image URL, or "" when there is none.
func (l Listing) FirstImageURL() string {
	if len(l.ImageURLs) == 0 {
		return ""
	}
	return l.ImageURLs[0]
}
