package model

import "time"

// LineItem is a single product line of a Shopify order.
type LineItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Quantity    int    `json:"quantity"`
	Price       string `json:"price"`
	NFTEligible bool   `json:"nftEligible"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// ShopifyOrder is the mocked e-commerce order used to grant NFT rewards.
type ShopifyOrder struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	CustomerName string     `json:"customerName"`
	OrderNumber  string     `json:"orderNumber"`
	TotalPrice   string     `json:"totalPrice"`
	Currency     string     `json:"currency"`
	LineItems    []LineItem `json:"lineItems"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// EligibleItems returns line items that grant an NFT.
func (o *ShopifyOrder) EligibleItems() []LineItem {
	if o == nil {
		return nil
	}
	var items []LineItem
	for _, item := range o.LineItems {
		if item.NFTEligible {
			items = append(items, item)
		}
	}
	return items
}
