// Package shopify serves the mocked e-commerce order catalogue used to
// grant NFT rewards at sign-up.
package shopify

import (
	"context"
	"strings"
	"time"

	"github.com/polkiloo/hubsai/internal/domain/model"
)

// DemoEmail owns the demo order with an NFT-eligible line item.
const DemoEmail = "demo@hubsai.io"

// Catalogue looks orders up by customer email after a simulated delay.
type Catalogue struct {
	orders []model.ShopifyOrder
	delay  time.Duration
}

// NewCatalogue returns the fixed demo catalogue.
func NewCatalogue(delay time.Duration) *Catalogue {
	return &Catalogue{orders: demoOrders(), delay: delay}
}

// NewCatalogueWith serves the given orders.
func NewCatalogueWith(delay time.Duration, orders ...model.ShopifyOrder) *Catalogue {
	return &Catalogue{orders: orders, delay: delay}
}

// Lookup returns the first order whose email matches case-insensitively, or
// nil. It returns ctx.Err() when the context ends during the delay.
func (c *Catalogue) Lookup(ctx context.Context, email string) (*model.ShopifyOrder, error) {
	if c.delay > 0 {
		timer := time.NewTimer(c.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	email = strings.TrimSpace(email)
	for i := range c.orders {
		if strings.EqualFold(c.orders[i].Email, email) {
			order := c.orders[i]
			order.LineItems = append([]model.LineItem(nil), order.LineItems...)
			return &order, nil
		}
	}
	return nil, nil
}

func demoOrders() []model.ShopifyOrder {
	placed := time.Date(2024, time.November, 12, 15, 4, 5, 0, time.UTC)
	return []model.ShopifyOrder{
		{
			ID:           "gid://shopify/Order/5521000001",
			Email:        DemoEmail,
			CustomerName: "Demo Customer",
			OrderNumber:  "#1001",
			TotalPrice:   "249.00",
			Currency:     "USD",
			CreatedAt:    placed,
			LineItems: []model.LineItem{
				{ID: "li-1001-1", Title: "HubsAI Genesis Sneaker", Quantity: 1, Price: "199.00", NFTEligible: true, ImageURL: "/images/nft/genesis-sneaker.png"},
				{ID: "li-1001-2", Title: "Care Kit", Quantity: 1, Price: "50.00"},
			},
		},
		{
			ID:           "gid://shopify/Order/5521000002",
			Email:        "collector@hubsai.io",
			CustomerName: "Avid Collector",
			OrderNumber:  "#1002",
			TotalPrice:   "420.00",
			Currency:     "USD",
			CreatedAt:    placed.Add(48 * time.Hour),
			LineItems: []model.LineItem{
				{ID: "li-1002-1", Title: "HubsAI Limited Jacket", Quantity: 1, Price: "320.00", NFTEligible: true, ImageURL: "/images/nft/limited-jacket.png"},
				{ID: "li-1002-2", Title: "HubsAI Cap", Quantity: 2, Price: "50.00", NFTEligible: true, ImageURL: "/images/nft/cap.png"},
			},
		},
		{
			ID:           "gid://shopify/Order/5521000003",
			Email:        "shopper@example.com",
			CustomerName: "Casual Shopper",
			OrderNumber:  "#1003",
			TotalPrice:   "25.00",
			Currency:     "USD",
			CreatedAt:    placed.Add(72 * time.Hour),
			LineItems: []model.LineItem{
				{ID: "li-1003-1", Title: "Sticker Pack", Quantity: 1, Price: "25.00"},
			},
		},
	}
}
