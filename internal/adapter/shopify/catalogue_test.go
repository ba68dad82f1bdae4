package shopify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polkiloo/hubsai/internal/domain/model"
)

func TestLookupIsCaseInsensitive(t *testing.T) {
	c := NewCatalogue(0)

	order, err := c.Lookup(context.Background(), "  DEMO@HubsAI.io ")
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, DemoEmail, order.Email)
	assert.NotEmpty(t, order.EligibleItems())
}

func TestLookupMissReturnsNil(t *testing.T) {
	order, err := NewCatalogue(0).Lookup(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, order)
}

func TestLookupReturnsCopies(t *testing.T) {
	c := NewCatalogue(0)
	first, _ := c.Lookup(context.Background(), DemoEmail)
	first.LineItems[0].Title = "mutated"

	second, _ := c.Lookup(context.Background(), DemoEmail)
	assert.NotEqual(t, "mutated", second.LineItems[0].Title)
}

func TestLookupWaitsForDelay(t *testing.T) {
	c := NewCatalogueWith(30*time.Millisecond, model.ShopifyOrder{ID: "o", Email: "x@y.z"})

	start := time.Now()
	order, err := c.Lookup(context.Background(), "x@y.z")
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestLookupHonoursCancellation(t *testing.T) {
	c := NewCatalogue(time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := c.Lookup(ctx, DemoEmail)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
