package dto

import "github.com/polkiloo/hubsai/internal/domain/model"

type TabRequest struct {
	Tab string `json:"tab" binding:"required"`
}

type TransferRequest struct {
	ToAddress string `json:"toAddress" binding:"required"`
}

type TransferResponse struct {
	NFTID     string `json:"nftId"`
	ToAddress string `json:"toAddress"`
}

// OrderLookupResponse reports the mocked order found for an email.
type OrderLookupResponse struct {
	Found bool                `json:"found"`
	Order *model.ShopifyOrder `json:"order,omitempty"`
}

type EventRequest struct {
	Event      string         `json:"event" binding:"required"`
	Properties map[string]any `json:"properties"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
