package dto

import "github.com/polkiloo/hubsai/internal/domain/model"

type StartRequest struct {
	SkipLogin bool `json:"skipLogin"`
}

// NextRequest optionally carries profile form data.
type NextRequest struct {
	Profile *model.Profile `json:"profile,omitempty"`
}

// ExternalWalletRequest mirrors the wallet adapter signals.
type ExternalWalletRequest struct {
	Connected bool   `json:"connected"`
	PublicKey string `json:"publicKey"`
}
