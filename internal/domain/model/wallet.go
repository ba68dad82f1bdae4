package model

import "time"

// ClaimWallet is the keypair derived client-side for a user.
type ClaimWallet struct {
	Address           string    `json:"address"`
	PrivateKeyEncoded string    `json:"privateKeyEncoded"`
	Mnemonic          string    `json:"mnemonic"`
	UserID            string    `json:"userId"`
	CreatedAt         time.Time `json:"createdAt"`
}

// ExternalWallet captures the two signals exposed by a browser wallet adapter.
type ExternalWallet struct {
	Connected bool   `json:"connected"`
	PublicKey string `json:"publicKey,omitempty"`
}
