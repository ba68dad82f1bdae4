package dto

import "time"

// WalletResponse is the full claim wallet returned to its owner.
type WalletResponse struct {
	Address           string    `json:"address"`
	PrivateKeyEncoded string    `json:"privateKeyEncoded"`
	Mnemonic          string    `json:"mnemonic"`
	UserID            string    `json:"userId"`
	CreatedAt         time.Time `json:"createdAt"`
}

type WalletAddressResponse struct {
	Address string `json:"address"`
}

type SetupCompleteResponse struct {
	WalletSetupComplete bool `json:"walletSetupComplete"`
}
