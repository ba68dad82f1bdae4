package model

// NFT is a reward token shown on the dashboard.
type NFT struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Image         string `json:"image,omitempty"`
	Collection    string `json:"collection"`
	Staked        bool   `json:"staked"`
	SourceOrderID string `json:"sourceOrderId,omitempty"`
}
