package model

import "time"

// User represents a signed up HubsAI customer.
type User struct {
	ID               string        `json:"id"`
	Email            string        `json:"email"`
	Name             string        `json:"name"`
	CreatedAt        time.Time     `json:"createdAt"`
	ShopifyOrderID   string        `json:"shopifyOrderId,omitempty"`
	ShopifyOrderData *ShopifyOrder `json:"shopifyOrderData,omitempty"`
}

// Credential pairs a user with the hash of the password chosen at sign-up.
type Credential struct {
	User         User   `json:"user"`
	PasswordHash string `json:"passwordHash"`
}

// Profile holds the onboarding profile form.
type Profile struct {
	DisplayName string   `json:"displayName,omitempty"`
	Username    string   `json:"username,omitempty"`
	Bio         string   `json:"bio,omitempty"`
	AvatarURL   string   `json:"avatarUrl,omitempty"`
	Interests   []string `json:"interests,omitempty"`
}

// Merge overlays non-empty fields of other onto p.
func (p Profile) Merge(other Profile) Profile {
	if other.DisplayName != "" {
		p.DisplayName = other.DisplayName
	}
	if other.Username != "" {
		p.Username = other.Username
	}
	if other.Bio != "" {
		p.Bio = other.Bio
	}
	if other.AvatarURL != "" {
		p.AvatarURL = other.AvatarURL
	}
	if len(other.Interests) > 0 {
		p.Interests = append([]string(nil), other.Interests...)
	}
	return p
}

// IsZero reports whether no profile field is set.
func (p Profile) IsZero() bool {
	return p.DisplayName == "" && p.Username == "" && p.Bio == "" && p.AvatarURL == "" && len(p.Interests) == 0
}
