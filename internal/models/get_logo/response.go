package models

import "time"

// The field names match the logo.updated broadcast payload so browsers parse
// one shape whether the logo arrives by request or by push.
type GetLogoResponse struct {
	LogoURL   string    `json:"logo_url"`
	UpdatedAt time.Time `json:"updated_at"`
}
