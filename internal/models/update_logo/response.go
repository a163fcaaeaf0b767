package models

import "time"

type UpdateLogoResponse struct {
	LogoURL   string    `json:"logo_url"`
	UpdatedAt time.Time `json:"updated_at"`
	Message   string    `json:"message"`
}
