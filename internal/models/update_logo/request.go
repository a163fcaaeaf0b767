package models

type UpdateLogoRequest struct {
	LogoURL string `json:"logo_url" binding:"required"`
}
