// Package dto contains Data Transfer Objects for API request and response structures
package dto

type AdminDTO struct {
	ID          uint    `json:"id" example:"1"`
	UUID        string  `json:"uuid" example:"f47ac10b-58cc-4372-a567-0e02b2c3d479"`
	Username    string  `json:"username" example:"admin"`
	IsActive    *bool   `json:"is_active" example:"true"`
	CreatedAt   string  `json:"created_at" example:"2024-01-15T10:30:00Z"`
	LastLoginAt *string `json:"last_login_at,omitempty" example:"2024-01-15T10:30:00Z"`
}

type AdminSessionDTO struct {
	AccessToken  string `json:"access_token" example:"jwt"`
	RefreshToken string `json:"refresh_token" example:"jwt"`
	ExpiresIn    int    `json:"expires_in" example:"3600"`
	TokenType    string `json:"token_type" example:"Bearer"`
	CreatedAt    string `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

// AdminLoginRequest carries admin credentials
type AdminLoginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=255"`
	Password string `json:"password" validate:"required,min=8,max=100"`
}

type AdminLoginResponse struct {
	Admin   AdminDTO        `json:"admin"`
	Session AdminSessionDTO `json:"session"`
}

// AdminRefreshRequest exchanges a refresh token for a new token pair
type AdminRefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}
