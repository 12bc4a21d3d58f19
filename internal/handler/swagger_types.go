package handler

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"jane@example.com"`
	Password string `json:"password" binding:"required" example:"securepassword123"`
}

// RefreshRequest represents the token refresh request body.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// ProviderTokenPayload is the token obtained by the client from the provider SDK.
type ProviderTokenPayload struct {
	ClientID    string `json:"client_id" example:"123.apps.googleusercontent.com"`
	IDToken     string `json:"id_token,omitempty" example:"eyJhbGciOiJSUzI1NiIs..."`
	AccessToken string `json:"access_token,omitempty" example:"ya29.a0Af..."`
}

// ProviderTokenRequest represents the provider token request body.
type ProviderTokenRequest struct {
	Provider string               `json:"provider" example:"google"`
	Process  string               `json:"process" enums:"login,connect" example:"login"`
	Token    ProviderTokenPayload `json:"token"`
}

// ProviderSignupRequest represents the signup form completing a social login.
type ProviderSignupRequest struct {
	Email    string `json:"email,omitempty" example:"jane@example.com"`
	Username string `json:"username,omitempty" example:"jane"`
}

// DisconnectRequest represents the disconnect request body.
type DisconnectRequest struct {
	Provider string `json:"provider" example:"google"`
	Account  string `json:"account" example:"109876543210"`
}
