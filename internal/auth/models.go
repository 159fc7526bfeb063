// Package auth issues access tokens in exchange for credentials.
package auth

// LoginRequest carries the credentials for password login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Token is the issued bearer credential.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}
