package dto

type LoginRequest struct {
	Password string `json:"password"`
}

type LoginResponse struct {
	Level       string `json:"level"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}
