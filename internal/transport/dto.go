package transport

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshTokenRequest carries the (possibly expired) access token. RefreshToken
// may be omitted when the refreshToken cookie is present.
type RefreshTokenRequest struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

type AuthTokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

type ClientRequest struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Balance float64 `json:"balance"`
}

type TagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type UpdateRateRequest struct {
	Value float64 `json:"value"`
}

type SearchResponse[T any] struct {
	Query string `json:"query"`
	Total int    `json:"total"`
	Items []T    `json:"items"`
}
