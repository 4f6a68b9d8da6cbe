package models

//nolint:gosec // field names, not credentials
const (
	HeaderAuthorization = "Authorization"
	BearerPrefix        = "Bearer "

	MwUserIDKey = "userID"
	MwTokenKey  = "token"
)

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserMetadata struct {
	UserAgent string
	IPAddress string
}
