package entity

type LoginRequest struct {
	LoginId  string `json:"loginId"`
	Password string `json:"password"`
}

type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"` // Only in JSON response, not cookie
	Staff        Staff  `json:"staff"`
}

type TokenClaims struct {
	StaffId int64  `json:"staffId"`
	LoginId string `json:"loginId"`
	Name    string `json:"name"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}
