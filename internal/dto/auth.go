package dto

// ObtainRequest is the JSON body for POST /auth/obtain.
type ObtainRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest is the JSON body for POST /auth/refresh.
type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// VerifyRequest is the JSON body for POST /auth/verify.
type VerifyRequest struct {
	Token string `json:"token" binding:"required"`
}

// TokenResponse carries an access/refresh pair.
type TokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}
