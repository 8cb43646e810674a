package packets

// body for logging in
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type SessionResponse struct {
	Subject string `json:"subject"`
}
