package models

// LoginRequest defines the structure for login requests
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the signed session token back to the dashboard
type LoginResponse struct {
	Token string     `json:"token"`
	User  *AdminUser `json:"user"`
}
