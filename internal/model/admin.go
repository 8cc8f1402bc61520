package model

// AdminLoginRequest is the payload for admin login.
type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// AdminLoginResponse is returned on successful admin login.
type AdminLoginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
}
