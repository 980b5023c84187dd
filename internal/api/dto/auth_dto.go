package dto

// LoginRequest accepts either email or phone as the login identifier.
type LoginRequest struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Login returns whichever identifier the client supplied.
func (r LoginRequest) Login() string {
	if r.Email != "" {
		return r.Email
	}
	return r.Phone
}

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// TokenResponse is returned by login and register.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

// MeResponse describes the authenticated account.
type MeResponse struct {
	ID           string  `json:"id"`
	Role         string  `json:"role"`
	FullName     string  `json:"full_name"`
	DirectorCode *string `json:"director_code,omitempty"`
}
