package dto

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Name     string `json:"name"`
	Surnames string `json:"surnames"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// EmailRequest carries an address for the code-request endpoints.
type EmailRequest struct {
	Email string `json:"email"`
}

// CodeConfirmRequest carries an address plus the one-time code received for it.
type CodeConfirmRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// PasswordResetRequest carries the replacement password. Identity comes from
// the password-reset token, not the body.
type PasswordResetRequest struct {
	Password string `json:"password"`
}

// PasswordChangeRequest payload for authenticated password changes.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Surnames string `json:"surnames"`
	Email    string `json:"email"`
	RoleID   int    `json:"role_id"`
}
