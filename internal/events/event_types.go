package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered             EventType = "user_registered"
	EventPasswordResetRequested     EventType = "password_reset_requested"
	EventPasswordChanged            EventType = "password_changed"
	EventEmailVerificationRequested EventType = "email_verification_requested"
	EventEmailVerified              EventType = "email_verified"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

// PasswordResetRequestedPayload carries the one-time code to deliver
// out-of-band. The code never appears in an HTTP response.
type PasswordResetRequestedPayload struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Code   string `json:"code"`
}

// PasswordChangedPayload payload.
type PasswordChangedPayload struct {
	UserID int64 `json:"user_id"`
}

// EmailVerificationRequestedPayload payload.
type EmailVerificationRequestedPayload struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// EmailVerifiedPayload payload.
type EmailVerifiedPayload struct {
	Email string `json:"email"`
}
