package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/HowsAir/server-sub001/internal/auth"
	"github.com/HowsAir/server-sub001/internal/config"
	"github.com/HowsAir/server-sub001/internal/domain"
	"github.com/HowsAir/server-sub001/internal/events"
	"github.com/HowsAir/server-sub001/internal/repository"
	apperrors "github.com/HowsAir/server-sub001/pkg/util"
)

// AuthService coordinates registration, login and the two code-then-token
// verification flows (password reset, email verification). Codes travel by
// email through the notification pipeline; tokens travel as cookies and are
// only ever issued after the matching code was consumed.
type AuthService struct {
	users      repository.UserRepository
	codes      repository.ResetCodeRepository
	codec      *auth.TokenCodec
	dispatcher events.Dispatcher
	bcryptCost int
}

// AuthDependencies encapsulates collaborator requirements for auth service.
type AuthDependencies struct {
	UserRepo      repository.UserRepository
	ResetCodeRepo repository.ResetCodeRepository
	Dispatcher    events.Dispatcher
}

// NewAuthService builds the service and its token codec.
func NewAuthService(cfg config.Config, deps AuthDependencies, opts ...auth.CodecOption) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		codes:      deps.ResetCodeRepo,
		codec:      auth.NewTokenCodec(cfg.Auth.JWTSecret, auth.PoliciesFromConfig(cfg.Auth), opts...),
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Codec exposes the token codec for middleware and cookie wiring.
func (s *AuthService) Codec() *auth.TokenCodec {
	return s.codec
}

// Register creates an account and issues its first session token. The caller
// has already checked the email against the verification cookie, so the
// account starts with a verified email.
func (s *AuthService) Register(ctx context.Context, name, surnames, email, password string) (*domain.User, string, time.Time, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user := &domain.User{
		Name:          name,
		Surnames:      surnames,
		Email:         email,
		PasswordHash:  hash,
		RoleID:        domain.RoleUser,
		EmailVerified: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.issueSession(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	s.publish(ctx, events.EventUserRegistered, events.UserRegisteredPayload{UserID: user.ID, Email: user.Email})
	return user, token, exp, nil
}

// Login authenticates credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}

	token, exp, err := s.issueSession(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// RequestPasswordReset generates and stores a one-time code for the account
// and hands it to the notification pipeline. Unknown emails are not
// reported: the response is identical either way.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}

	code, err := auth.GenerateResetCode()
	if err != nil {
		return err
	}
	if err := s.codes.StorePasswordResetCode(ctx, user.ID, code); err != nil {
		return err
	}

	s.publish(ctx, events.EventPasswordResetRequested, events.PasswordResetRequestedPayload{
		UserID: user.ID,
		Email:  user.Email,
		Code:   code,
	})
	return nil
}

// ValidatePasswordResetCode consumes the stored code and, only on a match,
// issues the short-lived password-reset token. A wrong or stale code never
// produces a token, so the set-new-password step cannot be reached without
// completing this one.
func (s *AuthService) ValidatePasswordResetCode(ctx context.Context, email, code string) (string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", time.Time{}, apperrors.NewUnauthorized("invalid reset code")
		}
		return "", time.Time{}, err
	}

	if err := s.codes.ConsumePasswordResetCode(ctx, user.ID, code); err != nil {
		if errors.Is(err, repository.ErrCodeMismatch) {
			return "", time.Time{}, apperrors.NewUnauthorized("invalid reset code")
		}
		return "", time.Time{}, err
	}

	return s.codec.Issue(auth.KindPasswordReset, auth.Claims{UserID: user.ID})
}

// CompletePasswordReset replaces the password for the user identified by a
// verified password-reset token.
func (s *AuthService) CompletePasswordReset(ctx context.Context, userID int64, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.publish(ctx, events.EventPasswordChanged, events.PasswordChangedPayload{UserID: user.ID})
	return nil
}

// RequestEmailVerification stores a one-time code for an address that is not
// registered yet and hands it to the notification pipeline.
func (s *AuthService) RequestEmailVerification(ctx context.Context, email string) error {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	code, err := auth.GenerateResetCode()
	if err != nil {
		return err
	}
	if err := s.codes.StoreEmailVerificationCode(ctx, email, code); err != nil {
		return err
	}

	s.publish(ctx, events.EventEmailVerificationRequested, events.EmailVerificationRequestedPayload{
		Email: email,
		Code:  code,
	})
	return nil
}

// ConfirmEmailVerification consumes the stored code and issues the
// email-verification token carrying the address itself. The user has no
// account yet, so the email is the only identity available.
func (s *AuthService) ConfirmEmailVerification(ctx context.Context, email, code string) (string, time.Time, error) {
	if err := s.codes.ConsumeEmailVerificationCode(ctx, email, code); err != nil {
		if errors.Is(err, repository.ErrCodeMismatch) {
			return "", time.Time{}, apperrors.NewUnauthorized("invalid verification code")
		}
		return "", time.Time{}, err
	}

	token, exp, err := s.codec.Issue(auth.KindEmailVerification, auth.Claims{Email: email})
	if err != nil {
		return "", time.Time{}, err
	}

	s.publish(ctx, events.EventEmailVerified, events.EmailVerifiedPayload{Email: email})
	return token, exp, nil
}

// ChangePassword verifies the current password before updating to a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.publish(ctx, events.EventPasswordChanged, events.PasswordChangedPayload{UserID: user.ID})
	return nil
}

func (s *AuthService) issueSession(user *domain.User) (string, time.Time, error) {
	return s.codec.Issue(auth.KindSession, auth.Claims{UserID: user.ID, RoleID: user.RoleID})
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
}
