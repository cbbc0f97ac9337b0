package service_test

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HowsAir/server-sub001/internal/auth"
	"github.com/HowsAir/server-sub001/internal/config"
	"github.com/HowsAir/server-sub001/internal/domain"
	"github.com/HowsAir/server-sub001/internal/events"
	"github.com/HowsAir/server-sub001/internal/repository"
	"github.com/HowsAir/server-sub001/internal/service"
	apperrors "github.com/HowsAir/server-sub001/pkg/util"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	byID   map[int64]*domain.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[int64]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.byID[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *user
	r.byID[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.byID {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.User, 0, len(r.byID))
	for _, user := range r.byID {
		out = append(out, *user)
	}
	return out, nil
}

type fakeCodeRepo struct {
	mu    sync.Mutex
	codes map[string]string
}

func newFakeCodeRepo() *fakeCodeRepo {
	return &fakeCodeRepo{codes: make(map[string]string)}
}

func (r *fakeCodeRepo) StorePasswordResetCode(_ context.Context, userID int64, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes[resetKey(userID)] = code
	return nil
}

func (r *fakeCodeRepo) ConsumePasswordResetCode(_ context.Context, userID int64, code string) error {
	return r.consume(resetKey(userID), code)
}

func (r *fakeCodeRepo) StoreEmailVerificationCode(_ context.Context, email, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes["email:"+email] = code
	return nil
}

func (r *fakeCodeRepo) ConsumeEmailVerificationCode(_ context.Context, email, code string) error {
	return r.consume("email:"+email, code)
}

func (r *fakeCodeRepo) consume(key, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.codes[key]
	delete(r.codes, key)
	if !ok || stored != code {
		return repository.ErrCodeMismatch
	}
	return nil
}

func resetKey(userID int64) string {
	return "reset:" + strconv.FormatInt(userID, 10)
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) lastOfType(eventType events.EventType) (events.Event, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := len(d.events) - 1; i >= 0; i-- {
		if d.events[i].Type == eventType {
			return d.events[i], true
		}
	}
	return events.Event{}, false
}

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:                   "test-secret",
			SessionTTLMinutes:           3 * 24 * 60,
			PasswordResetTTLMinutes:     15,
			EmailVerificationTTLMinutes: 15,
			SessionCookieName:           "auth_token",
			PasswordResetCookieName:     "password_reset_token",
			EmailVerificationCookieName: "email_verified_token",
			ResetCodeTTLMinutes:         10,
			BcryptCost:                  4, // min cost keeps the suite fast
		},
	}
}

type authFixture struct {
	svc        *service.AuthService
	users      *fakeUserRepo
	codes      *fakeCodeRepo
	dispatcher *recordingDispatcher
}

func newAuthFixture(t *testing.T, opts ...auth.CodecOption) *authFixture {
	t.Helper()

	users := newFakeUserRepo()
	codes := newFakeCodeRepo()
	dispatcher := &recordingDispatcher{}
	svc := service.NewAuthService(testConfig(), service.AuthDependencies{
		UserRepo:      users,
		ResetCodeRepo: codes,
		Dispatcher:    dispatcher,
	}, opts...)
	return &authFixture{svc: svc, users: users, codes: codes, dispatcher: dispatcher}
}

func (f *authFixture) register(t *testing.T, email, password string) *domain.User {
	t.Helper()
	user, _, _, err := f.svc.Register(context.Background(), "Ana", "García", email, password)
	require.NoError(t, err)
	return user
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user, token, exp, err := f.svc.Register(ctx, "Ana", "García", "ana@example.com", "s3cret!pass")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.RoleID)
	assert.True(t, user.EmailVerified)
	assert.True(t, exp.After(time.Now()))

	claims, err := f.svc.Codec().Verify(auth.KindSession, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, domain.RoleUser, claims.RoleID)

	_, _, _, err = f.svc.Register(ctx, "Ana", "García", "ana@example.com", "other")
	assertDomainCode(t, err, "CONFLICT")

	_, loginToken, _, err := f.svc.Login(ctx, "ana@example.com", "s3cret!pass")
	require.NoError(t, err)
	assert.NotEmpty(t, loginToken)

	_, _, _, err = f.svc.Login(ctx, "ana@example.com", "wrong")
	assertDomainCode(t, err, "UNAUTHORIZED")

	_, _, _, err = f.svc.Login(ctx, "nobody@example.com", "whatever")
	assertDomainCode(t, err, "UNAUTHORIZED")
}

func TestAuthService_SessionClaimsDriveRoleGate(t *testing.T) {
	f := newAuthFixture(t)

	token, _, err := f.svc.Codec().Issue(auth.KindSession, auth.Claims{UserID: 7, RoleID: domain.RoleUser})
	require.NoError(t, err)

	claims, err := f.svc.Codec().Verify(auth.KindSession, token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, domain.RoleUser, claims.RoleID)
}

func TestAuthService_PasswordResetFlow(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := f.register(t, "ana@example.com", "old-password")

	// Requested -> CodeIssued
	require.NoError(t, f.svc.RequestPasswordReset(ctx, "ana@example.com"))
	event, ok := f.dispatcher.lastOfType(events.EventPasswordResetRequested)
	require.True(t, ok)
	code := event.Payload.(events.PasswordResetRequestedPayload).Code
	require.Len(t, code, 6)

	// A wrong code never yields a token, and consumes the stored one.
	_, _, err := f.svc.ValidatePasswordResetCode(ctx, "ana@example.com", "000000")
	assertDomainCode(t, err, "UNAUTHORIZED")
	_, _, err = f.svc.ValidatePasswordResetCode(ctx, "ana@example.com", code)
	assertDomainCode(t, err, "UNAUTHORIZED")

	// Fresh code: CodeValidated -> ResetTokenIssued
	require.NoError(t, f.svc.RequestPasswordReset(ctx, "ana@example.com"))
	event, _ = f.dispatcher.lastOfType(events.EventPasswordResetRequested)
	code = event.Payload.(events.PasswordResetRequestedPayload).Code

	resetToken, _, err := f.svc.ValidatePasswordResetCode(ctx, "ana@example.com", code)
	require.NoError(t, err)

	// ResetTokenVerified
	claims, err := f.svc.Codec().Verify(auth.KindPasswordReset, resetToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	// PasswordChanged (terminal)
	require.NoError(t, f.svc.CompletePasswordReset(ctx, claims.UserID, "new-password"))

	_, _, _, err = f.svc.Login(ctx, "ana@example.com", "old-password")
	assertDomainCode(t, err, "UNAUTHORIZED")
	_, _, _, err = f.svc.Login(ctx, "ana@example.com", "new-password")
	assert.NoError(t, err)

	// The consumed code cannot start the flow again.
	_, _, err = f.svc.ValidatePasswordResetCode(ctx, "ana@example.com", code)
	assertDomainCode(t, err, "UNAUTHORIZED")
}

func TestAuthService_ResetCodeUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	// Unknown addresses are not revealed.
	require.NoError(t, f.svc.RequestPasswordReset(ctx, "nobody@example.com"))
	_, ok := f.dispatcher.lastOfType(events.EventPasswordResetRequested)
	assert.False(t, ok)

	_, _, err := f.svc.ValidatePasswordResetCode(ctx, "nobody@example.com", "123456")
	assertDomainCode(t, err, "UNAUTHORIZED")
}

func TestAuthService_ExpiredResetToken(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	stale := newAuthFixture(t, auth.WithClock(func() time.Time { return past }))
	fresh := newAuthFixture(t)
	ctx := context.Background()

	user := stale.register(t, "ana@example.com", "password1")
	require.NoError(t, stale.svc.RequestPasswordReset(ctx, "ana@example.com"))
	event, _ := stale.dispatcher.lastOfType(events.EventPasswordResetRequested)
	code := event.Payload.(events.PasswordResetRequestedPayload).Code

	// Issued two hours ago with a 15 minute TTL.
	expiredToken, _, err := stale.svc.ValidatePasswordResetCode(ctx, "ana@example.com", code)
	require.NoError(t, err)
	require.NotZero(t, user.ID)

	_, err = fresh.svc.Codec().Verify(auth.KindPasswordReset, expiredToken)
	assert.ErrorIs(t, err, auth.ErrExpired)
}

// Reset tokens are not revoked on use: within its TTL a verified token still
// verifies. Single-use today applies to the emailed code, not the token.
func TestAuthService_ResetTokenReplayWithinTTL(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.register(t, "ana@example.com", "password1")

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "ana@example.com"))
	event, _ := f.dispatcher.lastOfType(events.EventPasswordResetRequested)
	code := event.Payload.(events.PasswordResetRequestedPayload).Code

	resetToken, _, err := f.svc.ValidatePasswordResetCode(ctx, "ana@example.com", code)
	require.NoError(t, err)

	first, err := f.svc.Codec().Verify(auth.KindPasswordReset, resetToken)
	require.NoError(t, err)
	second, err := f.svc.Codec().Verify(auth.KindPasswordReset, resetToken)
	require.NoError(t, err)
	assert.Equal(t, first.UserID, second.UserID)
}

func TestAuthService_EmailVerificationFlow(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.RequestEmailVerification(ctx, "new@example.com"))
	event, ok := f.dispatcher.lastOfType(events.EventEmailVerificationRequested)
	require.True(t, ok)
	code := event.Payload.(events.EmailVerificationRequestedPayload).Code

	_, _, err := f.svc.ConfirmEmailVerification(ctx, "new@example.com", "999999")
	assertDomainCode(t, err, "UNAUTHORIZED")

	require.NoError(t, f.svc.RequestEmailVerification(ctx, "new@example.com"))
	event, _ = f.dispatcher.lastOfType(events.EventEmailVerificationRequested)
	code = event.Payload.(events.EmailVerificationRequestedPayload).Code

	token, _, err := f.svc.ConfirmEmailVerification(ctx, "new@example.com", code)
	require.NoError(t, err)

	claims, err := f.svc.Codec().Verify(auth.KindEmailVerification, token)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", claims.Email)

	// Registered addresses cannot request a verification code.
	f.register(t, "taken@example.com", "password1")
	err = f.svc.RequestEmailVerification(ctx, "taken@example.com")
	assertDomainCode(t, err, "CONFLICT")
}

func TestAuthService_ChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := f.register(t, "ana@example.com", "old-password")

	err := f.svc.ChangePassword(ctx, user.ID, "wrong", "new-password")
	assertDomainCode(t, err, "UNAUTHORIZED")

	require.NoError(t, f.svc.ChangePassword(ctx, user.ID, "old-password", "new-password"))
	_, _, _, err = f.svc.Login(ctx, "ana@example.com", "new-password")
	assert.NoError(t, err)
}

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, code, domainErr.Code)
}
