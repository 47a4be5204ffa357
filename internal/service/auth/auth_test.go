package auth

import (
	"context"
	"testing"
	"time"

	"github.com/Indieguru/indieguru-website-sub000/internal/app_errors"
	"github.com/Indieguru/indieguru-website-sub000/internal/models"
	"github.com/Indieguru/indieguru-website-sub000/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*models.User)}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user models.User) (*models.User, error) {
	for _, u := range f.users {
		if (user.Email != "" && u.Email == user.Email) || (user.Phone != "" && u.Phone == user.Phone) {
			return nil, app_errors.ErrUserExists
		}
	}
	user.ID = uuid.New()
	f.users[user.ID] = &user
	return &user, nil
}

func (f *fakeUserRepo) UserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, app_errors.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) UserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, app_errors.ErrUserNotFound
}

func (f *fakeUserRepo) UserByPhone(_ context.Context, phone string) (*models.User, error) {
	for _, u := range f.users {
		if u.Phone == phone {
			return u, nil
		}
	}
	return nil, app_errors.ErrUserNotFound
}

type fakeExpertRepo struct {
	created []*models.Expert
}

func (f *fakeExpertRepo) CreateExpert(_ context.Context, expert *models.Expert) (uuid.UUID, error) {
	expert.ID = uuid.New()
	expert.Status = models.ApprovalPending
	f.created = append(f.created, expert)
	return expert.ID, nil
}

type fakeTokenRepo struct {
	tokens map[uuid.UUID]*models.RefreshToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[uuid.UUID]*models.RefreshToken)}
}

func (f *fakeTokenRepo) Create(_ context.Context, userID uuid.UUID, token *jwt.Token) (*models.RefreshToken, error) {
	exp, _ := token.Claims.GetExpirationTime()
	record := &models.RefreshToken{UserID: userID, ExpiresAt: exp.Time}
	f.tokens[userID] = record
	return record, nil
}

func (f *fakeTokenRepo) ByPrimaryKey(_ context.Context, userID uuid.UUID, _ *jwt.Token) (*models.RefreshToken, error) {
	record, ok := f.tokens[userID]
	if !ok {
		return nil, app_errors.ErrTokenNotFound
	}
	return record, nil
}

func (f *fakeTokenRepo) DeleteUserTokens(_ context.Context, userID uuid.UUID) error {
	delete(f.tokens, userID)
	return nil
}

type otpRecord struct {
	hash     string
	attempts int
}

type fakeOTPRepo struct {
	codes map[string]*otpRecord
}

func newFakeOTPRepo() *fakeOTPRepo {
	return &fakeOTPRepo{codes: make(map[string]*otpRecord)}
}

func (f *fakeOTPRepo) Store(_ context.Context, purpose, destination, hashedCode string, _ time.Duration) error {
	f.codes[purpose+":"+destination] = &otpRecord{hash: hashedCode}
	return nil
}

func (f *fakeOTPRepo) Get(_ context.Context, purpose, destination string) (string, error) {
	rec, ok := f.codes[purpose+":"+destination]
	if !ok {
		return "", app_errors.ErrOTPNotFound
	}
	return rec.hash, nil
}

func (f *fakeOTPRepo) IncrAttempts(_ context.Context, purpose, destination string) (int, error) {
	rec, ok := f.codes[purpose+":"+destination]
	if !ok {
		return 0, app_errors.ErrOTPNotFound
	}
	rec.attempts++
	return rec.attempts, nil
}

func (f *fakeOTPRepo) Delete(_ context.Context, purpose, destination string) error {
	delete(f.codes, purpose+":"+destination)
	return nil
}

// capturingNotifier records the plaintext code instead of sending it.
type capturingNotifier struct {
	lastCode string
}

func (n *capturingNotifier) SendCode(_ context.Context, _, _, code string) error {
	n.lastCode = code
	return nil
}

type authFixture struct {
	svc      *AuthService
	users    *fakeUserRepo
	experts  *fakeExpertRepo
	tokens   *fakeTokenRepo
	otps     *fakeOTPRepo
	notifier *capturingNotifier
}

func newAuthFixture() authFixture {
	users := newFakeUserRepo()
	experts := &fakeExpertRepo{}
	tokens := newFakeTokenRepo()
	otps := newFakeOTPRepo()
	n := &capturingNotifier{}
	manager := NewJWTManager("test-secret", "test", 15*time.Minute, time.Hour)
	svc := NewAuthService(logger.New("test"), manager, users, experts, tokens, otps, n, 5*time.Minute, 3)
	return authFixture{svc: svc, users: users, experts: experts, tokens: tokens, otps: otps, notifier: n}
}

func TestSignupFlow(t *testing.T) {
	fx := newAuthFixture()
	ctx := context.Background()

	if err := fx.svc.RequestOTP(ctx, models.OTPChannelEmail, "a@example.com", models.OTPPurposeSignup); err != nil {
		t.Fatalf("RequestOTP: %v", err)
	}
	if fx.notifier.lastCode == "" {
		t.Fatalf("no code delivered")
	}

	access, refresh, err := fx.svc.VerifySignup(ctx, models.OTPChannelEmail, "a@example.com", fx.notifier.lastCode, "Asha", models.StudentRole)
	if err != nil {
		t.Fatalf("VerifySignup: %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatalf("empty token pair")
	}

	user, err := fx.users.UserByEmail(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("user not created: %v", err)
	}
	if !user.HasRole(models.StudentRole) {
		t.Fatalf("user roles: %v", user.Roles)
	}
	if len(fx.experts.created) != 0 {
		t.Fatalf("student signup created an expert profile")
	}

	// The code is burned after use.
	if _, _, err := fx.svc.VerifySignup(ctx, models.OTPChannelEmail, "a@example.com", fx.notifier.lastCode, "Asha", models.StudentRole); err != app_errors.ErrOTPNotFound {
		t.Fatalf("code reuse: got %v, want ErrOTPNotFound", err)
	}
}

func TestExpertSignupCreatesPendingProfile(t *testing.T) {
	fx := newAuthFixture()
	ctx := context.Background()

	if err := fx.svc.RequestOTP(ctx, models.OTPChannelPhone, "+911234567890", models.OTPPurposeSignup); err != nil {
		t.Fatalf("RequestOTP: %v", err)
	}
	_, _, err := fx.svc.VerifySignup(ctx, models.OTPChannelPhone, "+911234567890", fx.notifier.lastCode, "Ravi", models.ExpertRole)
	if err != nil {
		t.Fatalf("VerifySignup: %v", err)
	}

	if len(fx.experts.created) != 1 {
		t.Fatalf("expert profile not created")
	}
	if fx.experts.created[0].Status != models.ApprovalPending {
		t.Fatalf("expert status: got %q, want pending", fx.experts.created[0].Status)
	}
}

func TestSignupOTPRejectsKnownDestination(t *testing.T) {
	fx := newAuthFixture()
	ctx := context.Background()

	if _, err := fx.users.CreateUser(ctx, models.User{Name: "A", Email: "a@example.com"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := fx.svc.RequestOTP(ctx, models.OTPChannelEmail, "a@example.com", models.OTPPurposeSignup); err != app_errors.ErrUserExists {
		t.Fatalf("got %v, want ErrUserExists", err)
	}
}

func TestLoginFlow(t *testing.T) {
	fx := newAuthFixture()
	ctx := context.Background()

	if _, err := fx.users.CreateUser(ctx, models.User{Name: "A", Email: "a@example.com", Roles: []string{models.StudentRole}}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	// Login OTP for an unknown destination is refused.
	if err := fx.svc.RequestOTP(ctx, models.OTPChannelEmail, "nobody@example.com", models.OTPPurposeLogin); err != app_errors.ErrUserNotFound {
		t.Fatalf("unknown destination: got %v, want ErrUserNotFound", err)
	}

	if err := fx.svc.RequestOTP(ctx, models.OTPChannelEmail, "a@example.com", models.OTPPurposeLogin); err != nil {
		t.Fatalf("RequestOTP: %v", err)
	}

	// Wrong code counts an attempt but leaves the code usable.
	if _, _, err := fx.svc.VerifyLogin(ctx, models.OTPChannelEmail, "a@example.com", "000000"); err != app_errors.ErrOTPMismatch {
		t.Fatalf("wrong code: got %v, want ErrOTPMismatch", err)
	}

	access, refresh, err := fx.svc.VerifyLogin(ctx, models.OTPChannelEmail, "a@example.com", fx.notifier.lastCode)
	if err != nil {
		t.Fatalf("VerifyLogin: %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatalf("empty token pair")
	}
}

func TestOTPAttemptCap(t *testing.T) {
	fx := newAuthFixture()
	ctx := context.Background()

	if _, err := fx.users.CreateUser(ctx, models.User{Name: "A", Email: "a@example.com"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := fx.svc.RequestOTP(ctx, models.OTPChannelEmail, "a@example.com", models.OTPPurposeLogin); err != nil {
		t.Fatalf("RequestOTP: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, _, err := fx.svc.VerifyLogin(ctx, models.OTPChannelEmail, "a@example.com", "000000"); err != app_errors.ErrOTPMismatch {
			t.Fatalf("attempt %d: got %v, want ErrOTPMismatch", i+1, err)
		}
	}

	// The cap kicks in and burns the code, even for the right one.
	if _, _, err := fx.svc.VerifyLogin(ctx, models.OTPChannelEmail, "a@example.com", fx.notifier.lastCode); err != app_errors.ErrOTPTooManyAttempts {
		t.Fatalf("over cap: got %v, want ErrOTPTooManyAttempts", err)
	}
	if _, _, err := fx.svc.VerifyLogin(ctx, models.OTPChannelEmail, "a@example.com", fx.notifier.lastCode); err != app_errors.ErrOTPNotFound {
		t.Fatalf("after burn: got %v, want ErrOTPNotFound", err)
	}
}

func TestRefreshRotatesTokens(t *testing.T) {
	fx := newAuthFixture()
	ctx := context.Background()

	if err := fx.svc.RequestOTP(ctx, models.OTPChannelEmail, "a@example.com", models.OTPPurposeSignup); err != nil {
		t.Fatalf("RequestOTP: %v", err)
	}
	_, refresh, err := fx.svc.VerifySignup(ctx, models.OTPChannelEmail, "a@example.com", fx.notifier.lastCode, "Asha", models.StudentRole)
	if err != nil {
		t.Fatalf("VerifySignup: %v", err)
	}

	pair, err := fx.svc.RefreshTokens(ctx, refresh)
	if err != nil {
		t.Fatalf("RefreshTokens: %v", err)
	}
	if pair.AccessToken.Raw == "" || pair.RefreshToken.Raw == "" {
		t.Fatalf("empty rotated pair")
	}
}
