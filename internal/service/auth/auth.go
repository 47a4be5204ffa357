package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/Indieguru/indieguru-website-sub000/internal/app_errors"
	"github.com/Indieguru/indieguru-website-sub000/internal/models"
	"github.com/Indieguru/indieguru-website-sub000/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type userRepo interface {
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByPhone(ctx context.Context, phone string) (*models.User, error)
}

type expertRepo interface {
	CreateExpert(ctx context.Context, expert *models.Expert) (uuid.UUID, error)
}

type tokenRepo interface {
	Create(ctx context.Context, userID uuid.UUID, token *jwt.Token) (*models.RefreshToken, error)
	ByPrimaryKey(ctx context.Context, userID uuid.UUID, token *jwt.Token) (*models.RefreshToken, error)
	DeleteUserTokens(ctx context.Context, userID uuid.UUID) error
}

type otpRepo interface {
	Store(ctx context.Context, purpose, destination, hashedCode string, ttl time.Duration) error
	Get(ctx context.Context, purpose, destination string) (string, error)
	IncrAttempts(ctx context.Context, purpose, destination string) (int, error)
	Delete(ctx context.Context, purpose, destination string) error
}

// notifier delivers a one-time code over email or SMS. Delivery is an
// external collaborator; failures are logged, not surfaced.
type notifier interface {
	SendCode(ctx context.Context, channel, destination, code string) error
}

type AuthService struct {
	log            logger.Log
	jwtManager     *JWTManager
	userRepo       userRepo
	expertRepo     expertRepo
	tokenRepo      tokenRepo
	otpRepo        otpRepo
	notifier       notifier
	otpTTL         time.Duration
	maxOTPAttempts int
}

func NewAuthService(l logger.Log, manager *JWTManager, uRepo userRepo, eRepo expertRepo,
	tRepo tokenRepo, oRepo otpRepo, n notifier, otpTTL time.Duration, maxAttempts int,
) *AuthService {
	return &AuthService{
		log:            l,
		jwtManager:     manager,
		userRepo:       uRepo,
		expertRepo:     eRepo,
		tokenRepo:      tRepo,
		otpRepo:        oRepo,
		notifier:       n,
		otpTTL:         otpTTL,
		maxOTPAttempts: maxAttempts,
	}
}

func (u *AuthService) userByDestination(ctx context.Context, channel, destination string) (*models.User, error) {
	if channel == models.OTPChannelPhone {
		return u.userRepo.UserByPhone(ctx, destination)
	}
	return u.userRepo.UserByEmail(ctx, destination)
}

// RequestOTP generates and stores a code for signup or login. For signup the
// destination must be unused, for login it must belong to an existing user.
func (u *AuthService) RequestOTP(ctx context.Context, channel, destination, purpose string) error {
	_, err := u.userByDestination(ctx, channel, destination)
	switch purpose {
	case models.OTPPurposeSignup:
		if err == nil {
			return app_errors.ErrUserExists
		}
		if !errors.Is(err, app_errors.ErrUserNotFound) {
			return err
		}
	case models.OTPPurposeLogin:
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown otp purpose %q", purpose)
	}

	code, err := generateCode()
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := u.otpRepo.Store(ctx, purpose, destination, string(hash), u.otpTTL); err != nil {
		return err
	}

	if err := u.notifier.SendCode(ctx, channel, destination, code); err != nil {
		u.log.ErrorErr("failed to deliver otp code", err, "channel", channel)
	}
	return nil
}

func (u *AuthService) verifyCode(ctx context.Context, purpose, destination, code string) error {
	hash, err := u.otpRepo.Get(ctx, purpose, destination)
	if err != nil {
		return err
	}
	attempts, err := u.otpRepo.IncrAttempts(ctx, purpose, destination)
	if err != nil {
		return err
	}
	if attempts > u.maxOTPAttempts {
		_ = u.otpRepo.Delete(ctx, purpose, destination)
		return app_errors.ErrOTPTooManyAttempts
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) != nil {
		return app_errors.ErrOTPMismatch
	}
	return u.otpRepo.Delete(ctx, purpose, destination)
}

// VerifySignup creates the user once the code checks out. Experts get a
// pending profile that gates everything they can publish.
func (u *AuthService) VerifySignup(ctx context.Context, channel, destination, code, name, role string) (accessToken, refreshToken string, err error) {
	if role != models.StudentRole && role != models.ExpertRole {
		return "", "", fmt.Errorf("unknown role %q", role)
	}
	if err := u.verifyCode(ctx, models.OTPPurposeSignup, destination, code); err != nil {
		return "", "", err
	}

	user := models.User{Name: name, Roles: []string{role}}
	if channel == models.OTPChannelPhone {
		user.Phone = destination
	} else {
		user.Email = destination
	}
	created, err := u.userRepo.CreateUser(ctx, user)
	if err != nil {
		return "", "", err
	}

	if role == models.ExpertRole {
		expert := &models.Expert{UserID: created.ID}
		if _, err := u.expertRepo.CreateExpert(ctx, expert); err != nil {
			return "", "", err
		}
	}

	return u.issueTokens(ctx, created)
}

func (u *AuthService) VerifyLogin(ctx context.Context, channel, destination, code string) (accessToken, refreshToken string, err error) {
	user, err := u.userByDestination(ctx, channel, destination)
	if err != nil {
		return "", "", err
	}
	if err := u.verifyCode(ctx, models.OTPPurposeLogin, destination, code); err != nil {
		return "", "", err
	}
	return u.issueTokens(ctx, user)
}

func (u *AuthService) issueTokens(ctx context.Context, user *models.User) (string, string, error) {
	tokenPair, err := u.jwtManager.GenerateTokenPair(user.ID, user.Roles)
	if err != nil {
		return "", "", err
	}
	if err := u.tokenRepo.DeleteUserTokens(ctx, user.ID); err != nil {
		return "", "", err
	}
	if _, err := u.tokenRepo.Create(ctx, user.ID, tokenPair.RefreshToken); err != nil {
		return "", "", err
	}
	return tokenPair.AccessToken.Raw, tokenPair.RefreshToken.Raw, nil
}

func (u *AuthService) RefreshTokens(ctx context.Context, token string) (*models.TokenPair, error) {
	curToken, err := u.jwtManager.Parse(token)
	if err != nil {
		return nil, err
	}
	userIDStr, err := curToken.Claims.GetSubject()
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, err
	}
	tokenRecord, err := u.tokenRepo.ByPrimaryKey(ctx, userID, curToken)
	if err != nil {
		return nil, err
	}
	user, err := u.userRepo.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if tokenRecord.ExpiresAt.Before(time.Now()) {
		return nil, app_errors.ErrTokenExpired
	}
	tokenPair, err := u.jwtManager.GenerateTokenPair(user.ID, user.Roles)
	if err != nil {
		return nil, err
	}
	if err := u.tokenRepo.DeleteUserTokens(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := u.tokenRepo.Create(ctx, user.ID, tokenPair.RefreshToken); err != nil {
		return nil, err
	}
	return tokenPair, nil
}

func (u *AuthService) ParseToken(ctx context.Context, token string) (*jwt.Token, error) {
	return u.jwtManager.Parse(token)
}

func (u *AuthService) IsAccessToken(ctx context.Context, token *jwt.Token) bool {
	return u.jwtManager.TokenType(token, AccessTokenType)
}

func (u *AuthService) AccessClaims(ctx context.Context, token string) (userID uuid.UUID, roles []string, err error) {
	claims, err := u.jwtManager.AccessClaims(token)
	if err != nil {
		return uuid.Nil, nil, err
	}
	return claims.UserID, claims.Roles, nil
}

func (u *AuthService) User(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return u.userRepo.UserByID(ctx, id)
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
