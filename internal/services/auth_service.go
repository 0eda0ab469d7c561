package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/JaiminPatel345/make-my-buddy/internal/apperr"
	"github.com/JaiminPatel345/make-my-buddy/internal/models"
	"github.com/JaiminPatel345/make-my-buddy/internal/otp"
	"github.com/JaiminPatel345/make-my-buddy/internal/repository"
	"github.com/JaiminPatel345/make-my-buddy/internal/sms"
	"github.com/JaiminPatel345/make-my-buddy/internal/token"
)

var mobileRegex = regexp.MustCompile(`^(\+\d{1,3}[- ]?)?\d{10}$`)

type AuthService struct {
	users  repository.UserRepository
	otp    *otp.Store
	sms    sms.Client
	tokens *token.Manager
	log    *zap.Logger
}

func NewAuthService(users repository.UserRepository, otpStore *otp.Store, smsClient sms.Client, tokens *token.Manager, log *zap.Logger) *AuthService {
	return &AuthService{users: users, otp: otpStore, sms: smsClient, tokens: tokens, log: log}
}

type RegisterInput struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
}

// Register creates an unverified user and dispatches an OTP to their mobile.
// The SMS send runs in the background; a delivery failure is logged and does
// not fail registration.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.Mobile = strings.TrimSpace(in.Mobile)

	if in.Name == "" || in.Username == "" || in.Mobile == "" || in.Password == "" {
		return nil, apperr.InvalidOperation("Name, username, mobile and password are required")
	}
	if !mobileRegex.MatchString(in.Mobile) {
		return nil, apperr.InvalidOperation("Invalid mobile number")
	}
	if len(in.Password) < 6 {
		return nil, apperr.InvalidOperation("Password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         in.Name,
		Username:     in.Username,
		Mobile:       in.Mobile,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.issueOTP(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login authenticates by mobile (identifier containing '+') or username plus
// password. Unknown identifier and wrong password are indistinguishable.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*models.User, string, error) {
	if identifier == "" || password == "" {
		return nil, "", apperr.InvalidOperation("Identifier and password are required")
	}

	var (
		user *models.User
		err  error
	)
	if strings.Contains(identifier, "+") {
		user, err = s.users.FindByMobile(ctx, identifier)
	} else {
		user, err = s.users.FindByUsername(ctx, strings.ToLower(identifier))
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, "", apperr.Unauthenticated("Invalid credentials")
	}
	if err != nil {
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperr.Unauthenticated("Invalid credentials")
	}

	tok, err := s.tokens.Issue(user.Username)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	return user, tok, nil
}

// VerifyOTP checks the submitted code, marks the mobile verified and logs the
// user in. A mismatch persists a wrong attempt; the attempt cap invalidates
// the record for good.
func (s *AuthService) VerifyOTP(ctx context.Context, username, code string) (*models.User, string, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || code == "" {
		return nil, "", apperr.InvalidOperation("Username and OTP are required")
	}

	if err := s.otp.Verify(ctx, username, code); err != nil {
		switch {
		case errors.Is(err, otp.ErrNotFound):
			return nil, "", apperr.Unauthenticated("Try to resend OTP")
		case errors.Is(err, otp.ErrMaxAttempts):
			return nil, "", apperr.Expired("Maximum OTP attempts exceeded")
		case errors.Is(err, otp.ErrCodeMismatch):
			return nil, "", apperr.Unauthenticated("Wrong OTP, try again")
		default:
			return nil, "", apperr.Storage("Failed to verify OTP").WithCause(err)
		}
	}

	if err := s.otp.Remove(ctx, username); err != nil {
		s.log.Warn("failed to remove verified otp record", zap.String("username", username), zap.Error(err))
	}

	user, err := s.users.SetMobileVerified(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, "", apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, "", err
	}

	tok, err := s.tokens.Issue(user.Username)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	return user, tok, nil
}

// ResendOTP reissues a code with a fresh TTL.
func (s *AuthService) ResendOTP(ctx context.Context, username string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("User not found")
	}
	if err != nil {
		return err
	}
	return s.issueOTP(ctx, user)
}

func (s *AuthService) issueOTP(ctx context.Context, user *models.User) error {
	code := otp.GenerateCode(otp.CodeLength)
	if err := s.otp.Issue(ctx, user.Username, code); err != nil {
		return apperr.Storage("Failed to store OTP").WithCause(err)
	}

	message := fmt.Sprintf("Your One Time Password ( OTP ) from Make My Buddy is %s", code)
	mobile := user.Mobile
	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.sms.Send(sendCtx, mobile, message); err != nil {
			s.log.Warn("failed to send OTP SMS", zap.String("username", user.Username), zap.Error(err))
		}
	}()

	return nil
}
