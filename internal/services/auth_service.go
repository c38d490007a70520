package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yukikurage/points-api/internal/constants"
	"github.com/yukikurage/points-api/internal/models"
	"github.com/yukikurage/points-api/internal/repository"
	"github.com/yukikurage/points-api/internal/utils"
)

const referralCodeAttempts = 5

// AuthService handles registration and login for users and admins.
type AuthService struct {
	userRepo    repository.UserRepository
	adminRepo   repository.AdminRepository
	botUsername string
	log         *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, adminRepo repository.AdminRepository, botUsername string, log *slog.Logger) *AuthService {
	if log == nil {
		log = slog.Default()
	}
	return &AuthService{
		userRepo:    userRepo,
		adminRepo:   adminRepo,
		botUsername: botUsername,
		log:         log,
	}
}

// RegisterInput represents the information needed to create a user.
type RegisterInput struct {
	Username   string
	TelegramID int64
}

// Register creates a user with a fresh referral code and invite link.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	username, err := normalizeUsername(input.Username)
	if err != nil {
		return nil, err
	}
	if input.TelegramID == 0 {
		return nil, ErrInvalidTelegramID
	}

	if err := s.ensureUsernameFree(ctx, username, 0); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.FindByTelegramID(ctx, input.TelegramID); err == nil {
		return nil, ErrTelegramIDTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check telegram id: %w", err)
	}

	code, err := s.freeReferralCode(ctx)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		TelegramID:   input.TelegramID,
		ReferralCode: code,
		InviteLink:   utils.InviteLink(s.botUsername, code),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info("user registered", slog.Uint64("user_id", user.ID), slog.Int64("telegram_id", user.TelegramID))
	return user, nil
}

// LoginInput holds user credentials. Users authenticate with the Telegram account
// they registered with.
type LoginInput struct {
	Username   string
	TelegramID int64
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user.TelegramID != input.TelegramID {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// AdminCredentials holds the username and password of an admin.
type AdminCredentials struct {
	Username string
	Password string
}

// RegisterAdmin creates an admin with a bcrypt password hash.
func (s *AuthService) RegisterAdmin(ctx context.Context, input AdminCredentials) (*models.Admin, error) {
	username, err := normalizeUsername(input.Username)
	if err != nil {
		return nil, err
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.adminRepo.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &models.Admin{
		Username:     username,
		PasswordHash: string(hashedPassword),
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}
	return admin, nil
}

// LoginAdmin verifies admin credentials.
func (s *AuthService) LoginAdmin(ctx context.Context, input AdminCredentials) (*models.Admin, error) {
	admin, err := s.adminRepo.FindByUsername(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find admin: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return admin, nil
}

// EnsureAdmin creates the bootstrap admin when it does not exist yet.
func (s *AuthService) EnsureAdmin(ctx context.Context, input AdminCredentials) error {
	if input.Username == "" || input.Password == "" {
		return nil
	}

	_, err := s.RegisterAdmin(ctx, input)
	if errors.Is(err, ErrUsernameTaken) {
		return nil
	}
	if err != nil {
		return err
	}
	s.log.Info("bootstrap admin created", slog.String("username", input.Username))
	return nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// GetAdmin retrieves an admin by ID.
func (s *AuthService) GetAdmin(ctx context.Context, id uint64) (*models.Admin, error) {
	admin, err := s.adminRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to find admin: %w", err)
	}
	return admin, nil
}

func (s *AuthService) ensureUsernameFree(ctx context.Context, username string, self uint64) error {
	existing, err := s.userRepo.FindByUsername(ctx, username)
	if err == nil {
		if existing.ID != self {
			return ErrUsernameTaken
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check username: %w", err)
	}
	return nil
}

func (s *AuthService) freeReferralCode(ctx context.Context) (string, error) {
	for i := 0; i < referralCodeAttempts; i++ {
		code, err := utils.GenerateReferralCode()
		if err != nil {
			return "", fmt.Errorf("failed to generate referral code: %w", err)
		}

		_, err = s.userRepo.FindByReferralCode(ctx, code)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check referral code: %w", err)
		}
	}
	return "", errors.New("could not allocate a unique referral code")
}

func normalizeUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if n := len([]rune(username)); n < 3 || n > 50 {
		return "", ErrInvalidUsername
	}
	return username, nil
}
