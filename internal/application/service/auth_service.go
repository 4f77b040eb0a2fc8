package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/medlane/pharmacare-api/internal/domain/entity"
	"github.com/medlane/pharmacare-api/internal/domain/repository"
	"github.com/medlane/pharmacare-api/pkg/apperror"
	"github.com/medlane/pharmacare-api/pkg/oauth"
	"github.com/medlane/pharmacare-api/pkg/utils"
)

// AuthService handles authentication-related operations
type AuthService struct {
	userRepo   repository.UserRepository
	storeRepo  repository.StoreRepository
	jwtManager *utils.JWTManager
	oauthSvc   *oauth.GoogleOAuthService
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	storeRepo repository.StoreRepository,
	jwtManager *utils.JWTManager,
	oauthSvc *oauth.GoogleOAuthService,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		storeRepo:  storeRepo,
		jwtManager: jwtManager,
		oauthSvc:   oauthSvc,
	}
}

// LoginInput represents the login input
type LoginInput struct {
	Email    string
	Password string
}

// LoginOutput represents the login output
type LoginOutput struct {
	User         *entity.User
	AccessToken  string
	RefreshToken string
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(input.Password, user.Password) {
		return nil, apperror.ErrInvalidCredentials
	}

	return s.issueTokens(user)
}

// RegisterInput represents the registration input. Registration creates a new
// pharmacy store together with its owner account.
type RegisterInput struct {
	StoreName    string
	StoreAddress string
	StorePhone   string
	FirstName    string
	LastName     string
	Email        string
	Password     string
}

// Register creates a new store and its owner account
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*LoginOutput, error) {
	// Check if email already exists
	existingUser, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existingUser != nil {
		return nil, apperror.NewConflictError("Email already registered")
	}

	existingStore, err := s.storeRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existingStore != nil {
		return nil, apperror.NewConflictError("A store is already registered with this email")
	}

	// Hash password
	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	store := &entity.Store{
		Name:  input.StoreName,
		Email: input.Email,
	}
	if input.StorePhone != "" {
		phone := input.StorePhone
		store.Phone = &phone
	}
	if input.StoreAddress != "" {
		address := input.StoreAddress
		store.Address = &address
	}
	if err := s.storeRepo.Create(ctx, store); err != nil {
		return nil, err
	}

	user := &entity.User{
		StoreID:   store.ID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Password:  hashedPassword,
		Role:      entity.RoleOwner,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.issueTokens(user)
}

// RefreshToken generates new tokens from a refresh token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*LoginOutput, error) {
	userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperror.ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrNotFound
	}

	return s.issueTokens(user)
}

// GetCurrentUser returns the current user by ID
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrNotFound
	}
	return user, nil
}

// ChangePasswordInput represents the change password input
type ChangePasswordInput struct {
	UserID          uuid.UUID
	CurrentPassword string
	NewPassword     string
}

// ChangePassword changes the user's password
func (s *AuthService) ChangePassword(ctx context.Context, input *ChangePasswordInput) error {
	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.ErrNotFound
	}

	if !utils.CheckPasswordHash(input.CurrentPassword, user.Password) {
		return errors.New("current password is incorrect")
	}

	hashedPassword, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}

	user.Password = hashedPassword
	return s.userRepo.Update(ctx, user)
}

// GetGoogleAuthURL returns the Google consent URL for the given state
func (s *AuthService) GetGoogleAuthURL(state string) (string, error) {
	if !s.oauthSvc.IsConfigured() {
		return "", oauth.ErrOAuthNotConfigured
	}
	return s.oauthSvc.GetAuthURL(state), nil
}

// LoginWithGoogle completes the OAuth flow. Google sign-in only attaches to an
// existing staff account; stores are created through Register, so an unknown
// Google email is rejected rather than silently provisioned.
func (s *AuthService) LoginWithGoogle(ctx context.Context, code string) (*LoginOutput, error) {
	if !s.oauthSvc.IsConfigured() {
		return nil, oauth.ErrOAuthNotConfigured
	}

	token, err := s.oauthSvc.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	info, err := s.oauthSvc.GetUserInfo(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByGoogleID(ctx, info.ID)
	if err != nil {
		return nil, err
	}

	if user == nil {
		user, err = s.userRepo.GetByEmail(ctx, info.Email)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, apperror.NewNotFoundError("Account for this Google email")
		}

		// Link the Google identity on first sign-in
		user.GoogleID = &info.ID
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	return s.issueTokens(user)
}

// FrontendSuccessURL returns the frontend URL for successful OAuth logins
func (s *AuthService) FrontendSuccessURL() string {
	return s.oauthSvc.FrontendSuccessURL()
}

// FrontendErrorURL returns the frontend URL for failed OAuth logins
func (s *AuthService) FrontendErrorURL() string {
	return s.oauthSvc.FrontendErrorURL()
}

func (s *AuthService) issueTokens(user *entity.User) (*LoginOutput, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.StoreID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &LoginOutput{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
