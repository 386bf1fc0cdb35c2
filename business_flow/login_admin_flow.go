package businessflow

import (
	"context"
	"log"
	"time"

	"github.com/amirphl/orochi-admin/app/dto"
	"github.com/amirphl/orochi-admin/app/services"
	"github.com/amirphl/orochi-admin/repository"
	"github.com/amirphl/orochi-admin/utils"
	"golang.org/x/crypto/bcrypt"
)

// AdminAuthFlow represents the admin authentication flow used by handlers
type AdminAuthFlow interface {
	Login(ctx context.Context, req *dto.AdminLoginRequest, metadata *ClientMetadata) (*dto.AdminLoginResponse, error)
	Refresh(ctx context.Context, req *dto.AdminRefreshRequest) (*dto.AdminSessionDTO, error)
	Logout(ctx context.Context, accessToken string) error
}

// AdminAuthFlowImpl verifies admin credentials and issues JWTs
type AdminAuthFlowImpl struct {
	adminRepo      repository.AdminRepository
	tokenService   services.TokenService
	accessTokenTTL time.Duration
}

func NewAdminAuthFlow(adminRepo repository.AdminRepository, tokenService services.TokenService, accessTokenTTL time.Duration) AdminAuthFlow {
	if accessTokenTTL <= 0 {
		accessTokenTTL = utils.AccessTokenTTL
	}
	return &AdminAuthFlowImpl{
		adminRepo:      adminRepo,
		tokenService:   tokenService,
		accessTokenTTL: accessTokenTTL,
	}
}

func (af *AdminAuthFlowImpl) Login(ctx context.Context, req *dto.AdminLoginRequest, metadata *ClientMetadata) (*dto.AdminLoginResponse, error) {
	// Validate request
	if req == nil {
		return nil, NewBusinessError("ADMIN_LOGIN_VALIDATION_FAILED", "Admin login validation failed", ErrAdminNotFound)
	}
	if len(req.Username) == 0 || len(req.Password) == 0 {
		return nil, NewBusinessError("ADMIN_LOGIN_VALIDATION_FAILED", "Admin login validation failed", ErrIncorrectPassword)
	}

	// Lookup admin
	admin, err := af.adminRepo.ByUsername(ctx, req.Username)
	if err != nil {
		return nil, NewBusinessError("ADMIN_LOOKUP_FAILED", "Failed to lookup admin", err)
	}
	if admin == nil {
		return nil, NewBusinessError("ADMIN_NOT_FOUND", "Admin not found", ErrAdminNotFound)
	}
	if !utils.IsTrue(admin.IsActive) {
		return nil, NewBusinessError("ADMIN_INACTIVE", "Admin account is inactive", ErrAdminInactive)
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		if metadata != nil {
			log.Printf("admin login: wrong password for %q from %s (request %s)", req.Username, metadata.IPAddress, metadata.RequestID)
		}
		return nil, NewBusinessError("ADMIN_INCORRECT_PASSWORD", "Incorrect password", ErrIncorrectPassword)
	}

	// Generate admin tokens
	accessToken, refreshToken, err := af.tokenService.GenerateAdminTokens(admin.ID)
	if err != nil {
		return nil, NewBusinessError("TOKEN_GENERATION_FAILED", "Failed to generate tokens", err)
	}

	if err := af.adminRepo.UpdateLastLogin(ctx, admin.ID); err != nil {
		log.Printf("admin login: failed to stamp last login for admin %d: %v", admin.ID, err)
	} else {
		admin.LastLoginAt = utils.UTCNowPtr()
	}

	return &dto.AdminLoginResponse{
		Admin:   ToAdminDTOModel(*admin),
		Session: ToAdminSessionDTO(accessToken, refreshToken, af.accessTokenTTL),
	}, nil
}

func (af *AdminAuthFlowImpl) Refresh(ctx context.Context, req *dto.AdminRefreshRequest) (*dto.AdminSessionDTO, error) {
	if req == nil || req.RefreshToken == "" {
		return nil, NewBusinessError("INVALID_REFRESH_TOKEN", "Refresh token is required", ErrInvalidToken)
	}

	claims, err := af.tokenService.ValidateAdminToken(req.RefreshToken)
	if err != nil {
		return nil, NewBusinessError("INVALID_REFRESH_TOKEN", "Invalid refresh token", ErrInvalidToken)
	}
	admin, err := af.adminRepo.ByID(ctx, claims.AdminID)
	if err != nil {
		return nil, NewBusinessError("ADMIN_LOOKUP_FAILED", "Failed to lookup admin", err)
	}
	if admin == nil {
		return nil, NewBusinessError("ADMIN_NOT_FOUND", "Admin not found", ErrAdminNotFound)
	}
	if !utils.IsTrue(admin.IsActive) {
		return nil, NewBusinessError("ADMIN_INACTIVE", "Admin account is inactive", ErrAdminInactive)
	}

	accessToken, refreshToken, err := af.tokenService.RefreshAdminToken(req.RefreshToken)
	if err != nil {
		return nil, NewBusinessError("INVALID_REFRESH_TOKEN", "Invalid refresh token", ErrInvalidToken)
	}
	session := ToAdminSessionDTO(accessToken, refreshToken, af.accessTokenTTL)
	return &session, nil
}

func (af *AdminAuthFlowImpl) Logout(ctx context.Context, accessToken string) error {
	if err := af.tokenService.RevokeToken(accessToken); err != nil {
		return NewBusinessError("INVALID_TOKEN", "Invalid token", ErrInvalidToken)
	}
	return nil
}
