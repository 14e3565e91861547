package usecase

import (
	"context"
	"errors"

	"staffchat/internal/entity"
	"staffchat/internal/repository"
	"staffchat/pkg/jwt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials  = errors.New("invalid login id or password")
	ErrInactiveStaff       = errors.New("staff account is inactive")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrExpiredRefreshToken = errors.New("refresh token has expired")
	ErrRevokedRefreshToken = errors.New("refresh token has been revoked")
)

type AuthUsecase interface {
	Login(ctx context.Context, req entity.LoginRequest) (entity.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (entity.AuthResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	LogoutAllDevices(ctx context.Context, staffId int64) error
	ValidateAccessToken(token string) (*entity.TokenClaims, error)
}

type authUsecase struct {
	staffDir         repository.StaffDirectory
	refreshTokenRepo repository.RefreshTokenRepository
	jwtManager       *jwt.JWTManager
}

func NewAuthUsecase(
	staffDir repository.StaffDirectory,
	refreshTokenRepo repository.RefreshTokenRepository,
	jwtManager *jwt.JWTManager,
) AuthUsecase {
	return &authUsecase{
		staffDir:         staffDir,
		refreshTokenRepo: refreshTokenRepo,
		jwtManager:       jwtManager,
	}
}

func (u *authUsecase) issueTokens(ctx context.Context, staff entity.Staff) (entity.AuthResponse, error) {
	accessToken, err := u.jwtManager.GenerateAccessToken(staff)
	if err != nil {
		return entity.AuthResponse{}, err
	}

	refreshTokenString, err := u.jwtManager.GenerateRefreshToken()
	if err != nil {
		return entity.AuthResponse{}, err
	}

	refreshToken := entity.RefreshToken{
		StaffId:   staff.Id,
		Token:     refreshTokenString,
		ExpiresAt: u.jwtManager.GetRefreshTokenExpiration(),
	}

	err = u.refreshTokenRepo.Create(ctx, refreshToken)
	if err != nil {
		return entity.AuthResponse{}, err
	}

	staff.PasswordHash = ""

	return entity.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenString,
		Staff:        staff,
	}, nil
}

func (u *authUsecase) Login(ctx context.Context, req entity.LoginRequest) (entity.AuthResponse, error) {
	staff, err := u.staffDir.GetByLoginId(ctx, req.LoginId)
	if err != nil {
		if err == repository.ErrStaffNotFound {
			return entity.AuthResponse{}, ErrInvalidCredentials
		}
		return entity.AuthResponse{}, err
	}

	if !staff.Active {
		return entity.AuthResponse{}, ErrInactiveStaff
	}

	err = bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(req.Password))
	if err != nil {
		return entity.AuthResponse{}, ErrInvalidCredentials
	}

	return u.issueTokens(ctx, staff)
}

func (u *authUsecase) RefreshToken(ctx context.Context, refreshTokenString string) (entity.AuthResponse, error) {
	refreshToken, err := u.refreshTokenRepo.GetByToken(ctx, refreshTokenString)
	if err != nil {
		if err == repository.ErrRefreshTokenNotFound {
			return entity.AuthResponse{}, ErrInvalidRefreshToken
		}
		return entity.AuthResponse{}, err
	}

	if refreshToken.IsRevoked {
		return entity.AuthResponse{}, ErrRevokedRefreshToken
	}

	if u.jwtManager.IsRefreshTokenExpired(refreshToken.ExpiresAt) {
		return entity.AuthResponse{}, ErrExpiredRefreshToken
	}

	staff, err := u.staffDir.Get(ctx, refreshToken.StaffId)
	if err != nil {
		return entity.AuthResponse{}, err
	}

	if !staff.Active {
		return entity.AuthResponse{}, ErrInactiveStaff
	}

	// Rotate: the presented token is single use.
	err = u.refreshTokenRepo.Revoke(ctx, refreshTokenString)
	if err != nil {
		return entity.AuthResponse{}, err
	}

	return u.issueTokens(ctx, staff)
}

func (u *authUsecase) Logout(ctx context.Context, refreshToken string) error {
	return u.refreshTokenRepo.Revoke(ctx, refreshToken)
}

func (u *authUsecase) LogoutAllDevices(ctx context.Context, staffId int64) error {
	return u.refreshTokenRepo.RevokeAllByStaffId(ctx, staffId)
}

func (u *authUsecase) ValidateAccessToken(token string) (*entity.TokenClaims, error) {
	return u.jwtManager.ValidateAccessToken(token)
}
