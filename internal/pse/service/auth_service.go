package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arifsuz/pre-shipment-system/internal/config"
	"github.com/arifsuz/pre-shipment-system/internal/pse/entity"
	"github.com/arifsuz/pre-shipment-system/internal/pse/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const refreshKeyPrefix = "pse:token:refresh:"

// AuthService issues and refreshes access tokens. Refresh tokens need redis;
// without it only access tokens are issued.
type AuthService struct {
	userRepo *repository.UserRepository
	rdb      *redis.Client
	cfg      config.JWTConfig
	logger   *zap.Logger
}

func NewAuthService(userRepo *repository.UserRepository, rdb *redis.Client, cfg config.JWTConfig, logger *zap.Logger) *AuthService {
	return &AuthService{userRepo: userRepo, rdb: rdb, cfg: cfg, logger: logger}
}

// LoginRequest accepts a username or an email as login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResult is returned by Login and Refresh.
type LoginResult struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refreshToken,omitempty"`
	ExpiresIn    int64        `json:"expiresIn"`
	User         *entity.User `json:"user"`
}

// HashPassword hashes a plain password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Login checks the credentials of an active user.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResult, error) {
	user, err := s.userRepo.FindByLogin(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, unauthorizedf("invalid credentials")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, unauthorizedf("account is inactive")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, unauthorizedf("invalid credentials")
	}
	return s.issue(ctx, user)
}

func (s *AuthService) issue(ctx context.Context, user *entity.User) (*LoginResult, error) {
	now := time.Now()

	accessClaims := jwt.MapClaims{
		"sub":   user.ID,
		"uid":   user.ID,
		"name":  user.Nama,
		"email": user.Email,
		"roles": []string{user.Role},
		"iss":   s.cfg.Issuer,
		"iat":   now.Unix(),
		"exp":   now.Add(s.cfg.AccessTokenExpire).Unix(),
		"jti":   uuid.New().String(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	result := &LoginResult{
		Token:     token,
		ExpiresIn: int64(s.cfg.AccessTokenExpire.Seconds()),
		User:      user,
	}

	if s.rdb == nil {
		return result, nil
	}

	refreshJti := uuid.New().String()
	refreshClaims := jwt.MapClaims{
		"sub":  user.ID,
		"type": "refresh",
		"iss":  s.cfg.Issuer,
		"iat":  now.Unix(),
		"exp":  now.Add(s.cfg.RefreshTokenExpire).Unix(),
		"jti":  refreshJti,
	}
	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	if err := s.rdb.Set(ctx, refreshKeyPrefix+refreshJti, user.ID, s.cfg.RefreshTokenExpire).Err(); err != nil {
		s.logger.Warn("store refresh token failed", zap.Error(err))
		return result, nil
	}
	result.RefreshToken = refresh
	return result, nil
}

func (s *AuthService) parseRefresh(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", unauthorizedf("invalid refresh token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid || claims["type"] != "refresh" {
		return "", unauthorizedf("invalid refresh token")
	}
	jti, _ := claims["jti"].(string)
	if jti == "" {
		return "", unauthorizedf("invalid refresh token")
	}
	return jti, nil
}

// Refresh rotates a refresh token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	if s.rdb == nil {
		return nil, unauthorizedf("refresh tokens are not enabled")
	}
	jti, err := s.parseRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	userID, err := s.rdb.Get(ctx, refreshKeyPrefix+jti).Result()
	if err != nil {
		return nil, unauthorizedf("refresh token expired or revoked")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil || !user.IsActive {
		return nil, unauthorizedf("user not available")
	}

	s.rdb.Del(ctx, refreshKeyPrefix+jti)
	return s.issue(ctx, user)
}

// Logout revokes the refresh token, if any.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if s.rdb == nil || refreshToken == "" {
		return nil
	}
	jti, err := s.parseRefresh(refreshToken)
	if err != nil {
		return err
	}
	return s.rdb.Del(ctx, refreshKeyPrefix+jti).Err()
}

// CurrentUser loads the authenticated user.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, translate(err, "user", userID)
	}
	return user, nil
}
