package proxy

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ragtrainer/gateway/internal/domain/trainer"
	"github.com/ragtrainer/gateway/internal/infrastructure/backend"
	"github.com/ragtrainer/gateway/internal/infrastructure/log"
)

// AuthService 登录与凭据管理
type AuthService struct {
	backend Backend
	store   trainer.CredentialStore
	now     func() time.Time
	logger  *slog.Logger
}

// NewAuthService 创建认证服务
func NewAuthService(b Backend, store trainer.CredentialStore) *AuthService {
	return &AuthService{
		backend: b,
		store:   store,
		now:     time.Now,
		logger:  log.NewModuleLogger("proxy", "auth"),
	}
}

// Login 转发登录请求并保存凭据
// 返回后端原始响应，用于透传
func (s *AuthService) Login(ctx context.Context, email, password string) (map[string]any, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, trainer.NewValidationError("", "Email and password are required")
	}

	s.logger.Info("Attempting login", "email", email)

	resp, err := s.backend.Login(ctx, backend.LoginRequest{Email: email, Password: password})
	if err != nil {
		s.logger.Warn("Login failed", "email", email, "error", err)
		return nil, err
	}

	cred := s.credentialFrom(resp)
	if err := s.store.Set(ctx, cred); err != nil {
		// 凭据保存失败不影响登录结果
		s.logger.Error("Failed to store credentials", "error", err)
	}

	s.logger.Info("Login successful", "user_id", cred.UserID)
	return resp.Raw, nil
}

// Logout 清除保存的凭据
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

// Current 返回未过期的凭据，没有时返回 nil
func (s *AuthService) Current(ctx context.Context) (*trainer.Credential, error) {
	cred, err := s.store.Get(ctx)
	if err != nil || cred == nil {
		return nil, err
	}
	if cred.Expired(s.now()) {
		s.logger.Info("Stored credentials expired", "user_id", cred.UserID, "expires_at", cred.ExpiresAt)
		if err := s.store.Clear(ctx); err != nil {
			s.logger.Warn("Failed to clear expired credentials", "error", err)
		}
		return nil, nil
	}
	return cred, nil
}

// credentialFrom 由登录响应生成凭据
// 过期时间优先取 expiresIn，其次取 access token 中的 exp
func (s *AuthService) credentialFrom(resp *backend.LoginResponse) *trainer.Credential {
	cred := &trainer.Credential{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    resp.TokenType,
		User:         resp.User,
	}
	if resp.User != nil {
		cred.UserID = stringify(resp.User["id"])
	}

	if d, ok := parseExpiresIn(resp.ExpiresIn); ok {
		cred.ExpiresAt = s.now().Add(d)
	}

	claims, err := parseClaims(resp.AccessToken)
	if err != nil {
		s.logger.Debug("Access token is not a readable JWT", "error", err)
		return cred
	}
	if cred.ExpiresAt.IsZero() && claims.ExpiresAt != nil {
		cred.ExpiresAt = claims.ExpiresAt.Time
	}
	if cred.UserID == "" {
		cred.UserID = claims.Subject
	}
	return cred
}

// parseClaims 读取 token 中的声明，不校验签名
// 签名由后端负责校验，这里只用于估计过期时间
func parseClaims(token string) (*jwt.RegisteredClaims, error) {
	if token == "" {
		return nil, fmt.Errorf("empty token")
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// parseExpiresIn 支持秒数或 Go 时长字符串
func parseExpiresIn(v any) (time.Duration, bool) {
	switch e := v.(type) {
	case float64:
		if e > 0 {
			return time.Duration(e) * time.Second, true
		}
	case string:
		if n, err := strconv.ParseInt(e, 10, 64); err == nil && n > 0 {
			return time.Duration(n) * time.Second, true
		}
		if d, err := time.ParseDuration(e); err == nil && d > 0 {
			return d, true
		}
	}
	return 0, false
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
