package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"hamexam_backend/internal/config"
	"hamexam_backend/internal/model"
	"hamexam_backend/internal/repository"
	"hamexam_backend/internal/util"
	"hamexam_backend/pkg/security"

	"github.com/go-redis/redis/v8"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

const (
	codeTTL           = 10 * time.Minute
	codeKeyPrefix     = "auth:code:"
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// AuthService 登录认证。普通用户走邮箱验证码或 Google OAuth，
// 管理员额外支持密码登录。
type AuthService struct {
	UserRepo    *repository.UserRepository
	Email       *EmailService
	SiteConfig  *SiteConfigService
	Redis       *redis.Client
	Cfg         *config.Config
	codeLimiter *security.FixedWindowLimiter
	oauthGoogle *oauth2.Config
}

func NewAuthService(
	userRepo *repository.UserRepository,
	email *EmailService,
	siteConfig *SiteConfigService,
	rdb *redis.Client,
	cfg *config.Config,
) *AuthService {
	perHour := cfg.RateLimit.CodePerHour
	if perHour <= 0 {
		perHour = 5
	}
	return &AuthService{
		UserRepo:    userRepo,
		Email:       email,
		SiteConfig:  siteConfig,
		Redis:       rdb,
		Cfg:         cfg,
		codeLimiter: security.NewFixedWindowLimiter(perHour, time.Hour),
		oauthGoogle: &oauth2.Config{
			ClientID:     cfg.OAuth.GoogleClientID,
			ClientSecret: cfg.OAuth.GoogleClientSecret,
			RedirectURL:  cfg.OAuth.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

// SendCode 发送 6 位登录验证码，同一邮箱按固定窗口限频
func (s *AuthService) SendCode(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return util.NewValidationError("邮箱格式不正确")
	}

	if res := s.codeLimiter.Allow(email); !res.Allowed {
		return util.ErrTooManyRequests
	}

	code, err := generateCode(6)
	if err != nil {
		return err
	}

	if err := s.Redis.Set(ctx, codeKeyPrefix+email, code, codeTTL).Err(); err != nil {
		return err
	}
	return s.Email.SendVerificationCode(email, code)
}

// LoginResult 登录成功后的令牌与用户信息
type LoginResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// LoginWithCode 验证码登录，首次登录自动注册。验证码一次性消费。
func (s *AuthService) LoginWithCode(ctx context.Context, email, code string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	stored, err := s.Redis.GetDel(ctx, codeKeyPrefix+email).Result()
	if err == redis.Nil {
		return nil, util.ErrCodeInvalid
	}
	if err != nil {
		return nil, err
	}
	if stored == "" || stored != code {
		return nil, util.ErrCodeInvalid
	}

	user, err := s.findOrCreateUser(email, "")
	if err != nil {
		return nil, err
	}
	return s.issueToken(user)
}

// LoginWithPassword 密码登录，仅限管理员账号
func (s *AuthService) LoginWithPassword(email, password string) (*LoginResult, error) {
	user, err := s.UserRepo.FindByEmail(email)
	if err != nil {
		return nil, util.ErrInvalidCredentials
	}
	if user.Role != model.RoleAdmin || user.Password == "" {
		return nil, util.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}
	if user.Disabled {
		return nil, util.ErrUserDisabled
	}
	return s.issueToken(user)
}

// GoogleAuthURL 生成 OAuth 授权跳转地址
func (s *AuthService) GoogleAuthURL(state string) string {
	return s.oauthGoogle.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

type googleUserInfo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// LoginWithGoogle 用授权码换取用户信息并登录
func (s *AuthService) LoginWithGoogle(ctx context.Context, code string) (*LoginResult, error) {
	token, err := s.oauthGoogle.Exchange(ctx, code)
	if err != nil {
		return nil, util.ErrCodeInvalid
	}

	client := s.oauthGoogle.Client(ctx, token)
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oauth userinfo error (status %d): %s", resp.StatusCode, string(body))
	}

	var info googleUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, err
	}
	if info.Email == "" {
		return nil, util.ErrCodeInvalid
	}

	user, err := s.findOrCreateUser(strings.ToLower(info.Email), info.Name)
	if err != nil {
		return nil, err
	}
	return s.issueToken(user)
}

func (s *AuthService) findOrCreateUser(email, name string) (*model.User, error) {
	user, err := s.UserRepo.FindByEmail(email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	user = &model.User{
		Email:        email,
		Name:         name,
		Role:         model.RoleUser,
		AIQuotaLimit: s.SiteConfig.DefaultAIQuota(),
	}
	if err := s.UserRepo.Create(user); err != nil {
		if util.IsDuplicateKey(err) {
			// 并发注册落败，读已有记录
			return s.UserRepo.FindByEmail(email)
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issueToken(user *model.User) (*LoginResult, error) {
	if user.Disabled {
		return nil, util.ErrUserDisabled
	}

	user.LastLogin = time.Now()
	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: user}, nil
}

func generateCode(digits int) (string, error) {
	var b strings.Builder
	for i := 0; i < digits; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteString(n.String())
	}
	return b.String(), nil
}
