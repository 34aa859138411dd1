package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"remedylab-client/internal/domain"
	"remedylab-client/internal/gateway"
	"remedylab-client/internal/repository"

	"go.uber.org/zap"
)

// AuthState 会话状态机：Unauthenticated → Authenticating → Authenticated，
// Logout 回到 Unauthenticated
type AuthState int

const (
	StateUnauthenticated AuthState = iota
	StateAuthenticating
	StateAuthenticated
)

// authGateway 认证用到的网关子集（接口注入，便于测试）
type authGateway interface {
	Signup(ctx context.Context, endpoint string, payload any) (*gateway.AuthEnvelope, error)
	Login(ctx context.Context, endpoint string, req gateway.LoginRequest) (*gateway.AuthEnvelope, error)
}

// AuthService 认证会话服务。
// 持有当前登录身份，注册/登录成功后把服务端返回的用户按 ID upsert 进本地库。
// 并发约定：同一会话同时只应有一个注册/登录调用（由调用方保证，内部不排队）
type AuthService struct {
	users   repository.UsersRepository
	api     authGateway
	checker gateway.ConnectivityChecker
	logger  *zap.Logger

	mu           sync.RWMutex
	state        AuthState
	currentUser  *domain.User
	errorMessage string
}

// NewAuthService 创建认证会话服务
func NewAuthService(users repository.UsersRepository, api authGateway, checker gateway.ConnectivityChecker, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:   users,
		api:     api,
		checker: checker,
		logger:  logger,
		state:   StateUnauthenticated,
	}
}

// SignupDoctor 医生注册。失败时返回 false，原因在 ErrorMessage()
func (s *AuthService) SignupDoctor(ctx context.Context, req gateway.DoctorSignupRequest) bool {
	if err := validateRequired(map[string]string{
		"name":           req.Name,
		"email":          req.Email,
		"password":       req.Password,
		"specialization": req.Specialization,
	}); err != nil {
		s.fail(err.Error())
		return false
	}
	return s.performAuth(ctx, gateway.EndpointDoctorSignup, req, req.Password)
}

// SignupPatient 患者注册
func (s *AuthService) SignupPatient(ctx context.Context, req gateway.PatientSignupRequest) bool {
	if err := validateRequired(map[string]string{
		"name":     req.Name,
		"email":    req.Email,
		"password": req.Password,
	}); err != nil {
		s.fail(err.Error())
		return false
	}
	return s.performAuth(ctx, gateway.EndpointPatientSignup, req, req.Password)
}

// Login 登录；endpoint 由角色决定
func (s *AuthService) Login(ctx context.Context, email, password, role string) bool {
	if err := validateRequired(map[string]string{
		"email":    email,
		"password": password,
	}); err != nil {
		s.fail(err.Error())
		return false
	}

	endpoint := gateway.EndpointPatientLogin
	if role == domain.RoleDoctor {
		endpoint = gateway.EndpointDoctorLogin
	}
	return s.performAuth(ctx, endpoint, gateway.LoginRequest{Email: email, Password: password}, password)
}

// Logout 清除内存中的身份；本地库记录保留
func (s *AuthService) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateUnauthenticated
	s.currentUser = nil
	s.errorMessage = ""
}

// State 当前会话状态
func (s *AuthService) State() AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// CurrentUser 当前登录用户（未登录为 nil）
func (s *AuthService) CurrentUser() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentUser == nil {
		return nil
	}
	copied := *s.currentUser
	return &copied
}

// ErrorMessage 最近一次失败的用户可见消息（成功后清空）
func (s *AuthService) ErrorMessage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errorMessage
}

// performAuth 注册/登录共用路径：连通性预检 → POST → upsert 用户 → Authenticated
func (s *AuthService) performAuth(ctx context.Context, endpoint string, payload any, password string) bool {
	s.mu.Lock()
	s.state = StateAuthenticating
	s.errorMessage = ""
	s.mu.Unlock()

	// 先检查连通性：离线时快速失败，不发出任何网络请求
	if !s.checker.IsConnected(ctx) {
		s.logger.Warn("auth attempt while offline", zap.String("endpoint", endpoint))
		s.failUnauthenticated(gateway.ErrNoConnection.Error())
		return false
	}

	envelope, err := s.api.Signup(ctx, endpoint, payload)
	if err != nil {
		s.logger.Error("auth request failed",
			zap.String("endpoint", endpoint),
			zap.Error(err),
		)
		s.failUnauthenticated(err.Error())
		return false
	}

	user := userFromAuthData(envelope.Data, password)
	if err := s.users.UpsertUser(ctx, user); err != nil {
		s.logger.Error("failed to persist user",
			zap.String("user_id", user.UserID),
			zap.Error(err),
		)
		s.failUnauthenticated(err.Error())
		return false
	}

	s.mu.Lock()
	s.state = StateAuthenticated
	s.currentUser = user
	s.errorMessage = ""
	s.mu.Unlock()

	s.logger.Info("authenticated",
		zap.String("user_id", user.UserID),
		zap.String("role", user.Role),
	)
	return true
}

func (s *AuthService) fail(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errorMessage = message
}

func (s *AuthService) failUnauthenticated(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateUnauthenticated
	s.errorMessage = message
}

// userFromAuthData 服务端用户数据 + 客户端输入密码 → 本地实体。
// 服务端不回传密码，本地保留客户端输入的密码用于后续登录重放（见 DESIGN.md）
func userFromAuthData(data gateway.UserData, password string) *domain.User {
	return &domain.User{
		UserID:         data.ID,
		Name:           data.Name,
		Email:          data.Email,
		Password:       password,
		Role:           data.Role,
		Specialization: deref(data.Specialization),
		Experience:     deref(data.Experience),
		ContactNumber:  deref(data.ContactNumber),
		Gender:         deref(data.Gender),
		Age:            deref(data.Age),
		CreatedAt:      time.Now(),
	}
}

func validateRequired(fields map[string]string) error {
	for field, value := range fields {
		if strings.TrimSpace(value) == "" {
			return &gateway.ValidationError{Field: field, Reason: "required"}
		}
	}
	if email, ok := fields["email"]; ok && !strings.Contains(email, "@") {
		return &gateway.ValidationError{Field: "email", Reason: "invalid format"}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
