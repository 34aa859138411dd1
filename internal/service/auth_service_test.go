package service

import (
	"context"
	"testing"

	"remedylab-client/internal/domain"
	"remedylab-client/internal/gateway"
	"remedylab-client/internal/repository"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func strPtr(s string) *string { return &s }

func newAuthEnvelope(id, role string) *gateway.AuthEnvelope {
	return &gateway.AuthEnvelope{
		Status:  "success",
		Message: "ok",
		Data: gateway.UserData{
			ID:             id,
			Name:           "Dr. Chen",
			Email:          "chen@example.com",
			Role:           role,
			Specialization: strPtr("Cardiology"),
			Experience:     strPtr("12"),
			ContactNumber:  strPtr("555-0100"),
		},
		Timestamp: "2025-08-01T10:00:00",
	}
}

func setupAuth(t *testing.T, api *fakeGateway, connected bool) (*AuthService, *repository.FileUsersRepo) {
	t.Helper()
	users, err := repository.NewFileUsersRepo(t.TempDir())
	require.NoError(t, err)
	svc := NewAuthService(users, api, &fakeChecker{connected: connected}, zap.NewNop())
	return svc, users
}

// TestLogin_Offline 离线时快速失败：不发出任何网络请求
func TestLogin_Offline(t *testing.T) {
	api := &fakeGateway{authEnvelope: newAuthEnvelope("u1", domain.RoleDoctor)}
	svc, users := setupAuth(t, api, false)

	ok := svc.Login(context.Background(), "chen@example.com", "secret", domain.RoleDoctor)
	require.False(t, ok)
	require.Equal(t, gateway.ErrNoConnection.Error(), svc.ErrorMessage())
	require.Equal(t, 0, api.authCalls)
	require.Equal(t, StateUnauthenticated, svc.State())
	require.Equal(t, 0, users.Count())
}

// TestLogin_Success 登录成功：按 ID upsert 用户、保留客户端密码、进入 Authenticated
func TestLogin_Success(t *testing.T) {
	api := &fakeGateway{authEnvelope: newAuthEnvelope("u1", domain.RoleDoctor)}
	svc, users := setupAuth(t, api, true)

	ok := svc.Login(context.Background(), "chen@example.com", "secret", domain.RoleDoctor)
	require.True(t, ok)
	require.Equal(t, StateAuthenticated, svc.State())
	require.Empty(t, svc.ErrorMessage())

	user, err := users.GetUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, "Dr. Chen", user.Name)
	require.Equal(t, "secret", user.Password) // 服务端不回传密码，保留客户端输入
	require.Equal(t, "Cardiology", user.Specialization)
}

// TestLogin_UpsertIdempotent 同一 ID 登录两次只有一条记录，字段与单次登录一致
func TestLogin_UpsertIdempotent(t *testing.T) {
	api := &fakeGateway{authEnvelope: newAuthEnvelope("u1", domain.RoleDoctor)}
	svc, users := setupAuth(t, api, true)

	require.True(t, svc.Login(context.Background(), "chen@example.com", "secret", domain.RoleDoctor))
	first, err := users.GetUser(context.Background(), "u1")
	require.NoError(t, err)

	require.True(t, svc.Login(context.Background(), "chen@example.com", "secret", domain.RoleDoctor))
	require.Equal(t, 1, users.Count())

	second, err := users.GetUser(context.Background(), "u1")
	require.NoError(t, err)
	second.CreatedAt = first.CreatedAt // 时间戳随登录刷新，其余字段必须一致
	require.Equal(t, first, second)
}

// TestLogin_ValidationBeforeNetwork 本地校验失败在任何网络调用之前返回
func TestLogin_ValidationBeforeNetwork(t *testing.T) {
	api := &fakeGateway{authEnvelope: newAuthEnvelope("u1", domain.RolePatient)}
	svc, _ := setupAuth(t, api, true)

	require.False(t, svc.Login(context.Background(), "", "secret", domain.RolePatient))
	require.Equal(t, 0, api.authCalls)

	require.False(t, svc.Login(context.Background(), "not-an-email", "secret", domain.RolePatient))
	require.Equal(t, 0, api.authCalls)
	require.Contains(t, svc.ErrorMessage(), "email")
}

// TestLogin_ServerRejected 服务端拒绝：回到 Unauthenticated，错误可见
func TestLogin_ServerRejected(t *testing.T) {
	api := &fakeGateway{authErr: &gateway.ServerError{StatusCode: 401, Body: "bad credentials"}}
	svc, users := setupAuth(t, api, true)

	require.False(t, svc.Login(context.Background(), "chen@example.com", "wrong", domain.RoleDoctor))
	require.Equal(t, StateUnauthenticated, svc.State())
	require.Contains(t, svc.ErrorMessage(), "401")
	require.Equal(t, 0, users.Count())
}

// TestSignupPatient_Success 患者注册走相同的 upsert 路径
func TestSignupPatient_Success(t *testing.T) {
	envelope := newAuthEnvelope("p7", domain.RolePatient)
	api := &fakeGateway{authEnvelope: envelope}
	svc, users := setupAuth(t, api, true)

	ok := svc.SignupPatient(context.Background(), gateway.PatientSignupRequest{
		Name:          "Asha",
		Email:         "asha@example.com",
		Password:      "pw123456",
		Gender:        "female",
		Age:           34,
		ContactNumber: "555-0101",
	})
	require.True(t, ok)

	user, err := users.GetUser(context.Background(), "p7")
	require.NoError(t, err)
	require.Equal(t, domain.RolePatient, user.Role)
}

// TestLogout 登出清除内存身份，本地库记录保留
func TestLogout(t *testing.T) {
	api := &fakeGateway{authEnvelope: newAuthEnvelope("u1", domain.RoleDoctor)}
	svc, users := setupAuth(t, api, true)

	require.True(t, svc.Login(context.Background(), "chen@example.com", "secret", domain.RoleDoctor))
	svc.Logout()

	require.Equal(t, StateUnauthenticated, svc.State())
	require.Nil(t, svc.CurrentUser())
	require.Equal(t, 1, users.Count())
}
