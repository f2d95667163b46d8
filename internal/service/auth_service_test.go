package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"coverduty/backend/config"
	"coverduty/backend/internal/dto"
	"coverduty/backend/internal/model"
	"coverduty/backend/internal/repository"
	"coverduty/backend/pkg/jwt"
)

func newAuthTestService(t *testing.T) (AuthService, *repository.Repository) {
	t.Helper()
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret-please-rotate",
			AccessTokenTTL:          15 * time.Minute,
			RefreshTokenTTLDefault:  24 * time.Hour,
			RefreshTokenTTLRemember: 168 * time.Hour,
		},
	}
	repo := newMockRepository()
	jwtMgr := jwt.NewManager(&cfg.Auth)
	return NewAuthService(cfg, repo, jwtMgr, nil, zap.NewNop()), repo
}

func seedAuthUser(t *testing.T, repo *repository.Repository, password string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("生成密码哈希失败: %v", err)
	}
	user := &model.User{
		UserID:       "user-1",
		Name:         "张教练",
		EmployeeNo:   "E100",
		Email:        "zhang@example.com",
		PasswordHash: string(hash),
		Role:         model.RoleInstructor,
		DepartmentID: "dept-1",
	}
	if err := repo.User.Create(context.Background(), user); err != nil {
		t.Fatalf("预置用户失败: %v", err)
	}
	return user
}

func TestLoginSuccess(t *testing.T) {
	svc, repo := newAuthTestService(t)
	seedAuthUser(t, repo, "changeme123")

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		EmployeeNo: "E100",
		Password:   "changeme123",
	})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("登录应返回 access/refresh token 对")
	}
	if resp.User.ID != "user-1" || resp.User.Role != model.RoleInstructor {
		t.Errorf("用户信息不符: %+v", resp.User)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, repo := newAuthTestService(t)
	seedAuthUser(t, repo, "changeme123")

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		EmployeeNo: "E100",
		Password:   "wrong-password",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("密码错误应返回 ErrInvalidCredentials，实际 %v", err)
	}
}

// 工号不存在时与密码错误返回同一错误，避免枚举工号
func TestLoginUnknownEmployeeNo(t *testing.T) {
	svc, _ := newAuthTestService(t)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		EmployeeNo: "E999",
		Password:   "whatever",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("未知工号应返回 ErrInvalidCredentials，实际 %v", err)
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	svc, repo := newAuthTestService(t)
	seedAuthUser(t, repo, "changeme123")
	ctx := context.Background()

	login, err := svc.Login(ctx, &dto.LoginRequest{EmployeeNo: "E100", Password: "changeme123"})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}

	refreshed, err := svc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	if err != nil {
		t.Fatalf("刷新失败: %v", err)
	}
	if refreshed.AccessToken == "" || refreshed.RefreshToken == "" {
		t.Error("刷新应返回新的 token 对")
	}
}

// access token 不能用于刷新
func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, repo := newAuthTestService(t)
	seedAuthUser(t, repo, "changeme123")
	ctx := context.Background()

	login, err := svc.Login(ctx, &dto.LoginRequest{EmployeeNo: "E100", Password: "changeme123"})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}

	_, err = svc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: login.AccessToken})
	if !errors.Is(err, ErrInvalidRefresh) {
		t.Errorf("用 access token 刷新应返回 ErrInvalidRefresh，实际 %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc, repo := newAuthTestService(t)
	seedAuthUser(t, repo, "changeme123")
	ctx := context.Background()

	// 原密码错误
	err := svc.ChangePassword(ctx, "user-1", &dto.ChangePasswordRequest{
		OldPassword: "wrong", NewPassword: "newpass456",
	})
	if !errors.Is(err, ErrOldPasswordWrong) {
		t.Errorf("原密码错误应返回 ErrOldPasswordWrong，实际 %v", err)
	}

	// 新旧相同
	err = svc.ChangePassword(ctx, "user-1", &dto.ChangePasswordRequest{
		OldPassword: "changeme123", NewPassword: "changeme123",
	})
	if !errors.Is(err, ErrSamePassword) {
		t.Errorf("新旧密码相同应返回 ErrSamePassword，实际 %v", err)
	}

	// 正常修改后可用新密码登录
	if err := svc.ChangePassword(ctx, "user-1", &dto.ChangePasswordRequest{
		OldPassword: "changeme123", NewPassword: "newpass456",
	}); err != nil {
		t.Fatalf("修改密码失败: %v", err)
	}
	if _, err := svc.Login(ctx, &dto.LoginRequest{EmployeeNo: "E100", Password: "newpass456"}); err != nil {
		t.Errorf("新密码登录失败: %v", err)
	}
	if _, err := svc.Login(ctx, &dto.LoginRequest{EmployeeNo: "E100", Password: "changeme123"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("旧密码应已失效，实际 %v", err)
	}
}
