package jwt

import (
	"errors"
	"testing"
	"time"

	"coverduty/backend/config"
)

func newTestManager() *Manager {
	return NewManager(&config.AuthConfig{
		JWTSecret:               "unit-test-secret-2026",
		AccessTokenTTL:          15 * time.Minute,
		RefreshTokenTTLDefault:  24 * time.Hour,
		RefreshTokenTTLRemember: 7 * 24 * time.Hour,
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateAccessToken("user-1", "director", "dept-1")
	if err != nil {
		t.Fatalf("签发 access token 失败: %v", err)
	}
	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}

	if claims.UserID != "user-1" || claims.Role != "director" || claims.DepartmentID != "dept-1" {
		t.Errorf("声明字段不符: %+v", claims)
	}
	if claims.TokenType != TypeAccess {
		t.Errorf("TokenType 应为 access，实际 %s", claims.TokenType)
	}
	if claims.Issuer != issuer {
		t.Errorf("Issuer 应为 %s，实际 %s", issuer, claims.Issuer)
	}
	if claims.ID == "" {
		t.Error("JTI 不应为空")
	}
}

// rememberMe 决定 refresh token 的有效期档位
func TestRefreshTokenTTLSelection(t *testing.T) {
	m := newTestManager()

	tests := []struct {
		name       string
		rememberMe bool
		minTTL     time.Duration
		maxTTL     time.Duration
	}{
		{"默认 24h", false, 23 * time.Hour, 25 * time.Hour},
		{"记住我 7 天", true, 6 * 24 * time.Hour, 8 * 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := m.GenerateRefreshToken("user-1", "instructor", "dept-1", tt.rememberMe)
			if err != nil {
				t.Fatalf("签发 refresh token 失败: %v", err)
			}
			claims, err := m.ParseToken(token)
			if err != nil {
				t.Fatalf("解析失败: %v", err)
			}
			if claims.TokenType != TypeRefresh {
				t.Errorf("TokenType 应为 refresh，实际 %s", claims.TokenType)
			}
			if claims.RememberMe != tt.rememberMe {
				t.Errorf("RememberMe 应为 %v", tt.rememberMe)
			}
			ttl := time.Until(claims.ExpiresAt.Time)
			if ttl < tt.minTTL || ttl > tt.maxTTL {
				t.Errorf("TTL 超出预期区间: %v", ttl)
			}
		})
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	m := newTestManager()
	if _, err := m.ParseToken("not.a.token"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("非法 token 应返回 ErrTokenInvalid，实际 %v", err)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	m := newTestManager()
	other := NewManager(&config.AuthConfig{
		JWTSecret:      "another-secret",
		AccessTokenTTL: 15 * time.Minute,
	})

	token, err := m.GenerateAccessToken("user-1", "admin", "dept-1")
	if err != nil {
		t.Fatalf("签发失败: %v", err)
	}
	if _, err := other.ParseToken(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("异密钥 token 应返回 ErrTokenInvalid，实际 %v", err)
	}
}

func TestParseRejectsExpired(t *testing.T) {
	m := NewManager(&config.AuthConfig{
		JWTSecret:      "short-lived",
		AccessTokenTTL: time.Millisecond,
	})

	token, err := m.GenerateAccessToken("user-1", "admin", "dept-1")
	if err != nil {
		t.Fatalf("签发失败: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, err := m.ParseToken(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("过期 token 应返回 ErrTokenExpired，实际 %v", err)
	}
}
