package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/voltline/voltline-backend/pkg/config"
	"github.com/voltline/voltline-backend/pkg/enums"
)

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "voltline",
		ExpirationMinutes: 30,
	}
	now := time.Now().UTC()
	storeID := int64(7)

	payload := AccessTokenPayload{
		UserID:  42,
		Role:    enums.RoleSeller,
		StoreID: &storeID,
	}

	token, err := MintAccessToken(cfg, now, payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("expected user id 42, got %d", claims.UserID)
	}
	if claims.Role != enums.RoleSeller {
		t.Fatalf("expected seller role, got %s", claims.Role)
	}
	if claims.StoreID == nil || *claims.StoreID != storeID {
		t.Fatalf("expected store id %d, got %v", storeID, claims.StoreID)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}
	if claims.ID == "" {
		t.Fatal("expected a generated jti")
	}
}

func TestMintAccessTokenValidation(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "voltline", ExpirationMinutes: 30}
	now := time.Now().UTC()

	cases := []struct {
		name    string
		cfg     config.JWTConfig
		payload AccessTokenPayload
		want    string
	}{
		{
			name:    "missing secret",
			cfg:     config.JWTConfig{Issuer: "voltline", ExpirationMinutes: 30},
			payload: AccessTokenPayload{UserID: 1, Role: enums.RoleCustomer},
			want:    "secret",
		},
		{
			name:    "missing user id",
			cfg:     cfg,
			payload: AccessTokenPayload{Role: enums.RoleCustomer},
			want:    "user id",
		},
		{
			name:    "invalid role",
			cfg:     cfg,
			payload: AccessTokenPayload{UserID: 1, Role: enums.Role("superuser")},
			want:    "invalid role",
		},
		{
			name:    "seller without store",
			cfg:     cfg,
			payload: AccessTokenPayload{UserID: 1, Role: enums.RoleSeller},
			want:    "store id",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := MintAccessToken(tc.cfg, now, tc.payload)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestParseAccessTokenRejectsWrongIssuer(t *testing.T) {
	mintCfg := config.JWTConfig{Secret: "secret", Issuer: "voltline", ExpirationMinutes: 30}
	parseCfg := config.JWTConfig{Secret: "secret", Issuer: "other", ExpirationMinutes: 30}

	token, err := MintAccessToken(mintCfg, time.Now().UTC(), AccessTokenPayload{UserID: 1, Role: enums.RoleAdmin})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}
	if _, err := ParseAccessToken(parseCfg, token); err == nil {
		t.Fatal("expected issuer validation to fail")
	}
}
