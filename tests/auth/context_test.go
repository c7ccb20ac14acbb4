package auth_test

import (
	"context"
	"testing"

	"github.com/salesbridge/crm-api/internal/auth"
	"github.com/salesbridge/crm-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestUserContext_HasRole(t *testing.T) {
	tests := []struct {
		name     string
		roles    []domain.UserRoleType
		role     domain.UserRoleType
		expected bool
	}{
		{
			name:     "has role",
			roles:    []domain.UserRoleType{domain.RoleAdmin, domain.RoleSalesRep},
			role:     domain.RoleAdmin,
			expected: true,
		},
		{
			name:     "does not have role",
			roles:    []domain.UserRoleType{domain.RoleSalesRep},
			role:     domain.RoleAdmin,
			expected: false,
		},
		{
			name:     "empty roles",
			roles:    []domain.UserRoleType{},
			role:     domain.RoleAdmin,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userCtx := &auth.UserContext{Roles: tt.roles}
			assert.Equal(t, tt.expected, userCtx.HasRole(tt.role))
		})
	}
}

func TestUserContext_CanWrite(t *testing.T) {
	tests := []struct {
		name     string
		roles    []domain.UserRoleType
		expected bool
	}{
		{"admin can write", []domain.UserRoleType{domain.RoleAdmin}, true},
		{"sales rep can write", []domain.UserRoleType{domain.RoleSalesRep}, true},
		{"api service can write", []domain.UserRoleType{domain.RoleAPIService}, true},
		{"viewer cannot write", []domain.UserRoleType{domain.RoleViewer}, false},
		{"no roles cannot write", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userCtx := &auth.UserContext{Roles: tt.roles}
			assert.Equal(t, tt.expected, userCtx.CanWrite())
		})
	}
}

func TestUserContext_IsAdmin(t *testing.T) {
	admin := &auth.UserContext{Roles: []domain.UserRoleType{domain.RoleAdmin}}
	assert.True(t, admin.IsAdmin())

	rep := &auth.UserContext{Roles: []domain.UserRoleType{domain.RoleSalesRep}}
	assert.False(t, rep.IsAdmin())
}

func TestUserContext_GetDisplayNameInitials(t *testing.T) {
	tests := []struct {
		name        string
		displayName string
		expected    string
	}{
		{"two names", "Kari Nordmann", "KN"},
		{"single name", "Kari", "K"},
		{"three names", "Kari Anne Nordmann", "KAN"},
		{"empty", "", ""},
		{"lowercase", "kari nordmann", "KN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userCtx := &auth.UserContext{DisplayName: tt.displayName}
			assert.Equal(t, tt.expected, userCtx.GetDisplayNameInitials())
		})
	}
}

func TestUserContext_RolesAsStrings(t *testing.T) {
	userCtx := &auth.UserContext{Roles: []domain.UserRoleType{domain.RoleAdmin, domain.RoleViewer}}
	assert.Equal(t, []string{"admin", "viewer"}, userCtx.RolesAsStrings())
}

func TestWithUserContextRoundTrip(t *testing.T) {
	userCtx := &auth.UserContext{
		UserID:      "user-123",
		DisplayName: "Test User",
		Email:       "test@example.com",
		Roles:       []domain.UserRoleType{domain.RoleSalesRep},
	}

	ctx := auth.WithUserContext(context.Background(), userCtx)

	extracted, ok := auth.FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, userCtx, extracted)

	_, ok = auth.FromContext(context.Background())
	assert.False(t, ok)

	assert.Equal(t, userCtx, auth.MustFromContext(ctx))
}

func TestMustFromContextPanics(t *testing.T) {
	assert.Panics(t, func() {
		auth.MustFromContext(context.Background())
	})
}
