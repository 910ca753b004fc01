package api

import (
	"context"
	"net/http"

	"donationhub/internal/models"
	"donationhub/internal/normalize"
)

// AuthService covers login, registration and password recovery.
type AuthService struct {
	c *Client
}

func authResult(data any) models.AuthResult {
	m := object(data)
	res := models.AuthResult{
		Token:        stringField(m, "token", "accessToken"),
		RefreshToken: stringField(m, "refreshToken"),
	}
	if u, ok := m["user"].(map[string]any); ok {
		res.User = normalize.User(u)
	}
	return res
}

// Login exchanges credentials for a token and the signed-in user.
func (s *AuthService) Login(ctx context.Context, creds models.Credentials) (models.AuthResult, error) {
	data, err := s.c.call(ctx, http.MethodPost, "/auth/login", nil, creds)
	if err != nil {
		return models.AuthResult{}, err
	}
	return authResult(data), nil
}

// Register creates an account. NGO and company accounts start pending.
func (s *AuthService) Register(ctx context.Context, reg models.Registration) (models.AuthResult, error) {
	data, err := s.c.call(ctx, http.MethodPost, "/auth/register", nil, reg)
	if err != nil {
		return models.AuthResult{}, err
	}
	return authResult(data), nil
}

// Logout invalidates the current token on the backend.
func (s *AuthService) Logout(ctx context.Context) error {
	_, err := s.c.call(ctx, http.MethodPost, "/auth/logout", nil, nil)
	return err
}

// RefreshToken trades a refresh token for a new access token.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (models.AuthResult, error) {
	data, err := s.c.call(ctx, http.MethodPost, "/auth/refresh", nil, map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return models.AuthResult{}, err
	}
	return authResult(data), nil
}

// VerifyEmail confirms an email verification token.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	_, err := s.c.call(ctx, http.MethodPost, "/auth/verify-email", nil, map[string]string{"token": token})
	return err
}

// ForgotPassword sends a reset link to email.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	_, err := s.c.call(ctx, http.MethodPost, "/auth/forgot-password", nil, map[string]string{"email": email})
	return err
}

// ResetPassword sets a new password using a reset token.
func (s *AuthService) ResetPassword(ctx context.Context, req models.PasswordResetConfirm) error {
	_, err := s.c.call(ctx, http.MethodPost, "/auth/reset-password", nil, req)
	return err
}
