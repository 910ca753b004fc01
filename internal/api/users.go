package api

import (
	"context"
	"io"
	"net/http"

	"donationhub/internal/models"
	"donationhub/internal/normalize"
)

// UserService manages the signed-in user's own account.
type UserService struct {
	c *Client
}

func userFrom(data any) models.User {
	m := object(data)
	if u, ok := m["user"].(map[string]any); ok {
		return normalize.User(u)
	}
	return normalize.User(m)
}

// GetProfile returns the signed-in user.
func (s *UserService) GetProfile(ctx context.Context) (models.User, error) {
	data, err := s.c.call(ctx, http.MethodGet, "/user/profile", nil, nil)
	if err != nil {
		return models.User{}, err
	}
	return userFrom(data), nil
}

// UpdateProfile changes profile fields and returns the updated user.
func (s *UserService) UpdateProfile(ctx context.Context, fields map[string]any) (models.User, error) {
	data, err := s.c.call(ctx, http.MethodPut, "/user/profile", nil, fields)
	if err != nil {
		return models.User{}, err
	}
	return userFrom(data), nil
}

// UploadAvatar replaces the profile image and returns its URL.
func (s *UserService) UploadAvatar(ctx context.Context, filename string, content io.Reader) (string, error) {
	data, err := s.c.call(ctx, http.MethodPost, "/user/avatar", nil, NewFileUpload("avatar", filename, content))
	if err != nil {
		return "", err
	}
	return stringField(object(data), "profileImage", "avatar", "url"), nil
}

// ChangePassword changes the signed-in user's password.
func (s *UserService) ChangePassword(ctx context.Context, req models.PasswordChange) error {
	_, err := s.c.call(ctx, http.MethodPut, "/user/change-password", nil, req)
	return err
}

// DeleteAccount permanently removes the signed-in user's account.
func (s *UserService) DeleteAccount(ctx context.Context) error {
	_, err := s.c.call(ctx, http.MethodDelete, "/user/account", nil, nil)
	return err
}
