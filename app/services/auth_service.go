// Package services holds the decision logic between handlers and stores:
// credential handling, token issuance, and the payment write path.
package services

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/vastra/app/models"
	"github.com/shashiranjanraj/vastra/app/repositories"
	"github.com/shashiranjanraj/vastra/pkg/apperr"
	"github.com/shashiranjanraj/vastra/pkg/auth"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserStore is the slice of the user repository the auth service needs.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdateByID(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.User, error)
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error
}

// AuthService implements registration, login, password reset, and profile
// updates.
type AuthService struct {
	users UserStore
}

func NewAuthService(users UserStore) *AuthService {
	return &AuthService{users: users}
}

// RegisterInput is the registration payload. Every field is required; the
// answer is the password-reset secondary factor.
type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone" validate:"required"`
	Address  string `json:"address" validate:"required"`
	Answer   string `json:"question" validate:"required"`
}

// Register creates a new account. When the email is already registered the
// returned user is nil and exists is true — callers report that as a
// non-error outcome, not a failure.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (user *models.User, exists bool, err error) {
	_, err = s.users.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, true, nil
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, false, apperr.Internal("Error in registration", err)
	}

	passHash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, false, apperr.Internal("Error in registration", err)
	}
	answerHash, err := auth.HashPassword(in.Answer)
	if err != nil {
		return nil, false, apperr.Internal("Error in registration", err)
	}

	u := &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: passHash,
		Phone:    in.Phone,
		Address:  in.Address,
		Answer:   answerHash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		// The unique email index may win a race this path's read missed;
		// report it the same way as the read hit.
		if repositories.IsDuplicateKey(err) {
			return nil, true, nil
		}
		return nil, false, apperr.Internal("Error in registration", err)
	}
	return u, false, nil
}

// Login verifies credentials and issues a 7-day session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, "", apperr.NotFound("User not found")
		}
		return nil, "", apperr.Internal("Error in login", err)
	}

	if !auth.CheckPassword(user.Password, password) {
		return nil, "", apperr.Authentication("Invalid Password")
	}

	token, err := auth.GenerateToken(user.ID.Hex())
	if err != nil {
		return nil, "", apperr.Internal("Error in login", err)
	}
	return user, token, nil
}

// ForgotPassword rotates the password when the (email, answer) pair matches.
// A wrong email and a wrong answer are indistinguishable to the caller.
func (s *AuthService) ForgotPassword(ctx context.Context, email, answer, newPassword string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.NotFound("Wrong Email or Answer")
		}
		return apperr.Internal("Error in password reset", err)
	}
	if !auth.CheckPassword(user.Answer, answer) {
		return apperr.NotFound("Wrong Email or Answer")
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return apperr.Internal("Error in password reset", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return apperr.Internal("Error in password reset", err)
	}
	return nil
}

// ProfileInput is the profile update payload. The password is always
// required and rotated; the other fields fall back to stored values.
type ProfileInput struct {
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"nullable"`
	Phone    string `json:"phone" validate:"nullable"`
	Address  string `json:"address" validate:"nullable"`
}

// UpdateProfile rotates the signed-in user's password and replaces
// name/phone/address, keeping stored values where none were sent. The target
// account is always the caller's own.
func (s *AuthService) UpdateProfile(ctx context.Context, id primitive.ObjectID, in ProfileInput) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal("Error while updating profile", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal("Error while updating profile", err)
	}

	set := bson.M{
		"name":     fallback(in.Name, user.Name),
		"phone":    fallback(in.Phone, user.Phone),
		"address":  fallback(in.Address, user.Address),
		"password": hash,
	}
	updated, err := s.users.UpdateByID(ctx, user.ID, set)
	if err != nil {
		return nil, apperr.Internal("Error while updating profile", err)
	}
	return updated, nil
}

func fallback(v, stored string) string {
	if v == "" {
		return stored
	}
	return v
}
