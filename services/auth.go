package services

import (
	"context"
	"errors"
	"strings"

	"ecofinds/models"
	"ecofinds/store"
	"ecofinds/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	GenerateJWT(userID primitive.ObjectID, email string) (string, error)
}

type RegisterInput struct {
	Username string         `json:"username" validate:"required,min=3,max=30"`
	Email    string         `json:"email" validate:"required,email"`
	Password string         `json:"password" validate:"required,min=6"`
	Phone    string         `json:"phone"`
	Address  models.Address `json:"address"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ProfileUpdate struct {
	Username *string         `json:"username" validate:"omitempty,min=3,max=30"`
	Phone    *string         `json:"phone"`
	Address  *models.Address `json:"address"`
}

// Session is a user together with a freshly issued token.
type Session struct {
	User  *models.User
	Token string
}

// AuthService registers and authenticates users.
type AuthService struct {
	users  store.Users
	tokens TokenIssuer
	mailer Mailer
}

func NewAuthService(users store.Users, tokens TokenIssuer, mailer Mailer) *AuthService {
	return &AuthService{users: users, tokens: tokens, mailer: mailer}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByEmailOrUsername(ctx, in.Email, in.Username)
	if err != nil {
		return nil, internal("checking user", err)
	}
	if exists {
		return nil, newError(KindConflict, "User already exists")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, internal("hashing password", err)
	}
	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: hash,
		Phone:    strings.TrimSpace(in.Phone),
		Address:  in.Address,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, newError(KindConflict, "User already exists")
		}
		return nil, internal("creating user", err)
	}

	session, err := s.session(user)
	if err != nil {
		return nil, err
	}
	if s.mailer != nil {
		username := user.Username
		sendInBackground(ctx, user.Email, func(to string) error {
			return s.mailer.SendWelcomeEmail(to, username)
		})
	}
	return session, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, newError(KindUnauthorized, "Invalid credentials")
		}
		return nil, internal("loading user", err)
	}
	if !utils.CheckPassword(user.Password, in.Password) {
		return nil, newError(KindUnauthorized, "Invalid credentials")
	}
	return s.session(user)
}

// Me returns the user behind a validated token.
func (s *AuthService) Me(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("User not found")
		}
		return nil, internal("loading user", err)
	}
	return user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, in ProfileUpdate) (*models.User, error) {
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		in.Username = &username
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Username != nil {
		user.Username = *in.Username
	}
	if in.Phone != nil {
		user.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Address != nil {
		user.Address = *in.Address
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicate):
			return nil, newError(KindConflict, "Username is already taken")
		case errors.Is(err, store.ErrNotFound):
			return nil, notFound("User not found")
		}
		return nil, internal("updating profile", err)
	}
	return user, nil
}

func (s *AuthService) session(user *models.User) (*Session, error) {
	token, err := s.tokens.GenerateJWT(user.ID, user.Email)
	if err != nil {
		return nil, internal("generating token", err)
	}
	return &Session{User: user, Token: token}, nil
}
