package users

import (
	"context"
	"fmt"
	"regexp"

	"github.com/Domenick1991/flightbooking/internal/auth"
	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

type UserUseCase interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, login, password string) (*AuthResult, error)
	GetProfile(ctx context.Context, userID int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID int64, input UpdateProfileInput) (*domain.User, error)
	ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error
}

type RegisterInput struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
}

type UpdateProfileInput struct {
	FirstName   *string `json:"firstName,omitempty"`
	LastName    *string `json:"lastName,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
}

type AuthResult struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type UserService struct {
	repo       repository.UserRepository
	tokens     *auth.TokenManager
	bcryptCost int
}

func NewUserService(repo repository.UserRepository, tokens *auth.TokenManager, bcryptCost int) *UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{repo: repo, tokens: tokens, bcryptCost: bcryptCost}
}

func (s *UserService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if input.Username == "" || input.Email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", domain.ErrInvalidInput)
	}
	if !emailRe.MatchString(input.Email) {
		return nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}
	if len(input.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters long", domain.ErrInvalidInput)
	}

	if taken, err := s.repo.UsernameExists(ctx, input.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("%w: username already exists", domain.ErrInvalidInput)
	}
	if taken, err := s.repo.EmailExists(ctx, input.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("%w: email already registered", domain.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PhoneNumber:  input.PhoneNumber,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.authResult(user)
}

func (s *UserService) Login(ctx context.Context, login, password string) (*AuthResult, error) {
	if login == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrInvalidInput)
	}

	user, err := s.repo.GetByLogin(ctx, login)
	if err != nil {
		// Do not reveal whether the account exists.
		return nil, fmt.Errorf("%w: invalid username or password", domain.ErrInvalidInput)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid username or password", domain.ErrInvalidInput)
	}

	return s.authResult(user)
}

func (s *UserService) GetProfile(ctx context.Context, userID int64) (*domain.User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID int64, input UpdateProfileInput) (*domain.User, error) {
	if input.FirstName == nil && input.LastName == nil && input.PhoneNumber == nil {
		return nil, fmt.Errorf("%w: no fields to update", domain.ErrInvalidInput)
	}
	err := s.repo.UpdateProfile(ctx, userID, repository.UserUpdate{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		PhoneNumber: input.PhoneNumber,
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, userID)
}

func (s *UserService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: new password must be at least 8 characters long", domain.ErrInvalidInput)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return fmt.Errorf("%w: current password is incorrect", domain.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, userID, string(hash))
}

func (s *UserService) authResult(user *domain.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Username, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

var _ UserUseCase = (*UserService)(nil)
