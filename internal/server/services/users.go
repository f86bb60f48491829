// Package services contains the server-side use-cases: authentication and
// the idempotent application of client operations.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/fieldsync/internal/common"
	"github.com/dmitrijs2005/fieldsync/internal/server/auth"
	"github.com/dmitrijs2005/fieldsync/internal/server/config"
	"github.com/dmitrijs2005/fieldsync/internal/server/models"
	"github.com/dmitrijs2005/fieldsync/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when the user does not exist so that an
// unknown name costs the same as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("fieldsync"), bcrypt.DefaultCost)

// bcryptCost is a test seam.
var bcryptCost = bcrypt.DefaultCost

// UserService handles accounts and access tokens.
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// Register creates a user with a bcrypt hash of password.
func (s *UserService) Register(ctx context.Context, userName, password string) (*models.User, error) {
	if userName == "" || password == "" {
		return nil, fmt.Errorf("%w: user name and password are required", common.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return s.repomanager.Users(s.db).Create(ctx, &models.User{UserName: userName, PasswordHash: hash})
}

// Login checks the credentials and returns a signed access token.
// Unknown users and wrong passwords both yield common.ErrUnauthorized.
func (s *UserService) Login(ctx context.Context, userName, password string) (string, error) {
	user, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return "", common.ErrUnauthorized
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return "", common.ErrUnauthorized
	}

	return auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
}

// Authenticate returns the user id carried by a valid access token.
func (s *UserService) Authenticate(token string) (string, error) {
	return auth.GetUserIDFromToken(token, s.jwtSecret)
}

// EnsureUser creates the account described by "name:password" unless a user
// with that name already exists. An empty value is a no-op.
func (s *UserService) EnsureUser(ctx context.Context, account string) error {
	if account == "" {
		return nil
	}
	name, password, ok := strings.Cut(account, ":")
	if !ok || name == "" || password == "" {
		return fmt.Errorf("%w: bootstrap user must be name:password", common.ErrValidation)
	}

	_, err := s.Register(ctx, name, password)
	if errors.Is(err, common.ErrAlreadyExists) {
		return nil
	}
	return err
}
