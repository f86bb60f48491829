package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/fieldsync/internal/client/client"
	"github.com/dmitrijs2005/fieldsync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/fieldsync/internal/dbx"
	"github.com/google/uuid"
)

// AuthService signs the device in and keeps the session in local metadata so
// one-shot commands can reuse it.
type AuthService interface {
	Login(ctx context.Context, username, password string) error
	// RestoreSession loads a saved token into the client and returns the
	// user name, or ErrNotLoggedIn.
	RestoreSession(ctx context.Context) (string, error)
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client client.Client
	db     *sql.DB
}

func NewAuthService(client client.Client, db *sql.DB) AuthService {
	return &authService{client: client, db: db}
}

func (a *authService) Login(ctx context.Context, username, password string) error {
	token, err := a.client.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("login error: %w", err)
	}

	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, metadata.KeyUserName, []byte(username)); err != nil {
			return err
		}
		return repo.Set(ctx, metadata.KeyAccessToken, []byte(token))
	})
}

func (a *authService) RestoreSession(ctx context.Context) (string, error) {
	repo := metadata.NewSQLiteRepository(a.db)

	token, err := repo.Get(ctx, metadata.KeyAccessToken)
	if err != nil {
		return "", err
	}
	if len(token) == 0 {
		return "", ErrNotLoggedIn
	}
	user, err := repo.Get(ctx, metadata.KeyUserName)
	if err != nil {
		return "", err
	}

	a.client.SetAccessToken(string(token))
	return string(user), nil
}

func (a *authService) Logout(ctx context.Context) error {
	a.client.SetAccessToken("")
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, metadata.KeyAccessToken); err != nil {
			return err
		}
		return repo.Delete(ctx, metadata.KeyUserName)
	})
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}

// EnsureDeviceID returns the id of this installation, generating and storing
// it on first use.
func EnsureDeviceID(ctx context.Context, repo metadata.Repository) (string, error) {
	v, err := repo.Get(ctx, metadata.KeyDeviceID)
	if err != nil {
		return "", err
	}
	if len(v) > 0 {
		return string(v), nil
	}

	id := uuid.NewString()
	if err := repo.Set(ctx, metadata.KeyDeviceID, []byte(id)); err != nil {
		return "", err
	}
	return id, nil
}
