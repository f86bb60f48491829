package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/fieldsync/internal/client/client"
	"github.com/dmitrijs2005/fieldsync/internal/client/config"
	"github.com/dmitrijs2005/fieldsync/internal/client/services"
	"github.com/dmitrijs2005/fieldsync/internal/filex"
	"github.com/dmitrijs2005/fieldsync/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config    *config.Config
	auth      services.AuthService
	outbox    services.OutboxService
	sync      services.SyncService
	fieldwork services.FieldworkService
	log       logging.Logger
	reader    *bufio.Reader
	out       io.Writer
	closeFn   func() error

	mu       sync.Mutex
	mode     Mode
	userName string
}

// NewApp opens the local database and builds the services on top of it.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	repos, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, err
	}

	attachments, err := filex.EnsureDir(c.AttachmentsDir)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	deviceID, err := services.EnsureDeviceID(ctx, repos.Metadata)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr, deviceID)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	ob := services.NewOutboxService(repos.Outbox, log)
	a := &App{
		config: c,
		auth:   services.NewAuthService(apiClient, repos.DB),
		outbox: ob,
		sync: services.NewSyncService(repos.Outbox, apiClient,
			services.WithItemTimeout(c.ItemTimeout),
			services.WithLogger(log.With("component", "sync")),
			services.WithMetadata(repos.Metadata),
		),
		fieldwork: services.NewFieldworkService(repos.WorkItems, ob, attachments, nil, log),
		log:       log,
		reader:    bufio.NewReader(os.Stdin),
		out:       os.Stdout,
		closeFn: func() error {
			return errors.Join(apiClient.Close(), repos.Close())
		},
	}

	if user, err := a.auth.RestoreSession(ctx); err == nil {
		a.userName = user
	}
	log.Debug(ctx, "client ready", "device_id", deviceID, "database", c.DatabasePath)
	return a, nil
}

func (a *App) Close() error {
	if a.closeFn == nil {
		return nil
	}
	return a.closeFn()
}

// setMode records the connectivity mode and returns the previous one.
func (a *App) setMode(mode Mode) Mode {
	a.mu.Lock()
	prev := a.mode
	a.mode = mode
	a.mu.Unlock()

	if prev != mode {
		a.log.Info(context.Background(), "connectivity changed", "mode", mode)
	}
	return prev
}

func (a *App) currentMode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) user() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.userName
}

func (a *App) setUser(name string) {
	a.mu.Lock()
	a.userName = name
	a.mu.Unlock()
}

func (a *App) isLoggedIn() bool {
	return a.user() != ""
}

func (a *App) getStatus() string {
	s := ""
	if u := a.user(); u != "" {
		s = u + " "
	}
	if m := a.currentMode(); m != "" {
		s += string(m)
	}
	if s != "" {
		s = "(" + s + ")"
	}
	return s
}
