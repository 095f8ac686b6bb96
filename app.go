package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"lokomotiv_server_go/auth"
	"lokomotiv_server_go/cache"
	"lokomotiv_server_go/config"
	"lokomotiv_server_go/controllers"
	"lokomotiv_server_go/data"
	"lokomotiv_server_go/flagx"
	"lokomotiv_server_go/logging"
	"lokomotiv_server_go/models"
)

const shutdownTimeout = 10 * time.Second

// readPassword - точка подмены term.ReadPassword в тестах.
var readPassword = term.ReadPassword

type App struct {
	config *config.Config
	logger logging.Logger
	store  *data.Store
	cache  *cache.Cache
}

// NewApp подключается к БД и применяет миграции.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	store, err := data.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("db migrate error: %w", err)
	}
	return &App{config: cfg, logger: logger, store: store}, nil
}

func (app *App) Close() {
	if err := app.cache.Close(); err != nil {
		app.logger.Warn(context.Background(), "cache close failed", "error", err)
	}
	if err := app.store.Close(); err != nil {
		app.logger.Warn(context.Background(), "db close failed", "error", err)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Serve запускает HTTP-сервер и останавливает его по сигналу.
func (app *App) Serve(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	app.initSignalHandler(cancelFunc)

	if app.config.CacheTTL > 0 {
		c, err := cache.Open(app.config.CacheTTL, app.logger)
		if err != nil {
			app.logger.Warn(ctx, "cache disabled", "error", err)
		} else {
			app.cache = c
		}
	}

	tokens := auth.NewTokenService(app.config.SecretKey, app.config.TokenValidity)
	handler := controllers.NewHandler(app.store, app.cache, tokens, app.logger)

	srv := &http.Server{
		Addr:              app.config.HTTPAddr,
		Handler:           handler.Routes(app.config.RequestTimeout),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "server started", "addr", app.config.HTTPAddr, "driver", app.config.DatabaseDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	app.logger.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// CreateAdmin создает администратора. Пароль запрашивается без эха.
//
//	lokomotiv_server_go create-admin -u admin -name "Bosh administrator"
func (app *App) CreateAdmin(ctx context.Context, args []string, w io.Writer) (*models.User, error) {
	var username, fullName string
	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&username, "u", "admin", "username")
	fs.StringVar(&fullName, "name", "Administrator", "full name")
	if err := fs.Parse(flagx.FilterArgs(args, []string{"-u", "-name"})); err != nil {
		return nil, err
	}

	if _, err := fmt.Fprintf(w, "Password for %s: ", username); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}

	in := &models.UserInput{
		Username: strings.TrimSpace(username),
		FullName: fullName,
		Role:     models.RoleAdmin,
		Password: string(pw),
	}
	if err := in.Validate(models.ModeCreate); err != nil {
		return nil, err
	}
	user, err := app.store.CreateUser(ctx, models.Scope{}, in)
	if err != nil {
		return nil, err
	}
	app.logger.Info(ctx, "admin created", "user_id", user.ID, "username", user.Username)
	return user, nil
}
