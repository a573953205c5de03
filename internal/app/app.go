// Package app wires configuration, storage, clients and services into the
// shared application core used by cmd/site-server.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/learnedgeek/site/internal/clients/linkedin"
	"github.com/learnedgeek/site/internal/common"
	"github.com/learnedgeek/site/internal/interfaces"
	"github.com/learnedgeek/site/internal/models"
	"github.com/learnedgeek/site/internal/services/content"
	"github.com/learnedgeek/site/internal/services/imageconv"
	"github.com/learnedgeek/site/internal/services/mailer"
	"github.com/learnedgeek/site/internal/services/publisher"
	"github.com/learnedgeek/site/internal/storage"
)

// App holds all initialized services and clients.
type App struct {
	Config      *common.Config
	Logger      *common.Logger
	Storage     interfaces.StorageManager
	Content     interfaces.ContentService
	Mailer      interfaces.Mailer
	Images      interfaces.ImageConverter
	Publisher   interfaces.Publisher
	StartupTime time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, clients and services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	binDir := getBinaryDir()

	// Load configuration - check provided path, LG_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("LG_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "site.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/site.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage path to binary directory
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := storage.NewManager(logger, &config.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	ctx := context.Background()
	if err := seedAdminUser(ctx, storageManager, config, logger); err != nil {
		storageManager.Close()
		return nil, err
	}

	// LinkedIn publishing client
	li := config.Clients.LinkedIn
	var liClient interfaces.LinkedInClient
	if li.IsConfigured() {
		liClient = linkedin.NewClient(li.ClientID, li.ClientSecret, li.RedirectURL,
			linkedin.WithLogger(logger),
			linkedin.WithRateLimit(li.RateLimit),
			linkedin.WithTimeout(li.GetTimeout()),
		)
	} else {
		logger.Warn().Msg("LinkedIn credentials not configured - social publishing will be unavailable")
	}

	pub := publisher.NewService(
		liClient,
		storageManager.SessionStore(),
		storageManager.StateStore(),
		li.Scopes,
		li.IsConfigured(),
		logger,
	)

	app := &App{
		Config:      config,
		Logger:      logger,
		Storage:     storageManager,
		Content:     content.NewService(config.Site.ContentDir, logger),
		Mailer:      mailer.NewService(config.Mail, logger),
		Images:      imageconv.NewConverter(""),
		Publisher:   pub,
		StartupTime: time.Now(),
	}

	return app, nil
}

// seedAdminUser creates the admin account from configuration when it does
// not exist yet. The plaintext bootstrap password never touches the store.
func seedAdminUser(ctx context.Context, store interfaces.StorageManager, config *common.Config, logger *common.Logger) error {
	email := config.Auth.AdminEmail
	if email == "" {
		logger.Warn().Msg("Admin account not configured - admin panel will be unavailable")
		return nil
	}

	users := store.UserStore()
	if _, err := users.Get(ctx, email); err == nil {
		return nil
	}

	if config.Auth.AdminPassword == "" {
		return fmt.Errorf("admin user '%s' does not exist and no bootstrap password is configured", email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(config.Auth.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	if err := users.Save(ctx, &models.AdminUser{
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	logger.Info().Str("email", email).Msg("Admin account created")
	return nil
}

// Close releases application resources.
func (a *App) Close() {
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("Failed to close storage")
		}
	}
}
