package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Options are the global flags passed to the bootstrap.
type Options struct {
	ConfigDir string
	Verbose   bool
}

// App holds the wired services for one command invocation.
type App struct {
	Settings  *domain.AppSettings
	Retrieval driving.RetrievalService
	Chat      driving.ChatService
	Auth      driving.AuthService
	Health    driving.HealthService
	Prompts   driven.PromptStore

	// Background tasks run for the lifetime of long-running commands.
	Background []func(ctx context.Context) error

	// Closers release resources in reverse order.
	Closers []func() error
}

// Close runs every closer, last registered first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.Closers) - 1; i >= 0; i-- {
		errs = append(errs, a.Closers[i]())
	}
	return errors.Join(errs...)
}

// Bootstrap builds services for commands. The settings service is separate
// so configuration commands work without reachable backends.
type Bootstrap interface {
	Settings(opts Options) (driving.SettingsService, error)
	Open(ctx context.Context, opts Options) (*App, error)
}

var bootstrap Bootstrap

// SetBootstrap sets the service builder used by every command.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

func currentOptions() Options {
	return Options{ConfigDir: configDir, Verbose: verbose}
}

func openApp(cmd *cobra.Command) (*App, error) {
	if bootstrap == nil {
		return nil, errors.New("application not configured")
	}
	return bootstrap.Open(cmd.Context(), currentOptions())
}

func openSettings() (driving.SettingsService, error) {
	if bootstrap == nil {
		return nil, errors.New("settings service not configured")
	}
	return bootstrap.Settings(currentOptions())
}
