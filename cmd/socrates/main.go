// Command socrates syncs tutoring projects with GitHub repositories.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/socrates/internal/adapters/driven/config/file"
	"github.com/custodia-labs/socrates/internal/adapters/driven/git"
	"github.com/custodia-labs/socrates/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/socrates/internal/adapters/driving/cli"
	"github.com/custodia-labs/socrates/internal/connectors/github"
	"github.com/custodia-labs/socrates/internal/core/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx)
	stop()
	os.Exit(code)
}

func run(ctx context.Context) int {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read settings: %v\n", err)
		return 1
	}

	store, err := sqlite.NewStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	api, err := github.NewClient(github.Options{BaseURL: settings.GitHub.BaseURL})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to configure GitHub client: %v\n", err)
		return 1
	}
	runner := git.NewRunner()

	handler := services.NewGitHubSyncHandler(api, runner, settings.Sync)
	cli.SetServices(&cli.Services{
		Handler:  handler,
		Sync:     services.NewProjectSyncService(handler, api, runner, store.ProjectStore(), store.ProjectFileStore(), settings.Sync),
		Projects: services.NewProjectService(store.ProjectStore(), store.ProjectFileStore()),
		Settings: settingsService,
	})
	cli.SetVersion(version)

	if err := cli.Execute(ctx); err != nil {
		return 1
	}
	return 0
}
