// notifications is the terminal seller dashboard: a compact notification
// dropdown and the full notification list, both kept live by the API's
// change stream.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"seller-dashboard/internal/client"
	"seller-dashboard/internal/config"
	"seller-dashboard/internal/pkg/i18n"
	"seller-dashboard/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath, localesPath, logOutput string

	flagSet := pflag.NewFlagSet("notifications", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", config.DefaultClientConfigPath(), "path to the YAML config file")
	flagSet.String("api", "", "API base URL, e.g. http://localhost:8080/api/v1")
	flagSet.String("token", "", "access token for the signed-in seller")
	flagSet.String("locale", "", "label language (en, id)")
	flagSet.StringVar(&localesPath, "locales", "", "directory with extra label catalogues")
	flagSet.StringVar(&logOutput, "log-output", "", "write logs to this file instead of discarding them")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.LoadClientConfig(configPath, flagSet)
	if err != nil {
		return err
	}
	if cfg.Token == "" {
		return fmt.Errorf("no access token: set token in %s or pass --token", configPath)
	}

	if err := i18n.LoadDefaults(); err != nil {
		return err
	}
	if localesPath != "" {
		if err := i18n.LoadTranslations(localesPath); err != nil {
			return fmt.Errorf("loading locales from %s: %w", localesPath, err)
		}
	}

	// the terminal belongs to the UI, so logs go to a file or nowhere
	logger := log.New(io.Discard, "", log.LstdFlags)
	if logOutput != "" {
		f, err := os.OpenFile(logOutput, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return err
		}
		defer f.Close()
		logger.SetOutput(f)
		log.SetOutput(f)
	} else {
		log.SetOutput(io.Discard)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	model := ui.New(ctx, client.New(cfg.APIURL, cfg.Token), ui.Config{
		Locale:        cfg.Locale,
		DropdownLimit: cfg.DropdownLimit,
		PageLimit:     cfg.PageLimit,
		Logger:        logger,
	})

	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()

	cancel()
	model.Close()
	return err
}
