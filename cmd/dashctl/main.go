// dashctl runs the one-off operations around the notifications table:
// schema migrations, toggling row-level security, seeding demo rows and
// minting local access tokens.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"seller-dashboard/internal/config"
	"seller-dashboard/internal/database"
	"seller-dashboard/internal/domain"
	"seller-dashboard/internal/repository"
	"seller-dashboard/internal/service/auth"
)

const usage = `Usage: dashctl <command> [flags]

Commands:
  migrate                        apply pending schema migrations
  rls on|off                     enable or disable row-level security on notifications
  seed --account <uuid> [--count N]
                                 insert demo notifications for an account
  token --account <uuid> [--email] [--ttl]
                                 mint an access token for local use
`

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if err := run(context.Background(), os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprint(os.Stderr, usage)
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return pflag.ErrHelp
	}

	cfg := config.Load()
	command, rest := args[0], args[1:]

	switch command {
	case "migrate":
		return runMigrate(ctx, cfg)
	case "rls":
		return runRLS(ctx, cfg, rest)
	case "seed":
		return runSeed(ctx, cfg, rest)
	case "token":
		return runToken(cfg, rest)
	case "help", "-h", "--help":
		return pflag.ErrHelp
	}

	return fmt.Errorf("unknown command %q", command)
}

func runMigrate(ctx context.Context, cfg *config.Config) error {
	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	applied, err := database.Migrate(ctx, db)
	if err != nil {
		return err
	}

	fmt.Printf("applied %d migrations\n", applied)
	return nil
}

func runRLS(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		return errors.New("rls expects exactly one argument: on or off")
	}

	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	enabled := args[0] == "on"
	if err := database.SetRowLevelSecurity(ctx, db, enabled); err != nil {
		return err
	}

	fmt.Printf("row-level security %s\n", args[0])
	return nil
}

func runSeed(ctx context.Context, cfg *config.Config, args []string) error {
	var accountFlag string
	var count int

	flagSet := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	flagSet.StringVar(&accountFlag, "account", "", "account id that owns the demo rows")
	flagSet.IntVar(&count, "count", 12, "number of notifications to insert")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	accountID, err := parseAccount(accountFlag)
	if err != nil {
		return err
	}
	if count < 1 {
		return errors.New("--count must be at least 1")
	}

	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	inserted, err := database.Seed(ctx, repository.NewNotificationRepository(db), accountID, count, time.Now())
	if err != nil {
		return err
	}

	fmt.Printf("inserted %d notifications for %s\n", inserted, accountID)
	return nil
}

func runToken(cfg *config.Config, args []string) error {
	var accountFlag, email string
	var ttl time.Duration

	flagSet := pflag.NewFlagSet("token", pflag.ContinueOnError)
	flagSet.StringVar(&accountFlag, "account", "", "account id placed in the sub claim")
	flagSet.StringVar(&email, "email", "", "email claim")
	flagSet.DurationVar(&ttl, "ttl", cfg.JWTAccessExpiry, "token lifetime")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	accountID, err := parseAccount(accountFlag)
	if err != nil {
		return err
	}

	token, err := auth.NewService(cfg).IssueAccessToken(domain.Account{
		ID:    accountID,
		Email: email,
		Role:  domain.RoleAuthenticated,
	}, ttl)
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}

func parseAccount(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, errors.New("--account is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid --account %q: %w", raw, err)
	}
	return id, nil
}
