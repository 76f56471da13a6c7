package main

// Apply or inspect the documents schema:
//   go run ./cmd/migrate
//   go run ./cmd/migrate --check

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"flash-backend/internal/shared/config"
	"flash-backend/internal/shared/storage/db"
	"flash-backend/internal/shared/telemetry"
)

// exitPending is returned by --check when migrations are outstanding.
const exitPending = 3

var errPending = errors.New("migrations pending")

type options struct {
	check       bool
	databaseURL string
	timeout     time.Duration
}

func parseFlags(args []string) (options, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	var opts options
	fs.BoolVar(&opts.check, "check", false, "report the schema version and exit 3 when migrations are pending")
	fs.StringVar(&opts.databaseURL, "database-url", "", "postgres URL (defaults to DATABASE_URL)")
	fs.DurationVar(&opts.timeout, "timeout", 2*time.Minute, "give up after this long")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if opts.timeout <= 0 {
		return options{}, fmt.Errorf("--timeout must be positive, got %s", opts.timeout)
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	err = run(ctx, config.Load(), opts, os.Stdout)
	switch {
	case errors.Is(err, errPending):
		os.Exit(exitPending)
	case err != nil:
		telemetry.Error("migrate.failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, opts options, out io.Writer) error {
	if opts.databaseURL != "" {
		cfg.DocStoreType = "postgres"
		cfg.DatabaseURL = opts.databaseURL
	}
	if cfg.DocStoreType != "postgres" {
		fmt.Fprintf(out, "DOC_STORE=%s keeps no schema; nothing to migrate\n", cfg.DocStoreType)
		return nil
	}
	if cfg.DatabaseURL == "" {
		return errors.New("DOC_STORE=postgres needs DATABASE_URL or --database-url")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer sqlDB.Close()

	if opts.check {
		status, err := db.Status(ctx, sqlDB)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "schema version %d of %d\n", status.Applied, status.Latest)
		if status.Pending() {
			return errPending
		}
		return nil
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return err
	}
	fmt.Fprintln(out, "OK: documents schema is current")
	return nil
}
