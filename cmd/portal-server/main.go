package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/config"
	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/platform/auth"
	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/platform/db"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "portal-server",
		Short: "Care coordination portal API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(adminCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var seed adminFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the portal API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(seed)
		},
	}
	cmd.Flags().StringVar(&seed.name, "admin-name", "Administrator", "Name of the administrator provisioned at startup")
	cmd.Flags().StringVar(&seed.email, "admin-email", "", "Provision an administrator with this email at startup")
	cmd.Flags().StringVar(&seed.password, "admin-password", "", "Password of the administrator provisioned at startup")
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	// migrate up
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(ctx context.Context, m *db.Migrator, schema string) error {
				fmt.Printf("Running migrations on schema: %s\n", schema)
				count, err := m.Up(ctx)
				if err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				fmt.Printf("Applied %d migration(s) successfully.\n", count)
				return nil
			})
		},
	}
	migrationFlags(upCmd)
	cmd.AddCommand(upCmd)

	// migrate status
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(ctx context.Context, m *db.Migrator, schema string) error {
				statuses, err := m.Status(ctx)
				if err != nil {
					return fmt.Errorf("failed to get migration status: %w", err)
				}

				fmt.Printf("Migration status for schema: %s\n", schema)
				fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
				fmt.Println("---------- ---------------------------------------- ---------- --------------------")
				for _, s := range statuses {
					status := "pending"
					appliedAt := ""
					if s.Applied {
						status = "applied"
						if s.AppliedAt != nil {
							appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
						}
					}
					fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
				}
				return nil
			})
		},
	}
	migrationFlags(statusCmd)
	cmd.AddCommand(statusCmd)

	return cmd
}

func migrationFlags(cmd *cobra.Command) {
	cmd.Flags().String("schema", db.DefaultSchema, "Target schema for migrations")
	cmd.Flags().String("dir", "", "Path to migrations directory (defaults to MIGRATIONS_DIR)")
}

func withMigrator(cmd *cobra.Command, fn func(ctx context.Context, m *db.Migrator, schema string) error) error {
	schema, _ := cmd.Flags().GetString("schema")
	dir, _ := cmd.Flags().GetString("dir")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required for migrations")
	}
	if dir == "" {
		dir = cfg.MigrationsDir
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, poolConfig(cfg, zerolog.Nop()))
	if err != nil {
		return err
	}
	defer pool.Close()

	return fn(ctx, db.NewMigrator(pool, dir).WithSchema(schema), schema)
}

type adminFlags struct {
	name     string
	email    string
	password string
}

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage administrator accounts",
	}

	var flags adminFlags
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.StorageDriver != config.StoragePostgres {
				return fmt.Errorf("admin create needs the %s storage driver; use serve --admin-email with %s", config.StoragePostgres, cfg.StorageDriver)
			}

			ctx := context.Background()
			st, closeStores, err := openStores(ctx, cfg, zerolog.Nop())
			if err != nil {
				return err
			}
			defer closeStores()

			svcs := newServices(st, auth.NewBcryptHasher(cfg.BcryptCost), zerolog.Nop())
			acct, created, err := provisionAdmin(ctx, svcs.identity, flags.name, flags.email, flags.password)
			if err != nil {
				return err
			}
			if !created {
				return fmt.Errorf("email %s is already registered", flags.email)
			}
			fmt.Printf("Created administrator %s (%s)\n", acct.Email, acct.ID)
			return nil
		},
	}
	createCmd.Flags().StringVar(&flags.name, "name", "Administrator", "Display name")
	createCmd.Flags().StringVar(&flags.email, "email", "", "Login email")
	createCmd.Flags().StringVar(&flags.password, "password", "", "Login password")
	_ = createCmd.MarkFlagRequired("email")
	_ = createCmd.MarkFlagRequired("password")
	cmd.AddCommand(createCmd)

	return cmd
}

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return logger.Level(level)
}

func runServer(seed adminFlags) error {
	// Config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	for _, w := range cfg.Warnings() {
		logger.Warn().Msg(w)
	}

	// Storage
	ctx := context.Background()
	st, closeStores, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("failed to open storage")
	}
	defer closeStores()
	logger.Info().Str("driver", cfg.StorageDriver).Msg("storage ready")

	e, svcs, err := newServer(cfg, st, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build server")
	}

	if seed.email != "" {
		acct, created, err := provisionAdmin(ctx, svcs.identity, seed.name, seed.email, seed.password)
		switch {
		case err != nil:
			logger.Fatal().Err(err).Msg("failed to provision administrator")
		case created:
			logger.Info().Str("account_id", acct.ID.String()).Msg("administrator provisioned")
		default:
			logger.Info().Str("email", seed.email).Msg("administrator already registered")
		}
	}

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Bool("tls", cfg.TLSEnabled).Msg("starting server")
		var err error
		if cfg.TLSEnabled {
			err = e.StartTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = e.Start(addr)
		}
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
