package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"storefront/internal/config"
	mydb "storefront/internal/db"
	"storefront/internal/logger"
	models "storefront/internal/models"
	"storefront/internal/store"
)

type env struct {
	cfg config.Config
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Catalog, cart and admin web shop",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			e.cfg = config.Load()
			e.log = logger.New(os.Stdout, e.cfg.IsProduction())
			slog.SetDefault(e.log)
		},
		// без подкоманды просто стартуем сервер
		RunE: func(cmd *cobra.Command, args []string) error { return e.serve(cmd.Context()) },
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server",
			RunE:  func(cmd *cobra.Command, args []string) error { return e.serve(cmd.Context()) },
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update database tables",
			RunE: func(cmd *cobra.Command, args []string) error {
				db, err := e.openDB()
				if err != nil {
					return err
				}
				defer closeDB(db)
				e.log.Info("migrations applied")
				return nil
			},
		},
		newUserCmd(e),
	)
	return root
}

func newUserCmd(e *env) *cobra.Command {
	user := &cobra.Command{Use: "user", Short: "Manage user accounts"}

	var email, password string
	var admin bool
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a user (use --admin for the back office)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(password) < 6 {
				return fmt.Errorf("password must be at least 6 characters")
			}
			db, err := e.openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			u := &models.User{Email: email, Role: models.RoleUser}
			if admin {
				u.Role = models.RoleAdmin
			}
			if err := u.SetPassword(password); err != nil {
				return err
			}
			if err := store.NewUsers(db).Create(cmd.Context(), u); err != nil {
				return err
			}
			e.log.Info("user created", "user_id", u.ID, "email", u.Email, "role", u.Role)
			return nil
		},
	}
	create.Flags().StringVar(&email, "email", "", "login email")
	create.Flags().StringVar(&password, "password", "", "password (min 6 chars)")
	create.Flags().BoolVar(&admin, "admin", false, "grant the admin role")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("password")
	user.AddCommand(create)
	return user
}

func (e *env) openDB() (*gorm.DB, error) {
	if e.cfg.DBDriver == "postgres" && e.cfg.DBDSN == "" {
		// .env ищется относительно текущего каталога
		wd, _ := os.Getwd()
		e.log.Warn("DB_DSN is empty", "cwd", wd, "env_here", fileExists(".env"), "env_parent", fileExists("../.env"))
	}
	db, err := mydb.Open(e.cfg.DBDriver, e.cfg.DBDSN)
	if err != nil {
		return nil, err
	}
	if err := mydb.Migrate(db); err != nil {
		closeDB(db)
		return nil, err
	}
	return db, nil
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func (e *env) serve(ctx context.Context) error {
	if e.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	db, err := e.openDB()
	if err != nil {
		return err
	}
	defer closeDB(db)

	a, err := build(ctx, e.cfg, db, e.log)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              ":" + e.cfg.Port,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		e.log.Info("server listening", "addr", srv.Addr, "env", e.cfg.Env)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	e.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
