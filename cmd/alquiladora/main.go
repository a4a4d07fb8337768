package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/app"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/audit"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/bootstrap"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/config"
	authsvc "github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/services/auth"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/observability/logger"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/security/password"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/store"
)

func main() {
	var (
		configPath = envOr("CONFIG_PATH", "configs/config.yaml")
		envFile    = ".env"
		timeout    = 30 * time.Second
	)

	root := &cobra.Command{
		Use:           "alquiladora",
		Short:         "CLI de operación para el backend de Alquiladora Romero",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load(envFile)
			logger.Init(logger.Config{Env: "dev", Level: "warn"})
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", configPath, "ruta del config YAML (env CONFIG_PATH)")
	root.PersistentFlags().StringVar(&envFile, "env-file", envFile, "archivo .env")

	load := func() (*config.Config, context.Context, context.CancelFunc, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, nil, nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		return cfg, ctx, cancel, nil
	}

	// ─── migrate ───
	migrateCmd := &cobra.Command{Use: "migrate", Short: "Migraciones del esquema (goose)"}
	withSQL := func(fn func(ctx context.Context, s *store.SQLStore) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, ctx, cancel, err := load()
			if err != nil {
				return err
			}
			defer cancel()
			s, err := store.Open(ctx, store.Options{Driver: cfg.Storage.Driver, DSN: cfg.Storage.DSN})
			if err != nil {
				return err
			}
			defer s.Close()
			return fn(ctx, s)
		}
	}
	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Aplica las migraciones pendientes",
			RunE: withSQL(func(ctx context.Context, s *store.SQLStore) error {
				if err := store.Migrate(ctx, s.DB(), s.Dialect()); err != nil {
					return err
				}
				fmt.Println("ok")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Revierte la última migración",
			RunE: withSQL(func(ctx context.Context, s *store.SQLStore) error {
				return store.MigrateDown(ctx, s.DB(), s.Dialect())
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Muestra el estado de las migraciones",
			RunE: withSQL(func(ctx context.Context, s *store.SQLStore) error {
				return store.MigrationStatus(ctx, s.DB(), s.Dialect())
			}),
		},
	)

	// ─── unlock ───
	var unlockEmail string
	unlockCmd := &cobra.Command{
		Use:   "unlock",
		Short: "Borra el bloqueo por intentos fallidos de una cuenta",
		RunE: func(cmd *cobra.Command, args []string) error {
			if unlockEmail == "" {
				return errors.New("--email es requerido")
			}
			cfg, ctx, cancel, err := load()
			if err != nil {
				return err
			}
			defer cancel()
			st, err := app.OpenStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			acc, err := st.Accounts().GetByEmail(ctx, unlockEmail)
			if err != nil {
				return fmt.Errorf("cuenta %s: %w", unlockEmail, err)
			}
			tracker := authsvc.NewLockoutTracker(st.Lockouts(), cfg.Auth.MaxFailedAttempts, cfg.Auth.LockDuration, nil)
			if err := tracker.Clear(ctx, acc.ID); err != nil {
				return err
			}
			audit.Log(ctx, audit.AccountUnlocked, acc.ID, logger.String("by", "cli"))
			fmt.Printf("cuenta %d desbloqueada\n", acc.ID)
			return nil
		},
	}
	unlockCmd.Flags().StringVar(&unlockEmail, "email", "", "correo de la cuenta")

	// ─── hash-password ───
	hashCmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Imprime el digest argon2id de una contraseña leída de stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			plain, err := readSecret(cmd)
			if err != nil {
				return err
			}
			digest, err := password.NewHasher(password.Default).Hash(plain)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), digest)
			return nil
		},
	}

	// ─── create-admin ───
	var adminEmail, adminNombre, adminApellido string
	createAdminCmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Crea una cuenta con rol Administrador (contraseña por stdin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if adminEmail == "" || adminNombre == "" || adminApellido == "" {
				return errors.New("--email, --nombre y --apellido son requeridos")
			}
			plain, err := readSecret(cmd)
			if err != nil {
				return err
			}
			cfg, ctx, cancel, err := load()
			if err != nil {
				return err
			}
			defer cancel()

			c, err := app.New(ctx, cfg, app.Options{})
			if err != nil {
				return err
			}
			defer c.Close()

			id, err := bootstrap.CreateAdmin(ctx, c.Services.Register, bootstrap.AdminConfig{
				Email:     adminEmail,
				Password:  plain,
				Nombre:    adminNombre,
				ApellidoP: adminApellido,
			})
			if err != nil {
				return err
			}
			fmt.Printf("administrador creado: id=%d\n", id)
			return nil
		},
	}
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "correo")
	createAdminCmd.Flags().StringVar(&adminNombre, "nombre", "", "nombre")
	createAdminCmd.Flags().StringVar(&adminApellido, "apellido", "", "apellido paterno")

	root.AddCommand(migrateCmd, unlockCmd, hashCmd, createAdminCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// readSecret lee la primera línea de stdin (no se acepta por flag para no
// dejarla en el historial del shell).
func readSecret(cmd *cobra.Command) (string, error) {
	sc := bufio.NewScanner(cmd.InOrStdin())
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", errors.New("se esperaba la contraseña en stdin")
	}
	plain := strings.TrimRight(sc.Text(), "\r\n")
	if plain == "" {
		return "", errors.New("contraseña vacía")
	}
	return plain, nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
