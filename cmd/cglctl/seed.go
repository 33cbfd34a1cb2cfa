package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cgl/internal/domain/auth"
	"cgl/internal/infrastructure/mail"
	"cgl/internal/infrastructure/storage/postgres"
	"cgl/internal/infrastructure/storage/postgres/auth_repo"
)

// seedFlags are the seed-user inputs; empty flags fall back to SEED_* variables.
type seedFlags struct {
	email         string
	password      string
	firstName     string
	lastName      string
	userType      string
	resetPassword bool
}

func (f seedFlags) request(getenv func(string) string) auth.RegisterRequest {
	pick := func(flag, env, def string) string {
		if flag != "" {
			return flag
		}
		if v := strings.TrimSpace(getenv(env)); v != "" {
			return v
		}
		return def
	}
	return auth.RegisterRequest{
		Email:     pick(f.email, "SEED_EMAIL", ""),
		Password:  pick(f.password, "SEED_PASSWORD", ""),
		FirstName: pick(f.firstName, "SEED_FIRST_NAME", "System"),
		LastName:  pick(f.lastName, "SEED_LAST_NAME", "Admin"),
		UserType:  auth.UserType(strings.ToUpper(pick(f.userType, "SEED_USER_TYPE", string(auth.UserTypeAdmin)))),
	}
}

func seedUserCmd(configPath *string) *cobra.Command {
	var flags seedFlags

	cmd := &cobra.Command{
		Use:   "seed-user",
		Short: "Create or update a user",
		Long: `Create a user, or update the profile of an existing one. The password
of an existing user is only replaced with --reset-password.

Flags default to SEED_EMAIL, SEED_PASSWORD, SEED_FIRST_NAME, SEED_LAST_NAME
and SEED_USER_TYPE (default ADMIN).

Examples:
  cglctl seed-user --email admin@cgl.local --password 'S3cret!'
  SEED_EMAIL=ops@cgl.local SEED_PASSWORD=x cglctl seed-user --reset-password`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := flags.request(os.Getenv)
			if req.Email == "" || req.Password == "" {
				return fmt.Errorf("email and password are required (--email/--password or SEED_EMAIL/SEED_PASSWORD)")
			}
			if !req.UserType.Valid() {
				return fmt.Errorf("unknown user type %q", req.UserType)
			}

			cfg, pool, err := connect(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer pool.Close()

			txManager := postgres.NewTxManager(pool)
			service := auth.NewService(
				auth_repo.NewUserRepo(txManager),
				txManager,
				auth.NewJWTService(auth.DefaultJWTConfig(cfg.Auth.JWTSecret)),
				mail.LogMailer{},
				auth.DefaultServiceConfig(),
			)

			user, created, err := service.SeedUser(cmd.Context(), req, flags.resetPassword)
			if err != nil {
				return err
			}

			status := color.New(color.FgBlue).Sprint("UPDATED")
			if created {
				status = color.New(color.FgGreen).Sprint("CREATED")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s) %s\n", status, user.Email, user.UserType, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.email, "email", "", "user email")
	cmd.Flags().StringVar(&flags.password, "password", "", "user password")
	cmd.Flags().StringVar(&flags.firstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&flags.lastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&flags.userType, "user-type", "", "BOOK_READER, ADMIN, SILVER, GOLD or BASIC")
	cmd.Flags().BoolVar(&flags.resetPassword, "reset-password", false, "replace the password of an existing user")

	return cmd
}
