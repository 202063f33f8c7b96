package main

import (
	"errors"
	"fmt"

	"lab-inventory/internal/config"
	"lab-inventory/internal/model"
	"lab-inventory/internal/repository"
	"lab-inventory/internal/seed"
	"lab-inventory/pkg/database"
	"lab-inventory/pkg/logger"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.Laboratory{},
		&model.Privilege{},
		&model.Role{},
		&model.User{},
		&model.Category{},
		&model.Supplier{},
		&model.Material{},
		&model.InventoryLog{},
		&model.Borrow{},
		&model.Disposition{},
		&model.ReagentDispense{},
		&model.Calibration{},
		&model.IncidentForm{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// withDB opens the database for a one-shot command and closes it afterwards.
func withDB(conf *config.Config, fn func(db *gorm.DB) error) error {
	db, err := database.Connect(conf.Database.DSN(), conf.IsDevelopment())
	if err != nil {
		return err
	}
	defer database.Close(db)
	return fn(db)
}

func newMigrateCmd(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cfg(), func(db *gorm.DB) error {
				if err := migrate(db); err != nil {
					return err
				}
				logger.Logger.Info().Msg("Migration complete")
				return nil
			})
		},
	}
}

func newSeedCmd(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed laboratories, roles, privileges, categories and the administrator",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf := cfg()
			return withDB(conf, func(db *gorm.DB) error {
				admin := seed.Admin{Email: conf.Auth.AdminEmail, Password: conf.Auth.AdminPassword}
				return seed.New(db).Run(cmd.Context(), admin)
			})
		},
	}
}

func newResetPasswordCmd(cfg func() *config.Config) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password for an account and end its session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(password) < 6 {
				return errors.New("password must be at least 6 characters")
			}
			return withDB(cfg(), func(db *gorm.DB) error {
				if err := seed.ResetPassword(cmd.Context(), repository.NewUserRepo(db), email, password); err != nil {
					return err
				}
				logger.Logger.Info().Str("email", email).Msg("Password reset")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "admin@example.com", "account email")
	cmd.Flags().StringVar(&password, "password", "", "new password")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
