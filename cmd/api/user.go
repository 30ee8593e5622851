package main

import (
	"errors"
	"fmt"

	"github.com/01moynul/farinez-golang/internal/database"
	"github.com/01moynul/farinez-golang/internal/models"
	"github.com/01moynul/farinez-golang/internal/store"
	"github.com/spf13/cobra"
)

var (
	newUserName     string
	newUserUsername string
	newUserEmail    string
	newUserPassword string
	newUserRole     string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage admin panel accounts",
}

// userCreateCmd bootstraps accounts, including the first administrador that
// the HTTP API cannot create on its own.
var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin panel account",
	RunE: func(cmd *cobra.Command, args []string) error {
		switch newUserRole {
		case models.RoleAdmin, models.RoleOperator, models.RoleCustomer:
		default:
			return fmt.Errorf("unknown tipo %q", newUserRole)
		}
		if len(newUserPassword) < 8 {
			return errors.New("password must be at least 8 characters")
		}
		if cfg.DSN == "" {
			return errors.New("DB_DSN_PRIMARY environment variable is not set")
		}

		db, err := database.OpenDB(cfg.DSN, log)
		if err != nil {
			return err
		}
		defer db.Close()

		var password models.Password
		if err := password.Set(newUserPassword); err != nil {
			return fmt.Errorf("hash password: %w", err)
		}

		users := store.NewMySQL(db).Users
		u, err := users.Create(cmd.Context(), models.User{
			Name:         newUserName,
			Username:     newUserUsername,
			Email:        newUserEmail,
			Role:         newUserRole,
			PasswordHash: password.Hash,
		})
		if err != nil {
			return err
		}
		log.WithField("id", u.ID).WithField("username", u.Username).Info("User created")
		return nil
	},
}

func init() {
	f := userCreateCmd.Flags()
	f.StringVar(&newUserName, "nombre", "", "display name")
	f.StringVar(&newUserUsername, "username", "", "login name")
	f.StringVar(&newUserEmail, "email", "", "email address")
	f.StringVar(&newUserPassword, "password", "", "password (min 8 characters)")
	f.StringVar(&newUserRole, "tipo", models.RoleAdmin, "administrador, operador or cliente")
	_ = userCreateCmd.MarkFlagRequired("username")
	_ = userCreateCmd.MarkFlagRequired("password")
	userCmd.AddCommand(userCreateCmd)
}
