package main

import (
	"errors"

	"github.com/Goofygiraffe06/otprelay/internal/config"
	"github.com/Goofygiraffe06/otprelay/internal/identifier"
	"github.com/Goofygiraffe06/otprelay/internal/models"
	"github.com/Goofygiraffe06/otprelay/store"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
)

// seedUser is the shape a seeded directory entry must have.
type seedUser struct {
	Email string `validate:"omitempty,email"`
	Phone string `validate:"omitempty,phone"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := identifier.RegisterValidations(v); err != nil {
		panic(err)
	}
	return v
}

// directoryCmd manages the offline SQLite user directory the relay reads
// when DIRECTORY_DRIVER=sqlite.
func (a *app) directoryCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "directory",
		Short: "Seed or query the offline SQLite user directory",
	}
	cmd.PersistentFlags().StringVar(&path, "db", config.DirectorySQLitePath(), "SQLite directory file")

	var user models.User
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a user so the relay reports the phone as registered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if user.Email == "" && user.Phone == "" {
				return errors.New("one of --email or --phone is required")
			}
			if err := validate.Struct(seedUser{Email: user.Email, Phone: user.Phone}); err != nil {
				a.ui.errorf("%s", a.locale.T("invalid_identifier"))
				return err
			}
			dir, err := store.NewSQLiteDirectory(path)
			if err != nil {
				return err
			}
			defer dir.Close()

			u, err := dir.AddUser(cmd.Context(), user)
			if err != nil {
				a.ui.errorf("%v", err)
				return err
			}
			a.ui.successf("%s", u.ID)
			return nil
		},
	}
	add.Flags().StringVar(&user.Email, "email", "", "email address")
	add.Flags().StringVar(&user.Phone, "phone", "", "phone number")
	add.Flags().StringVar(&user.FullName, "name", "", "full name")

	lookup := &cobra.Command{
		Use:   "lookup <email-or-phone>",
		Short: "Find users by email or phone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := store.NewSQLiteDirectory(path)
			if err != nil {
				return err
			}
			defer dir.Close()

			var users []models.User
			switch identifier.Classify(args[0]) {
			case identifier.Email:
				if u, ok := dir.GetUserByEmail(cmd.Context(), args[0]); ok {
					users = append(users, u)
				}
			case identifier.Phone:
				if users, err = dir.ListUsersByPhone(cmd.Context(), args[0]); err != nil {
					return err
				}
			default:
				err := errors.New(a.locale.T("invalid_identifier"))
				a.ui.errorf("%v", err)
				return err
			}

			if len(users) == 0 {
				a.ui.infof("no users")
			}
			for _, u := range users {
				a.ui.printf("%s\t%s\t%s\t%s\n", u.ID, u.Email, u.Phone, u.FullName)
			}
			return nil
		},
	}

	cmd.AddCommand(add, lookup)
	return cmd
}
