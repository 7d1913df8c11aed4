package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"charpix/internal/auth"
	"charpix/internal/config"
	"charpix/internal/models"
	"charpix/internal/store"
)

// User management works against the database directly so password hashes
// never transit the HTTP API.
func newUserCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{Use: "user", Short: "Manage login accounts"}
	cmd.AddCommand(
		newUserAddCmd(cfg, jsonOutput),
		newUserListCmd(cfg, jsonOutput),
		newUserSetDisabledCmd(cfg, jsonOutput, "disable", true),
		newUserSetDisabledCmd(cfg, jsonOutput, "enable", false),
		newUserRemoveCmd(cfg, jsonOutput),
	)
	return cmd
}

func withStore(cfg *config.Config, fn func(*store.Store) error) error {
	if cfg == nil || cfg.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

func newUserAddCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		password string
		role     string
	)

	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Create a login account",
		Args:  requireExactlyArgs(1, "username is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, err := auth.NormalizeUsername(args[0])
			if err != nil {
				return err
			}
			parsedRole, err := models.ParseRole(role)
			if err != nil {
				return err
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}

			return withStore(cfg, func(st *store.Store) error {
				existing, err := st.GetUserByUsername(cmd.Context(), username)
				if err != nil {
					return err
				}
				if existing != nil {
					return fmt.Errorf("user %q already exists", username)
				}

				user, err := st.CreateUser(cmd.Context(), username, hash, parsedRole, time.Now().UTC())
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(userSummary(user))
				}
				return writePlain("created %s (%s)\n", user.Username, user.Role)
			})
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&role, "role", string(models.RolePlayer), "account role (staff or player)")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newUserListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List login accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cfg, func(st *store.Store) error {
				users, err := st.ListUsers(cmd.Context())
				if err != nil {
					return err
				}
				if *jsonOutput {
					summaries := make([]map[string]any, 0, len(users))
					for i := range users {
						summaries = append(summaries, userSummary(&users[i]))
					}
					return writeJSON(summaries)
				}
				for _, user := range users {
					state := "enabled"
					if user.Disabled {
						state = "disabled"
					}
					if err := writePlain("%s  %s  %s\n", user.Username, user.Role, state); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newUserSetDisabledCmd(cfg *config.Config, jsonOutput *bool, verb string, disabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <username>",
		Short: capitalize(verb) + " a login account",
		Args:  requireExactlyArgs(1, "username is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cfg, func(st *store.Store) error {
				user, err := st.SetUserDisabled(cmd.Context(), args[0], disabled, time.Now().UTC())
				if err != nil {
					return err
				}
				if user == nil {
					return fmt.Errorf("user %q not found", args[0])
				}
				if *jsonOutput {
					return writeJSON(userSummary(user))
				}
				return writePlain("%sd %s\n", verb, user.Username)
			})
		},
	}
}

func newUserRemoveCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <username>",
		Short: "Delete a login account",
		Args:  requireExactlyArgs(1, "username is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cfg, func(st *store.Store) error {
				removed, err := st.DeleteUser(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("user %q not found", args[0])
				}
				if *jsonOutput {
					return writeJSON(map[string]any{"username": args[0], "removed": true})
				}
				return writePlain("removed %s\n", args[0])
			})
		},
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func userSummary(user *store.AuthUser) map[string]any {
	return map[string]any{
		"username": user.Username,
		"role":     string(user.Role),
		"disabled": user.Disabled,
	}
}
