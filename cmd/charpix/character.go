package main

import (
	"github.com/spf13/cobra"

	"charpix/internal/api"
	"charpix/internal/config"
)

func newCharacterCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{Use: "character", Short: "Manage roster characters"}
	cmd.AddCommand(
		newCharacterCreateCmd(cfg, jsonOutput),
		newCharacterShowCmd(cfg, jsonOutput),
		newCharacterListCmd(cfg, jsonOutput),
	)
	return cmd
}

func newCharacterCreateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a character (staff only)",
		Args:  requireExactlyArgs(1, "character name is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				character, err := client.CreateCharacter(cmd.Context(), api.CharacterCreateRequest{
					Name:  args[0],
					Owner: owner,
				})
				if err != nil {
					return err
				}
				return writeCharacter(character, *jsonOutput)
			})
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "owning player username")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newCharacterShowCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "show <character-id>",
		Short: "Show one character",
		Args:  requireExactlyArgs(1, "character id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				character, err := client.GetCharacter(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return writeCharacter(character, *jsonOutput)
			})
		},
	}
}

func newCharacterListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all characters",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				characters, err := client.ListCharacters(cmd.Context())
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(characters)
				}
				return writeCharacterList(characters)
			})
		},
	}
}
