package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"charpix/internal/api"
	"charpix/internal/config"
)

type rosterFile struct {
	Characters []rosterEntry `yaml:"characters"`
}

type rosterEntry struct {
	Name  string `yaml:"name"`
	Owner string `yaml:"owner"`
}

func newImportCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "import <roster.yaml>",
		Short: "Import characters from a YAML roster file (staff only)",
		Args:  requireExactlyArgs(1, "roster file is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			var roster rosterFile
			if err := yaml.Unmarshal(data, &roster); err != nil {
				return fmt.Errorf("parse roster: %w", err)
			}
			if len(roster.Characters) == 0 {
				return fmt.Errorf("roster contains no characters")
			}
			for i, entry := range roster.Characters {
				if strings.TrimSpace(entry.Name) == "" {
					return fmt.Errorf("roster entry %d: name is required", i+1)
				}
				if strings.TrimSpace(entry.Owner) == "" {
					return fmt.Errorf("roster entry %d (%s): owner is required", i+1, entry.Name)
				}
			}

			return withClient(cfg, func(client *api.Client) error {
				created := make([]api.CharacterResponse, 0, len(roster.Characters))
				for _, entry := range roster.Characters {
					character, err := client.CreateCharacter(cmd.Context(), api.CharacterCreateRequest{
						Name:  entry.Name,
						Owner: entry.Owner,
					})
					if err != nil {
						return fmt.Errorf("import %q: %w", entry.Name, err)
					}
					created = append(created, character)
				}
				if *jsonOutput {
					return writeJSON(created)
				}
				for _, character := range created {
					if err := writePlain("%s  %s (owner: %s)\n", character.ID, character.Name, character.OwnerID); err != nil {
						return err
					}
				}
				return writePlain("imported %d characters\n", len(created))
			})
		},
	}
}
