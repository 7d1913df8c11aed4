package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"charpix/internal/api"
	"charpix/internal/config"
)

func newGalleryCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{Use: "gallery", Short: "Manage character image galleries"}
	cmd.AddCommand(
		newGalleryUploadCmd(cfg, jsonOutput),
		newGalleryListCmd(cfg, jsonOutput),
		newGalleryRemoveCmd(cfg, jsonOutput),
	)
	return cmd
}

func newGalleryUploadCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var caption string

	cmd := &cobra.Command{
		Use:   "upload <character-id> <path>",
		Short: "Upload an image into a character's gallery",
		Args:  requireExactlyArgs(2, "character id and image path are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[1]
			file, err := os.Open(path)
			if err != nil {
				return err
			}
			defer file.Close()

			return withClient(cfg, func(client *api.Client) error {
				image, err := client.UploadImage(cmd.Context(), args[0], filepath.Base(path), strings.TrimSpace(caption), file)
				if err != nil {
					return err
				}
				return writeImage(image, *jsonOutput)
			})
		},
	}

	cmd.Flags().StringVar(&caption, "caption", "", "image caption")
	return cmd
}

func newGalleryListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "list <character-id>",
		Short: "List a character's gallery in upload order",
		Args:  requireExactlyArgs(1, "character id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				images, err := client.ListImages(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(images)
				}
				return writeImageList(images)
			})
		},
	}
}

func newGalleryRemoveCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <character-id> <image-id>",
		Short: "Remove one image from a character's gallery",
		Args:  requireExactlyArgs(2, "character id and image id are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			imageID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return err
			}
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.DeleteImage(cmd.Context(), args[0], imageID)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				if resp.Removed {
					return writePlain("removed %d\n", resp.ID)
				}
				return writePlain("image %d not found (no-op)\n", resp.ID)
			})
		},
	}
}
