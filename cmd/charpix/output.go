package main

import (
	"fmt"
	"os"
	"time"

	"charpix/internal/api"
	"charpix/internal/format"
)

var outputFormatter format.Formatter = format.JSONFormatter{}

func writeJSON(payload any) error {
	return outputFormatter.Write(os.Stdout, payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}

func writeCharacter(character api.CharacterResponse, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(character)
	}
	return writePlain("id: %s\nname: %s\nowner: %s\ncreated_at: %s\n",
		character.ID, character.Name, character.OwnerID, formatTime(character.CreatedAt))
}

func writeCharacterList(characters []api.CharacterResponse) error {
	for _, character := range characters {
		if err := writePlain("%s  %s (owner: %s)\n", character.ID, character.Name, character.OwnerID); err != nil {
			return err
		}
	}
	return nil
}

func writeImage(image api.ImageResponse, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(image)
	}
	lines := fmt.Sprintf("id: %d\nfilename: %s\nurl: %s\nuploaded_at: %s\n",
		image.ID, image.Filename, image.URL, formatTime(image.UploadedAt))
	if image.Caption != "" {
		lines += fmt.Sprintf("caption: %s\n", image.Caption)
	}
	return writePlain("%s", lines)
}

func writeImageList(images []api.ImageResponse) error {
	for _, image := range images {
		caption := image.Caption
		if caption == "" {
			caption = "-"
		}
		if err := writePlain("%d  %s  %s\n", image.ID, image.Filename, caption); err != nil {
			return err
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
