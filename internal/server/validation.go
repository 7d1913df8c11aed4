package server

import (
	"regexp"
	"strconv"
	"strings"
)

var characterIDPattern = regexp.MustCompile(`^[a-z]{2}-[0-9a-z]{4}$`)

func validateCharacterID(id string) error {
	if !characterIDPattern.MatchString(id) {
		return badRequest(ErrCodeInvalidID, "invalid character id %q", id)
	}
	return nil
}

func parseImageID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest(ErrCodeInvalidID, "invalid image id %q", raw)
	}
	return id, nil
}

func validateCharacterName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", badRequest(ErrCodeMissingRequired, "character name is required")
	}
	if len(name) > 120 {
		return "", badRequest(ErrCodeInvalidArgument, "character name exceeds 120 characters")
	}
	return name, nil
}

// validateMediaSegment rejects path segments that could escape the media root.
func validateMediaSegment(segment string) error {
	if segment == "" || segment == "." || segment == ".." {
		return notFound(ErrCodeImageNotFound, "media not found")
	}
	if strings.ContainsAny(segment, "/\\") {
		return notFound(ErrCodeImageNotFound, "media not found")
	}
	return nil
}
