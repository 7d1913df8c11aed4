package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"charpix/internal/models"
)

const characterColumns = "id, name, owner_id, created_at, updated_at"

// CharacterExists checks whether a character exists by id.
func (s *Store) CharacterExists(ctx context.Context, id string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM characters WHERE id = ? LIMIT 1", id).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CountCharacters returns the number of roster characters.
func (s *Store) CountCharacters(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM characters").Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// CreateCharacter inserts one character row.
func (s *Store) CreateCharacter(ctx context.Context, character *models.Character) error {
	if character == nil {
		return fmt.Errorf("character is required")
	}
	if strings.TrimSpace(character.ID) == "" {
		return fmt.Errorf("character id is required")
	}
	if strings.TrimSpace(character.Name) == "" {
		return fmt.Errorf("character name is required")
	}
	if strings.TrimSpace(character.OwnerID) == "" {
		return fmt.Errorf("character owner is required")
	}

	now := time.Now().UTC()
	if character.CreatedAt.IsZero() {
		character.CreatedAt = now
	}
	if character.UpdatedAt.IsZero() {
		character.UpdatedAt = character.CreatedAt
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO characters (`+characterColumns+`)
		VALUES (?, ?, ?, ?, ?)
	`, character.ID, character.Name, character.OwnerID, formatTime(character.CreatedAt), formatTime(character.UpdatedAt))
	return err
}

// GetCharacter returns one character by id, or nil when absent.
func (s *Store) GetCharacter(ctx context.Context, id string) (*models.Character, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+characterColumns+` FROM characters WHERE id = ?`, id)
	return scanCharacter(row)
}

// ListCharacters returns all characters ordered by name.
func (s *Store) ListCharacters(ctx context.Context) ([]models.Character, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+characterColumns+` FROM characters ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	characters := []models.Character{}
	for rows.Next() {
		character, err := scanCharacter(rows)
		if err != nil {
			return nil, err
		}
		if character == nil {
			continue
		}
		characters = append(characters, *character)
	}
	return characters, rows.Err()
}

// GetAttribute reads one attribute value from a character's attribute bag.
// The second return reports presence; an absent key is not an error.
func (s *Store) GetAttribute(ctx context.Context, characterID, key string) ([]byte, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM character_attributes
		WHERE character_id = ? AND key = ?
		LIMIT 1
	`, characterID, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(value), true, nil
}

// SetAttribute writes one attribute value into a character's attribute bag,
// replacing any previous value for the key.
func (s *Store) SetAttribute(ctx context.Context, characterID, key string, value []byte) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("attribute key is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO character_attributes (character_id, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(character_id, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, characterID, key, string(value), formatTime(time.Now()))
	return err
}

func scanCharacter(scanner interface {
	Scan(dest ...any) error
}) (*models.Character, error) {
	var character models.Character
	var createdAt, updatedAt string
	if err := scanner.Scan(&character.ID, &character.Name, &character.OwnerID, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	parsedCreated, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	parsedUpdated, err := parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	character.CreatedAt = parsedCreated
	character.UpdatedAt = parsedUpdated
	return &character, nil
}
