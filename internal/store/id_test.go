package store

import (
	"fmt"
	"regexp"
	"testing"
)

func TestGenerateID_Format(t *testing.T) {
	pattern := regexp.MustCompile(`^ch-[0-9a-z]{4}$`)

	id, err := GenerateID("ch", func(string) (bool, error) { return false, nil })
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !pattern.MatchString(id) {
		t.Fatalf("unexpected id format: %s", id)
	}
}

func TestGenerateID_RetriesOnCollision(t *testing.T) {
	calls := 0
	id, err := GenerateID("ch", func(string) (bool, error) {
		calls++
		return calls <= 3, nil
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if calls != 4 {
		t.Fatalf("expected 4 existence checks, got %d", calls)
	}
	if id == "" {
		t.Fatal("expected an id after retries")
	}
}

func TestGenerateID_GivesUpAfterExhaustingAttempts(t *testing.T) {
	_, err := GenerateID("ch", func(string) (bool, error) { return true, nil })
	if err == nil {
		t.Fatal("expected error when every candidate collides")
	}
}

func TestGenerateID_PropagatesCheckError(t *testing.T) {
	wantErr := fmt.Errorf("db closed")
	_, err := GenerateID("ch", func(string) (bool, error) { return false, wantErr })
	if err == nil {
		t.Fatal("expected error from existence check")
	}
}
