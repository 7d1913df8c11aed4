package gallery

import (
	"errors"
	"testing"

	"charpix/internal/models"
)

func TestAuthorize(t *testing.T) {
	owner := models.Principal{ID: "alice", Role: models.RolePlayer}
	other := models.Principal{ID: "bob", Role: models.RolePlayer}
	staff := models.Principal{ID: "gm", Role: models.RoleStaff}
	anon := models.Principal{}

	cases := []struct {
		name    string
		p       models.Principal
		action  Action
		allowed bool
	}{
		{"anonymous may view", anon, ActionView, true},
		{"anonymous may not upload", anon, ActionUpload, false},
		{"anonymous may not delete", anon, ActionDelete, false},
		{"owner may upload", owner, ActionUpload, true},
		{"owner may delete", owner, ActionDelete, true},
		{"non-owner player may view", other, ActionView, true},
		{"non-owner player may not upload", other, ActionUpload, false},
		{"non-owner player may not delete", other, ActionDelete, false},
		{"staff may upload anywhere", staff, ActionUpload, true},
		{"staff may delete anywhere", staff, ActionDelete, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(tc.p, "alice", tc.action)
			if tc.allowed && err != nil {
				t.Fatalf("expected allowed, got %v", err)
			}
			if !tc.allowed {
				if !errors.Is(err, ErrPermissionDenied) {
					t.Fatalf("expected ErrPermissionDenied, got %v", err)
				}
			}
		})
	}
}

func TestAuthorize_EmptyOwnerDeniesNonStaff(t *testing.T) {
	p := models.Principal{ID: "alice", Role: models.RolePlayer}
	if err := Authorize(p, "", ActionUpload); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied for ownerless target, got %v", err)
	}
}
