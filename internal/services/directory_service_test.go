package services

import (
	"testing"

	"github.com/shiftpulse/shiftpulse/internal/models"
)

type stubDirectoryStore struct {
	*stubAccessStore
}

func (s *stubDirectoryStore) AddLocation(loc *models.Location) error {
	s.locations = append(s.locations, loc)
	return nil
}

func newDirectoryFixture() (*DirectoryService, *stubDirectoryStore) {
	store := &stubDirectoryStore{stubAccessStore: orgTreeStore()}
	return NewDirectoryService(store, NewAccessService(store)), store
}

func TestCreateLocation(t *testing.T) {
	svc, store := newDirectoryFixture()
	loc, err := svc.CreateLocation("full", CreateLocationInput{Name: "  Shop Four  ", ParentID: "area2"})
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if loc.Name != "Shop Four" || loc.ParentID != "area2" || loc.OrganizationID != "O1" || !loc.Active {
		t.Fatalf("unexpected location: %+v", loc)
	}
	stored, _ := store.GetLocation(loc.ID)
	if stored == nil {
		t.Fatalf("location was not persisted")
	}
}

func TestCreateLocationValidation(t *testing.T) {
	svc, _ := newDirectoryFixture()
	if _, err := svc.CreateLocation("full", CreateLocationInput{Name: "   "}); !HasCode(err, ErrorInvalid) {
		t.Fatalf("expected invalid for blank name, got %v", err)
	}
	if _, err := svc.CreateLocation("full", CreateLocationInput{Name: "X", ParentID: "missing"}); !HasCode(err, ErrorInvalid) {
		t.Fatalf("expected invalid for unknown parent, got %v", err)
	}
	if _, err := svc.CreateLocation("full", CreateLocationInput{Name: "X", ParentID: "other1"}); !HasCode(err, ErrorInvalid) {
		t.Fatalf("expected invalid for cross-organization parent, got %v", err)
	}
	if _, err := svc.CreateLocation("ghost", CreateLocationInput{Name: "X"}); !HasCode(err, ErrorNotFound) {
		t.Fatalf("expected not_found for unknown admin, got %v", err)
	}
}

func TestListAccessible(t *testing.T) {
	svc, _ := newDirectoryFixture()
	locs, err := svc.ListAccessible("restricted")
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(locs) != 4 {
		t.Fatalf("expected the assigned subtree, got %d locations", len(locs))
	}
	for _, loc := range locs {
		if loc.ID == "shop3" || loc.ID == "area2" || loc.ID == "other1" {
			t.Fatalf("location outside the subtree leaked: %s", loc.ID)
		}
	}
}
