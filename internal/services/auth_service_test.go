package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/shiftpulse/shiftpulse/internal/models"
)

type stubAuthStore struct {
	admins map[string]*models.Admin
	orgs   map[string]*models.Organization
}

func newStubAuthStore() *stubAuthStore {
	return &stubAuthStore{
		admins: map[string]*models.Admin{},
		orgs:   map[string]*models.Organization{},
	}
}

func (s *stubAuthStore) FindAdminByEmail(email string) (*models.Admin, error) {
	for _, a := range s.admins {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, nil
}

func (s *stubAuthStore) AddAdmin(a *models.Admin) error {
	s.admins[a.ID] = a
	return nil
}

func (s *stubAuthStore) AddOrganization(o *models.Organization) error {
	s.orgs[o.ID] = o
	return nil
}

func testSigner(adminID, orgID, role string, ttl time.Duration) (string, error) {
	return fmt.Sprintf("token:%s:%s:%s", adminID, orgID, role), nil
}

func TestRegisterCreatesOwnerWithFullAccess(t *testing.T) {
	store := newStubAuthStore()
	svc := NewAuthService(store, testSigner)
	res, err := svc.Register("boss@example.com", "pw123456", "Pine Foods", "restaurant")
	if err != nil {
		t.Fatalf("register error: %v", err)
	}
	if res.Token == "" || res.Role != models.RoleOwner {
		t.Fatalf("unexpected result: %+v", res)
	}
	org := store.orgs[res.OrganizationID]
	if org == nil || org.Industry != "restaurant" {
		t.Fatalf("organization not stored: %+v", org)
	}
	admin := store.admins[res.AdminID]
	if admin == nil || admin.AccessMode != models.AccessFull || admin.Role != models.RoleOwner {
		t.Fatalf("first admin must be a full-access owner: %+v", admin)
	}
	if string(admin.PassHash) == "pw123456" {
		t.Fatalf("password stored in the clear")
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	store := newStubAuthStore()
	svc := NewAuthService(store, testSigner)
	if _, err := svc.Register("boss@example.com", "pw123456", "A", "retail"); err != nil {
		t.Fatalf("first register error: %v", err)
	}
	if _, err := svc.Register("boss@example.com", "other", "B", "retail"); !HasCode(err, ErrorConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegisterRequiresCredentials(t *testing.T) {
	svc := NewAuthService(newStubAuthStore(), testSigner)
	if _, err := svc.Register("", "pw", "A", "retail"); !HasCode(err, ErrorInvalid) {
		t.Fatalf("expected invalid for empty email, got %v", err)
	}
	if _, err := svc.Register("a@b.c", "  ", "A", "retail"); !HasCode(err, ErrorInvalid) {
		t.Fatalf("expected invalid for blank password, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	store := newStubAuthStore()
	svc := NewAuthService(store, testSigner)
	reg, err := svc.Register("boss@example.com", "pw123456", "Pine Foods", "restaurant")
	if err != nil {
		t.Fatalf("register error: %v", err)
	}

	res, err := svc.Login("boss@example.com", "pw123456")
	if err != nil {
		t.Fatalf("login error: %v", err)
	}
	if res.AdminID != reg.AdminID || res.OrganizationID != reg.OrganizationID {
		t.Fatalf("login does not match registration: %+v vs %+v", res, reg)
	}

	if _, err := svc.Login("boss@example.com", "wrong"); !HasCode(err, ErrorUnauthorized) {
		t.Fatalf("expected unauthorized for wrong password, got %v", err)
	}
	if _, err := svc.Login("nobody@example.com", "pw123456"); !HasCode(err, ErrorUnauthorized) {
		t.Fatalf("expected unauthorized for unknown email, got %v", err)
	}
}
