package services

import (
	"testing"

	"github.com/shiftpulse/shiftpulse/internal/models"
)

// stubRevealStore mirrors the transactional contract: the access-log entry
// is recorded only when open succeeds, as a committed transaction would.
type stubRevealStore struct {
	admins    map[string]*models.Admin
	locations map[string]*models.Location
	responses map[string]*models.Response
	logs      []*models.IdentityAccessLog
}

func (s *stubRevealStore) GetAdmin(id string) (*models.Admin, error) {
	return s.admins[id], nil
}

func (s *stubRevealStore) GetLocation(id string) (*models.Location, error) {
	return s.locations[id], nil
}

func (s *stubRevealStore) GetResponse(id string) (*models.Response, error) {
	return s.responses[id], nil
}

func (s *stubRevealStore) RevealIdentity(entry *models.IdentityAccessLog, open func([]byte) (string, error)) (string, error) {
	resp := s.responses[entry.ResponseID]
	plain, err := open(resp.EncryptedIdentity)
	if err != nil {
		return "", err
	}
	s.logs = append(s.logs, entry)
	return plain, nil
}

func newRevealFixture(t *testing.T) (*RevealService, *stubRevealStore, *IdentityCipher) {
	t.Helper()
	cipher := testCipher(t, 1)
	blob, err := cipher.Encrypt("田中 080-1234-5678")
	if err != nil {
		t.Fatalf("seal fixture identity: %v", err)
	}
	store := &stubRevealStore{
		admins: map[string]*models.Admin{
			"owner":   {ID: "owner", OrganizationID: "O1", Role: models.RoleOwner},
			"manager": {ID: "manager", OrganizationID: "O1", Role: models.RoleAdmin},
			"outside": {ID: "outside", OrganizationID: "O2", Role: models.RoleOwner},
		},
		locations: map[string]*models.Location{
			"shop1": {ID: "shop1", OrganizationID: "O1", Active: true},
		},
		responses: map[string]*models.Response{
			"r1": {ID: "r1", LocationID: "shop1", EncryptedIdentity: blob, IdentityConsent: true},
			"r2": {ID: "r2", LocationID: "shop1"},
		},
	}
	svc := NewRevealService(store, cipher)
	svc.idGen = func() string { return "log-1" }
	return svc, store, cipher
}

func TestRevealSuccessWritesOneAuditRecord(t *testing.T) {
	svc, store, _ := newRevealFixture(t)
	plain, err := svc.Reveal("r1", "safety escalation", "HR case 44", "owner")
	if err != nil {
		t.Fatalf("reveal error: %v", err)
	}
	if plain != "田中 080-1234-5678" {
		t.Fatalf("unexpected plaintext: %q", plain)
	}
	if len(store.logs) != 1 {
		t.Fatalf("expected exactly one audit record, got %d", len(store.logs))
	}
	entry := store.logs[0]
	if entry.ResponseID != "r1" || entry.RevealedBy != "owner" || entry.Reason != "safety escalation" || entry.RequestedBy != "HR case 44" {
		t.Fatalf("audit record incomplete: %+v", entry)
	}
}

func TestRevealRequiresReasonAndRequester(t *testing.T) {
	svc, store, _ := newRevealFixture(t)
	if _, err := svc.Reveal("r1", "   ", "HR", "owner"); !HasCode(err, ErrorInvalid) {
		t.Fatalf("expected invalid for blank reason, got %v", err)
	}
	if _, err := svc.Reveal("r1", "escalation", "", "owner"); !HasCode(err, ErrorInvalid) {
		t.Fatalf("expected invalid for blank requester, got %v", err)
	}
	if len(store.logs) != 0 {
		t.Fatalf("rejected requests must leave zero audit records")
	}
}

func TestRevealAuthorization(t *testing.T) {
	svc, store, _ := newRevealFixture(t)
	if _, err := svc.Reveal("r1", "escalation", "HR", "ghost"); !HasCode(err, ErrorUnauthorized) {
		t.Fatalf("expected unauthorized for unknown admin, got %v", err)
	}
	if _, err := svc.Reveal("r1", "escalation", "HR", "manager"); !HasCode(err, ErrorForbidden) {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}
	if _, err := svc.Reveal("r1", "escalation", "HR", "outside"); !HasCode(err, ErrorForbidden) {
		t.Fatalf("expected forbidden across organizations, got %v", err)
	}
	if len(store.logs) != 0 {
		t.Fatalf("denied requests must leave zero audit records")
	}
}

func TestRevealMissingTargets(t *testing.T) {
	svc, store, _ := newRevealFixture(t)
	if _, err := svc.Reveal("nope", "escalation", "HR", "owner"); !HasCode(err, ErrorNotFound) {
		t.Fatalf("expected not_found for unknown response, got %v", err)
	}
	if _, err := svc.Reveal("r2", "escalation", "HR", "owner"); !HasCode(err, ErrorNotFound) {
		t.Fatalf("expected not_found when no identity was stored, got %v", err)
	}
	if len(store.logs) != 0 {
		t.Fatalf("misses must leave zero audit records")
	}
}

func TestRevealTamperedBlobLeavesNoAudit(t *testing.T) {
	svc, store, _ := newRevealFixture(t)
	store.responses["r1"].EncryptedIdentity[3] ^= 0x01
	if _, err := svc.Reveal("r1", "escalation", "HR", "owner"); !HasCode(err, ErrorIntegrity) {
		t.Fatalf("expected integrity error, got %v", err)
	}
	if len(store.logs) != 0 {
		t.Fatalf("a failed decrypt must leave zero audit records")
	}
}

func TestRevealWithoutEscrowKey(t *testing.T) {
	_, store, _ := newRevealFixture(t)
	svc := NewRevealService(store, nil)
	if _, err := svc.Reveal("r1", "escalation", "HR", "owner"); !HasCode(err, ErrorEncryptionUnavailable) {
		t.Fatalf("expected encryption_unavailable, got %v", err)
	}
	if len(store.logs) != 0 {
		t.Fatalf("an unconfigured key must leave zero audit records")
	}
}
