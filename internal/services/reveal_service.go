package services

import (
	"strings"
	"time"

	"github.com/shiftpulse/shiftpulse/internal/models"
)

// RevealStore abstracts the records and the transactional boundary of the
// identity reveal. RevealIdentity must append the access-log entry, hand the
// sealed blob to open, and commit both only when open succeeds: a failed
// open leaves zero audit rows, a successful reveal leaves exactly one, and
// the row is durable before any plaintext escapes the transaction.
type RevealStore interface {
	GetAdmin(id string) (*models.Admin, error)
	GetLocation(id string) (*models.Location, error)
	GetResponse(id string) (*models.Response, error)
	RevealIdentity(entry *models.IdentityAccessLog, open func(blob []byte) (string, error)) (string, error)
}

// RevealService performs audited decryption of escrowed identities.
type RevealService struct {
	store  RevealStore
	cipher *IdentityCipher
	now    func() time.Time
	idGen  func() string
}

func NewRevealService(store RevealStore, cipher *IdentityCipher) *RevealService {
	return &RevealService{
		store:  store,
		cipher: cipher,
		now:    func() time.Time { return time.Now().UTC() },
		idGen:  func() string { return shortID(12) },
	}
}

// Reveal decrypts the escrowed identity of a response for an owner-role
// admin, appending exactly one immutable access-log entry. Reason and
// requester are mandatory so every disclosure carries its justification.
func (s *RevealService) Reveal(responseID, reason, requestedBy, adminID string) (string, error) {
	reason = strings.TrimSpace(reason)
	requestedBy = strings.TrimSpace(requestedBy)
	if reason == "" || requestedBy == "" {
		return "", NewInvalidError("reason and requested_by are required")
	}

	admin, err := s.store.GetAdmin(adminID)
	if err != nil {
		return "", err
	}
	if admin == nil {
		return "", NewUnauthorizedError("unknown admin")
	}
	if admin.Role != models.RoleOwner {
		return "", NewForbiddenError("identity reveal requires the owner role")
	}

	resp, err := s.store.GetResponse(responseID)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", NewNotFoundError("response not found")
	}
	loc, err := s.store.GetLocation(resp.LocationID)
	if err != nil {
		return "", err
	}
	if loc == nil || loc.OrganizationID != admin.OrganizationID {
		return "", NewForbiddenError("response belongs to another organization")
	}
	if len(resp.EncryptedIdentity) == 0 {
		return "", NewNotFoundError("response has no stored identity")
	}
	if s.cipher == nil {
		return "", NewEncryptionUnavailableError("escrow key is not configured")
	}

	entry := &models.IdentityAccessLog{
		ID:          s.idGen(),
		ResponseID:  responseID,
		RevealedBy:  admin.ID,
		Reason:      reason,
		RequestedBy: requestedBy,
		CreatedAt:   s.now(),
	}
	return s.store.RevealIdentity(entry, s.cipher.Decrypt)
}
