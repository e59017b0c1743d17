package services

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/shiftpulse/shiftpulse/internal/models"
)

type AuthStore interface {
	FindAdminByEmail(email string) (*models.Admin, error)
	AddAdmin(a *models.Admin) error
	AddOrganization(o *models.Organization) error
}

// TokenSigner turns an authenticated admin into a bearer token. The HTTP
// layer injects the JWT implementation.
type TokenSigner func(adminID, orgID, role string, ttl time.Duration) (string, error)

type AuthService struct {
	store     AuthStore
	now       func() time.Time
	idGen     func(prefix string, n int) string
	signToken TokenSigner
	tokenTTL  time.Duration
}

type AuthResult struct {
	Token          string
	OrganizationID string
	AdminID        string
	Role           models.Role
}

func NewAuthService(store AuthStore, signer TokenSigner) *AuthService {
	return &AuthService{
		store:     store,
		now:       func() time.Time { return time.Now().UTC() },
		idGen:     func(prefix string, n int) string { return prefix + shortID(n) },
		signToken: signer,
		tokenTTL:  30 * 24 * time.Hour,
	}
}

// Register creates an organization together with its first admin, who gets
// the owner role and full location access.
func (s *AuthService) Register(email, password, orgName, industry string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, NewInvalidError("email/password required")
	}
	existing, err := s.store.FindAdminByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, NewConflictError("email exists")
	}
	orgID := s.idGen("o", 7)
	now := s.now()
	if err := s.store.AddOrganization(&models.Organization{ID: orgID, Name: orgName, Industry: industry, CreatedAt: now}); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	adminID := s.idGen("a", 7)
	admin := &models.Admin{
		ID:             adminID,
		OrganizationID: orgID,
		Email:          email,
		PassHash:       hash,
		Role:           models.RoleOwner,
		AccessMode:     models.AccessFull,
		CreatedAt:      now,
	}
	if err := s.store.AddAdmin(admin); err != nil {
		return nil, err
	}
	token, err := s.sign(admin)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, OrganizationID: orgID, AdminID: adminID, Role: admin.Role}, nil
}

func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, NewInvalidError("email/password required")
	}
	admin, err := s.store.FindAdminByEmail(email)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, NewUnauthorizedError("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword(admin.PassHash, []byte(password)); err != nil {
		return nil, NewUnauthorizedError("invalid credentials")
	}
	token, err := s.sign(admin)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, OrganizationID: admin.OrganizationID, AdminID: admin.ID, Role: admin.Role}, nil
}

func (s *AuthService) sign(admin *models.Admin) (string, error) {
	if s.signToken == nil {
		return "", NewInvalidError("token signer not configured")
	}
	return s.signToken(admin.ID, admin.OrganizationID, string(admin.Role), s.tokenTTL)
}

func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}
