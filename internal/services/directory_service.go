package services

import (
	"strings"

	"github.com/shiftpulse/shiftpulse/internal/models"
)

type DirectoryStore interface {
	GetAdmin(id string) (*models.Admin, error)
	GetLocation(id string) (*models.Location, error)
	ListLocations(orgID string) ([]*models.Location, error)
	AddLocation(loc *models.Location) error
}

// DirectoryService manages the location tree and the accessible views of it.
type DirectoryService struct {
	store  DirectoryStore
	access *AccessService
	idGen  func() string
}

func NewDirectoryService(store DirectoryStore, access *AccessService) *DirectoryService {
	return &DirectoryService{
		store:  store,
		access: access,
		idGen:  func() string { return shortID(8) },
	}
}

type CreateLocationInput struct {
	Name     string
	ParentID string
}

// CreateLocation adds a location to the admin's organization. A parent must
// already exist in the same organization, keeping parent chains inside one
// tree.
func (s *DirectoryService) CreateLocation(adminID string, in CreateLocationInput) (*models.Location, error) {
	admin, err := s.store.GetAdmin(adminID)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, NewNotFoundError("admin not found")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, NewInvalidError("location name required")
	}
	if in.ParentID != "" {
		parent, err := s.store.GetLocation(in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.OrganizationID != admin.OrganizationID {
			return nil, NewInvalidError("parent location must belong to the same organization")
		}
	}
	loc := &models.Location{
		ID:             s.idGen(),
		OrganizationID: admin.OrganizationID,
		ParentID:       in.ParentID,
		Name:           name,
		Active:         true,
	}
	if err := s.store.AddLocation(loc); err != nil {
		return nil, err
	}
	return loc, nil
}

// ListAccessible returns the locations inside the admin's resolved set, in
// store order.
func (s *DirectoryService) ListAccessible(adminID string) ([]*models.Location, error) {
	admin, err := s.store.GetAdmin(adminID)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, NewNotFoundError("admin not found")
	}
	set, err := s.access.ResolveAccessible(adminID)
	if err != nil {
		return nil, err
	}
	locations, err := s.store.ListLocations(admin.OrganizationID)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Location, 0, len(locations))
	for _, loc := range locations {
		if _, ok := set[loc.ID]; ok {
			out = append(out, loc)
		}
	}
	return out, nil
}
