package services

import (
	"github.com/shiftpulse/shiftpulse/internal/models"
)

// AccessStore abstracts the records the resolver reads.
type AccessStore interface {
	GetAdmin(id string) (*models.Admin, error)
	GetLocation(id string) (*models.Location, error)
	ListLocations(orgID string) ([]*models.Location, error)
}

// AccessService computes the set of locations an admin may see.
type AccessService struct {
	store AccessStore
}

func NewAccessService(store AccessStore) *AccessService {
	return &AccessService{store: store}
}

// ResolveAccessible returns the admin's visible location IDs. Full access
// covers every location of the admin's organization; restricted access is
// the explicit assignment set plus all transitive descendants. An admin with
// zero assignments legitimately resolves to the empty set.
func (s *AccessService) ResolveAccessible(adminID string) (map[string]struct{}, error) {
	admin, err := s.store.GetAdmin(adminID)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, NewNotFoundError("admin not found")
	}
	locations, err := s.store.ListLocations(admin.OrganizationID)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(locations))
	if admin.AccessMode == models.AccessFull {
		for _, loc := range locations {
			set[loc.ID] = struct{}{}
		}
		return set, nil
	}

	children := make(map[string][]string, len(locations))
	known := make(map[string]struct{}, len(locations))
	for _, loc := range locations {
		known[loc.ID] = struct{}{}
		if loc.ParentID != "" {
			children[loc.ParentID] = append(children[loc.ParentID], loc.ID)
		}
	}

	// Iterative frontier with the result set doubling as the visited set.
	// The data model forbids cyclic parent chains, but malformed data must
	// terminate here rather than loop or blow the stack.
	frontier := make([]string, 0, len(admin.AssignedLocationIDs))
	for _, id := range admin.AssignedLocationIDs {
		if _, ok := known[id]; ok {
			frontier = append(frontier, id)
		}
	}
	for len(frontier) > 0 {
		id := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		if _, seen := set[id]; seen {
			continue
		}
		set[id] = struct{}{}
		frontier = append(frontier, children[id]...)
	}
	return set, nil
}

// HasAccess reports whether the admin may see the location. Full access
// short-circuits on organization membership without materializing the whole
// set; the answer is identical either way.
func (s *AccessService) HasAccess(adminID, locationID string) (bool, error) {
	admin, err := s.store.GetAdmin(adminID)
	if err != nil {
		return false, err
	}
	if admin == nil {
		return false, NewNotFoundError("admin not found")
	}
	if admin.AccessMode == models.AccessFull {
		loc, err := s.store.GetLocation(locationID)
		if err != nil {
			return false, err
		}
		return loc != nil && loc.OrganizationID == admin.OrganizationID, nil
	}
	set, err := s.ResolveAccessible(adminID)
	if err != nil {
		return false, err
	}
	_, ok := set[locationID]
	return ok, nil
}

// FilterAccessible keeps only the location IDs the admin may see,
// preserving the caller's order.
func (s *AccessService) FilterAccessible(adminID string, locationIDs []string) ([]string, error) {
	set, err := s.ResolveAccessible(adminID)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(locationIDs))
	for _, id := range locationIDs {
		if _, ok := set[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}
