package models

import "time"

// Organization owns a forest of locations and is classified by industry
// for benchmark comparisons.
type Organization struct {
	ID        string
	Name      string
	Industry  string
	CreatedAt time.Time
}

// Location is a physical site (shop, branch, facility). ParentID links it
// into a tree per organization; an organization may have several roots.
type Location struct {
	ID             string
	OrganizationID string
	ParentID       string // empty for root locations
	Name           string
	Active         bool
}

// AccessMode controls how an admin's visible location set is derived.
type AccessMode string

const (
	AccessFull       AccessMode = "full"
	AccessRestricted AccessMode = "restricted"
)

// Role is the admin's privilege level. Only owners may reveal identities.
type Role string

const (
	RoleOwner Role = "owner"
	RoleAdmin Role = "admin"
)

// Admin is an administrator account scoped to one organization.
type Admin struct {
	ID                  string
	OrganizationID      string
	Email               string
	PassHash            []byte
	Role                Role
	AccessMode          AccessMode
	AssignedLocationIDs []string // only meaningful when AccessMode is restricted
	CreatedAt           time.Time
}

// Question is one survey item. ID doubles as the answer key on responses
// (e.g. "q1"). ScaleMax is the upper bound of the accepted answer range.
type Question struct {
	ID            string
	Order         int
	Category      string
	ScaleMax      int
	ReverseScored bool
}

// Response is one anonymous survey submission for a location. It is
// written once at ingestion with all derived fields and never rewritten;
// the identity reveal path only reads it and appends an access log entry.
type Response struct {
	ID                string
	LocationID        string
	Answers           map[string]int
	ENPSRaw           *int // raw 0-10 likelihood-to-recommend, nil when skipped
	TextGood          string
	TextImprove       string
	TextOther         string
	Flagged           bool
	FlagReasons       []string
	EncryptedIdentity []byte // present only when IdentityConsent is true
	IdentityConsent   bool
	SubmittedAt       time.Time
}

// FreeTexts returns the response's free-text fields in a fixed order.
func (r *Response) FreeTexts() []string {
	return []string{r.TextGood, r.TextImprove, r.TextOther}
}

// Benchmark is a reference average for one industry and category.
type Benchmark struct {
	Industry   string
	Category   string
	AvgScore   float64
	SampleSize int
}

// IdentityAccessLog records one successful identity reveal. Rows are
// append-only: never updated, never deleted.
type IdentityAccessLog struct {
	ID          string
	ResponseID  string
	RevealedBy  string
	Reason      string
	RequestedBy string
	CreatedAt   time.Time
}
