package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/shiftpulse/shiftpulse/internal/models"
)

// IngestStore abstracts persistence for response submission. AddResponse
// must write the record and all derived fields in a single transaction: a
// response never exists with some but not all of flagged/flag reasons/
// encrypted identity.
type IngestStore interface {
	GetLocation(id string) (*models.Location, error)
	ListQuestions() ([]*models.Question, error)
	AddResponse(r *models.Response) error
}

// SubmitResponseInput is the sanitized submission payload.
type SubmitResponseInput struct {
	LocationID      string
	Answers         map[string]int
	ENPSRaw         *int
	TextGood        string
	TextImprove     string
	TextOther       string
	Identity        string
	IdentityConsent bool
}

type SubmitResponseResult struct {
	ResponseID string
	Flagged    bool
}

// IngestService owns the response submission workflow: validate answers,
// strip markup from free text, scan it for concerning content, seal the
// optional identity, and persist everything atomically.
type IngestService struct {
	store      IngestStore
	classifier TextClassifier
	cipher     *IdentityCipher // nil when no escrow key is configured
	sanitize   *bluemonday.Policy
	now        func() time.Time
	idGen      func() string
}

func NewIngestService(store IngestStore, classifier TextClassifier, cipher *IdentityCipher) *IngestService {
	return &IngestService{
		store:      store,
		classifier: classifier,
		cipher:     cipher,
		sanitize:   bluemonday.StrictPolicy(),
		now:        func() time.Time { return time.Now().UTC() },
		idGen:      func() string { return shortID(12) },
	}
}

// SubmitResponse validates and stores one submission. Validation failures
// abort only this submission. A missing escrow key never blocks the primary
// response record: the identity is dropped and the response is stored.
func (s *IngestService) SubmitResponse(in SubmitResponseInput) (*SubmitResponseResult, error) {
	loc, err := s.store.GetLocation(in.LocationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, NewNotFoundError("location not found")
	}
	if !loc.Active {
		return nil, NewInvalidError("location is not accepting responses")
	}

	questions, err := s.store.ListQuestions()
	if err != nil {
		return nil, err
	}
	scaleMax := make(map[string]int, len(questions))
	for _, q := range questions {
		scaleMax[q.ID] = q.ScaleMax
	}
	answers := make(map[string]int, len(in.Answers))
	for key, v := range in.Answers {
		max, ok := scaleMax[key]
		if !ok {
			return nil, NewInvalidError(fmt.Sprintf("unknown question %s", key))
		}
		if v < 1 || v > max {
			return nil, NewInvalidError(fmt.Sprintf("answer %s=%d is outside 1..%d", key, v, max))
		}
		answers[key] = v
	}
	if in.ENPSRaw != nil && (*in.ENPSRaw < 0 || *in.ENPSRaw > 10) {
		return nil, NewInvalidError("enps value must be within 0..10")
	}

	textGood := s.cleanText(in.TextGood)
	textImprove := s.cleanText(in.TextImprove)
	textOther := s.cleanText(in.TextOther)
	flag := FlagMultiple(s.classifier, []string{textGood, textImprove, textOther})

	resp := &models.Response{
		ID:              s.idGen(),
		LocationID:      in.LocationID,
		Answers:         answers,
		ENPSRaw:         in.ENPSRaw,
		TextGood:        textGood,
		TextImprove:     textImprove,
		TextOther:       textOther,
		Flagged:         flag.Flagged,
		FlagReasons:     ReasonStrings(flag.Reasons),
		IdentityConsent: in.IdentityConsent,
		SubmittedAt:     s.now(),
	}

	if in.IdentityConsent {
		if identity := strings.TrimSpace(in.Identity); identity != "" && s.cipher != nil {
			// An encryption failure drops the identity but must not block
			// the survey response itself.
			if blob, err := s.cipher.Encrypt(identity); err == nil {
				resp.EncryptedIdentity = blob
			}
		}
	}

	if err := s.store.AddResponse(resp); err != nil {
		return nil, err
	}
	return &SubmitResponseResult{ResponseID: resp.ID, Flagged: resp.Flagged}, nil
}

func (s *IngestService) cleanText(t string) string {
	return strings.TrimSpace(s.sanitize.Sanitize(t))
}
