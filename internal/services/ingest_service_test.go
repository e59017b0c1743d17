package services

import (
	"testing"
	"time"

	"github.com/shiftpulse/shiftpulse/internal/models"
)

type stubIngestStore struct {
	locations map[string]*models.Location
	questions []*models.Question
	added     []*models.Response
	addErr    error
}

func (s *stubIngestStore) GetLocation(id string) (*models.Location, error) {
	return s.locations[id], nil
}

func (s *stubIngestStore) ListQuestions() ([]*models.Question, error) {
	return s.questions, nil
}

func (s *stubIngestStore) AddResponse(r *models.Response) error {
	if s.addErr != nil {
		return s.addErr
	}
	s.added = append(s.added, r)
	return nil
}

func newIngestFixture(cipher *IdentityCipher) (*IngestService, *stubIngestStore) {
	store := &stubIngestStore{
		locations: map[string]*models.Location{
			"shop1":  {ID: "shop1", OrganizationID: "O1", Active: true},
			"closed": {ID: "closed", OrganizationID: "O1", Active: false},
		},
		questions: []*models.Question{
			{ID: "q1", ScaleMax: 5},
			{ID: "q2", ScaleMax: 5},
		},
	}
	svc := NewIngestService(store, NewKeywordClassifier(), cipher)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	svc.idGen = func() string { return "resp-1" }
	return svc, store
}

func TestSubmitResponseStoresOnce(t *testing.T) {
	svc, store := newIngestFixture(nil)
	enps := 8
	res, err := svc.SubmitResponse(SubmitResponseInput{
		LocationID: "shop1",
		Answers:    map[string]int{"q1": 4, "q2": 3},
		ENPSRaw:    &enps,
		TextGood:   "  great team  ",
	})
	if err != nil {
		t.Fatalf("submit error: %v", err)
	}
	if res.ResponseID != "resp-1" || res.Flagged {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(store.added) != 1 {
		t.Fatalf("expected a single store write, got %d", len(store.added))
	}
	stored := store.added[0]
	if stored.TextGood != "great team" {
		t.Fatalf("free text not trimmed: %q", stored.TextGood)
	}
	if stored.ENPSRaw == nil || *stored.ENPSRaw != 8 {
		t.Fatalf("enps not carried: %+v", stored.ENPSRaw)
	}
	if !stored.SubmittedAt.Equal(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected timestamp: %v", stored.SubmittedAt)
	}
}

func TestSubmitResponseValidation(t *testing.T) {
	svc, store := newIngestFixture(nil)
	enpsHigh := 11
	cases := []struct {
		name string
		in   SubmitResponseInput
		code ErrorCode
	}{
		{"unknown location", SubmitResponseInput{LocationID: "nope"}, ErrorNotFound},
		{"inactive location", SubmitResponseInput{LocationID: "closed"}, ErrorInvalid},
		{"unknown question", SubmitResponseInput{LocationID: "shop1", Answers: map[string]int{"q99": 3}}, ErrorInvalid},
		{"answer too low", SubmitResponseInput{LocationID: "shop1", Answers: map[string]int{"q1": 0}}, ErrorInvalid},
		{"answer too high", SubmitResponseInput{LocationID: "shop1", Answers: map[string]int{"q1": 6}}, ErrorInvalid},
		{"enps out of range", SubmitResponseInput{LocationID: "shop1", ENPSRaw: &enpsHigh}, ErrorInvalid},
	}
	for _, c := range cases {
		if _, err := svc.SubmitResponse(c.in); !HasCode(err, c.code) {
			t.Fatalf("%s: expected %s, got %v", c.name, c.code, err)
		}
	}
	if len(store.added) != 0 {
		t.Fatalf("rejected submissions must not reach the store")
	}
}

func TestSubmitResponseStripsMarkup(t *testing.T) {
	svc, store := newIngestFixture(nil)
	if _, err := svc.SubmitResponse(SubmitResponseInput{
		LocationID:  "shop1",
		TextImprove: `<script>alert(1)</script><b>pay</b> is low`,
	}); err != nil {
		t.Fatalf("submit error: %v", err)
	}
	if got := store.added[0].TextImprove; got != "pay is low" {
		t.Fatalf("markup survived sanitization: %q", got)
	}
}

func TestSubmitResponseFlagsConcerningText(t *testing.T) {
	svc, store := newIngestFixture(nil)
	res, err := svc.SubmitResponse(SubmitResponseInput{
		LocationID: "shop1",
		TextOther:  "上司からパワハラを受けています",
	})
	if err != nil {
		t.Fatalf("submit error: %v", err)
	}
	if !res.Flagged {
		t.Fatalf("expected flagged result")
	}
	stored := store.added[0]
	if !stored.Flagged || len(stored.FlagReasons) != 1 || stored.FlagReasons[0] != string(FlagHarassment) {
		t.Fatalf("unexpected stored flags: %+v", stored.FlagReasons)
	}
}

func TestSubmitResponseIdentityRequiresConsent(t *testing.T) {
	svc, store := newIngestFixture(testCipher(t, 1))
	if _, err := svc.SubmitResponse(SubmitResponseInput{
		LocationID: "shop1",
		Identity:   "田中",
	}); err != nil {
		t.Fatalf("submit error: %v", err)
	}
	if store.added[0].EncryptedIdentity != nil {
		t.Fatalf("identity stored without consent")
	}
}

func TestSubmitResponseSealsIdentityWithConsent(t *testing.T) {
	cipher := testCipher(t, 1)
	svc, store := newIngestFixture(cipher)
	if _, err := svc.SubmitResponse(SubmitResponseInput{
		LocationID:      "shop1",
		Identity:        "  田中  ",
		IdentityConsent: true,
	}); err != nil {
		t.Fatalf("submit error: %v", err)
	}
	stored := store.added[0]
	if !stored.IdentityConsent || stored.EncryptedIdentity == nil {
		t.Fatalf("identity missing: %+v", stored)
	}
	got, err := cipher.Decrypt(stored.EncryptedIdentity)
	if err != nil || got != "田中" {
		t.Fatalf("sealed identity wrong: %q %v", got, err)
	}
}

func TestSubmitResponseWithoutEscrowKey(t *testing.T) {
	svc, store := newIngestFixture(nil)
	res, err := svc.SubmitResponse(SubmitResponseInput{
		LocationID:      "shop1",
		Answers:         map[string]int{"q1": 4},
		Identity:        "田中",
		IdentityConsent: true,
	})
	if err != nil {
		t.Fatalf("a missing escrow key must not block the response: %v", err)
	}
	if res.ResponseID == "" {
		t.Fatalf("expected a stored response id")
	}
	if store.added[0].EncryptedIdentity != nil {
		t.Fatalf("no cipher means no identity bytes")
	}
}
