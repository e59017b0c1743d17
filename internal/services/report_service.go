package services

import (
	"sort"
	"time"

	"github.com/shiftpulse/shiftpulse/internal/models"
)

// ReportStore abstracts the already-persisted records reports are computed
// from. The report service never re-derives permissions itself; that is the
// access service's job.
type ReportStore interface {
	GetAdmin(id string) (*models.Admin, error)
	GetLocation(id string) (*models.Location, error)
	GetOrganization(id string) (*models.Organization, error)
	ListLocations(orgID string) ([]*models.Location, error)
	ListResponses(locationIDs []string) ([]*models.Response, error)
	ListBenchmarks(industry string) ([]*models.Benchmark, error)
}

// benchmarkTTL bounds how long benchmark rows are served from cache.
const benchmarkTTL = 5 * time.Minute

// ReportService combines the resolver and the scoring engine into the
// read-side reports the dashboard consumes.
type ReportService struct {
	store  ReportStore
	access *AccessService
	cache  TTLStore
}

func NewReportService(store ReportStore, access *AccessService, cache TTLStore) *ReportService {
	return &ReportService{store: store, access: access, cache: cache}
}

// CategoryReport is one category's score, risk band and benchmark delta.
type CategoryReport struct {
	Category  string
	Score     Score
	Risk      RiskLevel
	Benchmark BenchmarkDelta
}

// LocationReport is the full scorecard for one location.
type LocationReport struct {
	LocationID    string
	LocationName  string
	ResponseCount int
	Overall       Score
	OverallRisk   RiskLevel
	ENPS          ENPSResult
	ENPSRisk      RiskLevel
	Categories    []CategoryReport
	Findings      []Finding
}

// LocationReport builds the scorecard for a single location the admin may
// see. Access outside the resolved set is forbidden regardless of role.
func (s *ReportService) LocationReport(adminID, locationID string) (*LocationReport, error) {
	ok, err := s.access.HasAccess(adminID, locationID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, NewForbiddenError("location is outside your accessible set")
	}
	loc, err := s.store.GetLocation(locationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, NewNotFoundError("location not found")
	}
	org, err := s.store.GetOrganization(loc.OrganizationID)
	if err != nil {
		return nil, err
	}
	responses, err := s.store.ListResponses([]string{locationID})
	if err != nil {
		return nil, err
	}

	var benchmarks map[string]*models.Benchmark
	if org != nil {
		if benchmarks, err = s.benchmarksFor(org.Industry); err != nil {
			return nil, err
		}
	}

	overall := OverallScore(responses, DefaultScaleMax)
	enps := ENPS(responses)
	report := &LocationReport{
		LocationID:    loc.ID,
		LocationName:  loc.Name,
		ResponseCount: len(responses),
		Overall:       overall,
		OverallRisk:   ScoreRisk(overall),
		ENPS:          enps,
		ENPSRisk:      ENPSRisk(enps),
	}
	for _, def := range Categories {
		cs := CategoryScore(responses, def, DefaultScaleMax)
		cr := CategoryReport{Category: def.Name, Score: cs, Risk: ScoreRisk(cs)}
		if b, ok := benchmarks[def.Name]; ok {
			cr.Benchmark = CompareBenchmark(cs, b, def.ReverseScored)
		}
		report.Categories = append(report.Categories, cr)
	}

	report.Findings = DetectPatterns(AggregateStats{
		ResponseCount:  len(responses),
		Overall:        overall,
		ENPS:           enps,
		QuestionMeans:  questionMeans(responses),
		PeriodOveralls: periodOveralls(responses),
	})
	return report, nil
}

// OrganizationReport rolls up every accessible location and ranks them
// against each other.
type OrganizationReport struct {
	OrganizationID string
	ResponseCount  int
	Overall        Score
	OverallRisk    RiskLevel
	ENPS           ENPSResult
	ENPSRisk       RiskLevel
	Locations      []RankedPeer
	Impact         ImpactResult
}

func (s *ReportService) OrganizationReport(adminID string) (*OrganizationReport, error) {
	admin, err := s.store.GetAdmin(adminID)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, NewNotFoundError("admin not found")
	}
	accessible, err := s.access.ResolveAccessible(adminID)
	if err != nil {
		return nil, err
	}
	locations, err := s.store.ListLocations(admin.OrganizationID)
	if err != nil {
		return nil, err
	}

	peers := make([]PeerScore, 0, len(locations))
	var all []*models.Response
	for _, loc := range locations {
		if _, ok := accessible[loc.ID]; !ok {
			continue
		}
		responses, err := s.store.ListResponses([]string{loc.ID})
		if err != nil {
			return nil, err
		}
		all = append(all, responses...)
		peer := PeerScore{
			ID:         loc.ID,
			Name:       loc.Name,
			Overall:    OverallScore(responses, DefaultScaleMax),
			Categories: make(map[string]Score, len(Categories)),
			SampleSize: len(responses),
		}
		for _, def := range Categories {
			peer.Categories[def.Name] = CategoryScore(responses, def, DefaultScaleMax)
		}
		peers = append(peers, peer)
	}

	overall := OverallScore(all, DefaultScaleMax)
	enps := ENPS(all)
	return &OrganizationReport{
		OrganizationID: admin.OrganizationID,
		ResponseCount:  len(all),
		Overall:        overall,
		OverallRisk:    ScoreRisk(overall),
		ENPS:           enps,
		ENPSRisk:       ENPSRisk(enps),
		Locations:      RankPeers(peers),
		Impact:         ComputeImpact(peers),
	}, nil
}

func questionMeans(responses []*models.Response) map[string]Score {
	means := make(map[string]Score, len(DriverKeys))
	for _, key := range DriverKeys {
		means[key] = QuestionScore(responses, key, DefaultScaleMax)
	}
	return means
}

// periodOveralls buckets responses by calendar month and scores each bucket,
// oldest first, for the volatility rule.
func periodOveralls(responses []*models.Response) []Score {
	buckets := map[string][]*models.Response{}
	for _, r := range responses {
		month := r.SubmittedAt.UTC().Format("2006-01")
		buckets[month] = append(buckets[month], r)
	}
	months := make([]string, 0, len(buckets))
	for m := range buckets {
		months = append(months, m)
	}
	sort.Strings(months)
	out := make([]Score, 0, len(months))
	for _, m := range months {
		out = append(out, OverallScore(buckets[m], DefaultScaleMax))
	}
	return out
}

func (s *ReportService) benchmarksFor(industry string) (map[string]*models.Benchmark, error) {
	key := "benchmarks:" + industry
	if cached, ok := s.cache.Get(key); ok {
		if m, ok := cached.(map[string]*models.Benchmark); ok {
			return m, nil
		}
	}
	rows, err := s.store.ListBenchmarks(industry)
	if err != nil {
		return nil, err
	}
	m := make(map[string]*models.Benchmark, len(rows))
	for _, b := range rows {
		m[b.Category] = b
	}
	s.cache.Set(key, m, benchmarkTTL)
	return m, nil
}
