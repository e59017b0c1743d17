package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/shiftpulse/shiftpulse/internal/models"
)

// SQLiteStore implements every service store interface over one sqlite
// database. Response ingestion and identity reveal are single transactions.
type SQLiteStore struct {
	db  *sql.DB
	log *zap.Logger
}

func NewSQLiteStore(db *sql.DB, log *zap.Logger) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	if log == nil {
		log = zap.NewNop()
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{db: db, log: log}, nil
}

func toNullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func encodeJSON(v any) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeJSON(s sql.NullString, v any) error {
	if !s.Valid || s.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(s.String), v)
}

// --- organizations ---

func (s *SQLiteStore) AddOrganization(o *models.Organization) error {
	_, err := s.db.Exec(
		`INSERT INTO organizations (id, name, industry, created_at) VALUES (?, ?, ?, ?)`,
		o.ID, o.Name, o.Industry, o.CreatedAt,
	)
	return err
}

func (s *SQLiteStore) GetOrganization(id string) (*models.Organization, error) {
	row := s.db.QueryRow(`SELECT id, name, industry, created_at FROM organizations WHERE id = ?`, id)
	var o models.Organization
	if err := row.Scan(&o.ID, &o.Name, &o.Industry, &o.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

// --- admins ---

func (s *SQLiteStore) AddAdmin(a *models.Admin) error {
	assigned, err := encodeJSON(a.AssignedLocationIDs)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO admins (id, organization_id, email, pass_hash, role, access_mode, assigned_location_ids, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.OrganizationID, a.Email, a.PassHash, string(a.Role), string(a.AccessMode), assigned, a.CreatedAt,
	)
	return err
}

func (s *SQLiteStore) GetAdmin(id string) (*models.Admin, error) {
	return s.scanAdmin(s.db.QueryRow(
		`SELECT id, organization_id, email, pass_hash, role, access_mode, assigned_location_ids, created_at
		 FROM admins WHERE id = ?`, id))
}

func (s *SQLiteStore) FindAdminByEmail(email string) (*models.Admin, error) {
	return s.scanAdmin(s.db.QueryRow(
		`SELECT id, organization_id, email, pass_hash, role, access_mode, assigned_location_ids, created_at
		 FROM admins WHERE email = ?`, email))
}

func (s *SQLiteStore) scanAdmin(row *sql.Row) (*models.Admin, error) {
	var a models.Admin
	var role, mode string
	var assigned sql.NullString
	if err := row.Scan(&a.ID, &a.OrganizationID, &a.Email, &a.PassHash, &role, &mode, &assigned, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	a.Role = models.Role(role)
	a.AccessMode = models.AccessMode(mode)
	if err := decodeJSON(assigned, &a.AssignedLocationIDs); err != nil {
		return nil, err
	}
	return &a, nil
}

// --- locations ---

func (s *SQLiteStore) AddLocation(loc *models.Location) error {
	_, err := s.db.Exec(
		`INSERT INTO locations (id, organization_id, parent_id, name, active) VALUES (?, ?, ?, ?, ?)`,
		loc.ID, loc.OrganizationID, toNullString(loc.ParentID), loc.Name, boolToInt(loc.Active),
	)
	return err
}

func (s *SQLiteStore) GetLocation(id string) (*models.Location, error) {
	row := s.db.QueryRow(`SELECT id, organization_id, parent_id, name, active FROM locations WHERE id = ?`, id)
	loc, err := scanLocation(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return loc, nil
}

func (s *SQLiteStore) ListLocations(orgID string) ([]*models.Location, error) {
	rows, err := s.db.Query(
		`SELECT id, organization_id, parent_id, name, active FROM locations WHERE organization_id = ? ORDER BY name, id`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*models.Location
	for rows.Next() {
		loc, err := scanLocation(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, loc)
	}
	return out, rows.Err()
}

func scanLocation(scan func(...any) error) (*models.Location, error) {
	var loc models.Location
	var parent sql.NullString
	var active int
	if err := scan(&loc.ID, &loc.OrganizationID, &parent, &loc.Name, &active); err != nil {
		return nil, err
	}
	loc.ParentID = parent.String
	loc.Active = active != 0
	return &loc, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// --- questions ---

func (s *SQLiteStore) ListQuestions() ([]*models.Question, error) {
	rows, err := s.db.Query(`SELECT id, ord, category, scale_max, reverse_scored FROM questions ORDER BY ord`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*models.Question
	for rows.Next() {
		var q models.Question
		var reverse int
		if err := rows.Scan(&q.ID, &q.Order, &q.Category, &q.ScaleMax, &reverse); err != nil {
			return nil, err
		}
		q.ReverseScored = reverse != 0
		out = append(out, &q)
	}
	return out, rows.Err()
}

// --- responses ---

// AddResponse writes the response row, including every derived field, in one
// transaction so partially-derived rows can never be observed.
func (s *SQLiteStore) AddResponse(r *models.Response) error {
	answers, err := encodeJSON(r.Answers)
	if err != nil {
		return err
	}
	reasons, err := encodeJSON(r.FlagReasons)
	if err != nil {
		return err
	}
	var enps sql.NullInt64
	if r.ENPSRaw != nil {
		enps = sql.NullInt64{Int64: int64(*r.ENPSRaw), Valid: true}
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	_, err = tx.Exec(
		`INSERT INTO responses
		 (id, location_id, answers, enps_raw, text_good, text_improve, text_other, flagged, flag_reasons, encrypted_identity, identity_consent, submitted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.LocationID, answers, enps, r.TextGood, r.TextImprove, r.TextOther,
		boolToInt(r.Flagged), reasons, r.EncryptedIdentity, boolToInt(r.IdentityConsent), r.SubmittedAt,
	)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetResponse(id string) (*models.Response, error) {
	row := s.db.QueryRow(
		`SELECT id, location_id, answers, enps_raw, text_good, text_improve, text_other, flagged, flag_reasons, encrypted_identity, identity_consent, submitted_at
		 FROM responses WHERE id = ?`, id)
	resp, err := scanResponse(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return resp, nil
}

func (s *SQLiteStore) ListResponses(locationIDs []string) ([]*models.Response, error) {
	if len(locationIDs) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimRight(strings.Repeat("?,", len(locationIDs)), ",")
	args := make([]any, 0, len(locationIDs))
	for _, id := range locationIDs {
		args = append(args, id)
	}
	rows, err := s.db.Query(
		`SELECT id, location_id, answers, enps_raw, text_good, text_improve, text_other, flagged, flag_reasons, encrypted_identity, identity_consent, submitted_at
		 FROM responses WHERE location_id IN (`+placeholders+`) ORDER BY submitted_at, id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*models.Response
	for rows.Next() {
		resp, err := scanResponse(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, rows.Err()
}

func scanResponse(scan func(...any) error) (*models.Response, error) {
	var r models.Response
	var answers, reasons sql.NullString
	var enps sql.NullInt64
	var flagged, consent int
	if err := scan(&r.ID, &r.LocationID, &answers, &enps, &r.TextGood, &r.TextImprove, &r.TextOther,
		&flagged, &reasons, &r.EncryptedIdentity, &consent, &r.SubmittedAt); err != nil {
		return nil, err
	}
	if err := decodeJSON(answers, &r.Answers); err != nil {
		return nil, err
	}
	if err := decodeJSON(reasons, &r.FlagReasons); err != nil {
		return nil, err
	}
	if enps.Valid {
		v := int(enps.Int64)
		r.ENPSRaw = &v
	}
	r.Flagged = flagged != 0
	r.IdentityConsent = consent != 0
	return &r, nil
}

// --- benchmarks ---

func (s *SQLiteStore) AddBenchmark(b *models.Benchmark) error {
	_, err := s.db.Exec(
		`INSERT INTO benchmarks (industry, category, avg_score, sample_size) VALUES (?, ?, ?, ?)
		 ON CONFLICT(industry, category) DO UPDATE SET avg_score = excluded.avg_score, sample_size = excluded.sample_size`,
		b.Industry, b.Category, b.AvgScore, b.SampleSize,
	)
	return err
}

func (s *SQLiteStore) ListBenchmarks(industry string) ([]*models.Benchmark, error) {
	rows, err := s.db.Query(
		`SELECT industry, category, avg_score, sample_size FROM benchmarks WHERE industry = ?`, industry)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*models.Benchmark
	for rows.Next() {
		var b models.Benchmark
		if err := rows.Scan(&b.Industry, &b.Category, &b.AvgScore, &b.SampleSize); err != nil {
			return nil, err
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

// --- identity access log ---

// RevealIdentity inserts the access-log entry, reads the sealed blob and
// runs open, all inside one transaction. A failing open rolls the entry
// back, so no plaintext is ever disclosed without a durable audit row and no
// failed reveal leaves one behind.
func (s *SQLiteStore) RevealIdentity(entry *models.IdentityAccessLog, open func(blob []byte) (string, error)) (string, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return "", err
	}
	var blob []byte
	if err := tx.QueryRow(`SELECT encrypted_identity FROM responses WHERE id = ?`, entry.ResponseID).Scan(&blob); err != nil {
		_ = tx.Rollback()
		return "", err
	}
	if _, err := tx.Exec(
		`INSERT INTO identity_access_logs (id, response_id, revealed_by, reason, requested_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.ResponseID, entry.RevealedBy, entry.Reason, entry.RequestedBy, entry.CreatedAt,
	); err != nil {
		_ = tx.Rollback()
		return "", err
	}
	plaintext, err := open(blob)
	if err != nil {
		_ = tx.Rollback()
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	s.log.Info("identity revealed",
		zap.String("response_id", entry.ResponseID),
		zap.String("revealed_by", entry.RevealedBy))
	return plaintext, nil
}

// ListIdentityAccessLogs returns the audit trail for one response, oldest
// first.
func (s *SQLiteStore) ListIdentityAccessLogs(responseID string) ([]*models.IdentityAccessLog, error) {
	rows, err := s.db.Query(
		`SELECT id, response_id, revealed_by, reason, requested_by, created_at
		 FROM identity_access_logs WHERE response_id = ? ORDER BY created_at, id`, responseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*models.IdentityAccessLog
	for rows.Next() {
		var l models.IdentityAccessLog
		if err := rows.Scan(&l.ID, &l.ResponseID, &l.RevealedBy, &l.Reason, &l.RequestedBy, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}
