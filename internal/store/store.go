// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists assessed studies in a SQLite database. Records are
// kept in submission order; they are appended or deleted, never updated.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/nos-assess/internal/logger"
	"github.com/pdiddy/nos-assess/internal/scoring"
	"github.com/pdiddy/nos-assess/pkg/types"
)

const dbFile = "nos.db"

// ErrNotFound is returned when no record matches an ID or position.
var ErrNotFound = errors.New("study not found")

// Store manages the study list database.
type Store struct {
	db     *sql.DB
	engine *scoring.Engine
	log    *logger.Logger
	now    func() time.Time
}

// NewStore opens or creates the study database at cfg.DataDir/nos.db and
// creates the schema if it does not exist.
func NewStore(cfg types.StoreConfig, engine *scoring.Engine, log *logger.Logger) (*Store, error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "data"
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One writer keeps append/delete ordering strict.
	db.SetMaxOpenConns(1)

	if log == nil {
		log = logger.Nop()
	}
	s := &Store{
		db:     db,
		engine: engine,
		log:    log.With("component", "store"),
		now:    time.Now,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS studies (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			study_name TEXT NOT NULL,
			authors TEXT,
			publication_year INTEGER,
			journal TEXT,
			doi TEXT,
			study_type TEXT NOT NULL,
			assessment TEXT NOT NULL,
			total_stars INTEGER NOT NULL,
			quality_rating TEXT NOT NULL,
			notes TEXT,
			assessment_date TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_studies_type ON studies(study_type)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// newStudyID returns an identifier of the form STU-{nanoid(10)}.
func newStudyID() (string, error) {
	id, err := gonanoid.New(10)
	if err != nil {
		return "", err
	}
	return "STU-" + id, nil
}

// Add validates and scores rec, then appends it to the study list. The
// stored record carries a fresh ID, the assessment date and the cached score.
func (s *Store) Add(ctx context.Context, rec types.StudyRecord) (types.StudyRecord, error) {
	now := s.now()
	if err := rec.Validate(now); err != nil {
		return types.StudyRecord{}, err
	}
	if err := s.engine.Validate(rec.StudyType, rec.Assessment); err != nil {
		return types.StudyRecord{}, err
	}
	res, err := s.engine.Score(rec.StudyType, rec.Assessment)
	if err != nil {
		return types.StudyRecord{}, err
	}

	id, err := newStudyID()
	if err != nil {
		return types.StudyRecord{}, fmt.Errorf("generating study ID: %w", err)
	}

	rec.ID = id
	rec.Assessment = rec.Assessment.Clone()
	rec.TotalStars = res.TotalStars
	rec.QualityRating = res.Tier.Label()
	rec.AssessmentDate = now.Format(types.AssessmentDateLayout)

	assessmentJSON, err := json.Marshal(rec.Assessment)
	if err != nil {
		return types.StudyRecord{}, fmt.Errorf("marshaling assessment: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO studies (id, study_name, authors, publication_year, journal, doi,
			study_type, assessment, total_stars, quality_rating, notes, assessment_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.StudyName, rec.Authors, rec.PublicationYear, rec.Journal, rec.DOI,
		string(rec.StudyType), string(assessmentJSON), rec.TotalStars, rec.QualityRating,
		rec.Notes, rec.AssessmentDate,
	)
	if err != nil {
		return types.StudyRecord{}, fmt.Errorf("inserting study: %w", err)
	}

	s.log.Debug("appended study", "id", rec.ID, "type", rec.StudyType, "stars", rec.TotalStars)
	return rec, nil
}

const selectColumns = `id, study_name, authors, publication_year, journal, doi,
	study_type, assessment, total_stars, quality_rating, notes, assessment_date`

// List returns all records in submission order.
func (s *Store) List(ctx context.Context) ([]types.StudyRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM studies ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("listing studies: %w", err)
	}
	defer rows.Close()

	var records []types.StudyRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Get returns the record with the given ID.
func (s *Store) Get(ctx context.Context, id string) (types.StudyRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM studies WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.StudyRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec, err
}

// At returns the record at the 1-based position in submission order.
func (s *Store) At(ctx context.Context, position int) (types.StudyRecord, error) {
	if position < 1 {
		return types.StudyRecord{}, fmt.Errorf("%w: position %d", ErrNotFound, position)
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM studies ORDER BY seq LIMIT 1 OFFSET ?`, position-1)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.StudyRecord{}, fmt.Errorf("%w: position %d", ErrNotFound, position)
	}
	return rec, err
}

// Delete removes the record with the given ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM studies WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting study: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting study: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.log.Debug("deleted study", "id", id)
	return nil
}

// DeleteAt removes the record at the 1-based position and returns it.
func (s *Store) DeleteAt(ctx context.Context, position int) (types.StudyRecord, error) {
	rec, err := s.At(ctx, position)
	if err != nil {
		return types.StudyRecord{}, err
	}
	if err := s.Delete(ctx, rec.ID); err != nil {
		return types.StudyRecord{}, err
	}
	return rec, nil
}

// Clear removes every record and returns how many were deleted.
func (s *Store) Clear(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM studies`)
	if err != nil {
		return 0, fmt.Errorf("clearing studies: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clearing studies: %w", err)
	}
	s.log.Info("cleared study list", "deleted", n)
	return int(n), nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM studies`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting studies: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (types.StudyRecord, error) {
	var (
		rec            types.StudyRecord
		studyType      string
		assessmentJSON string
		authors        sql.NullString
		year           sql.NullInt64
		journal        sql.NullString
		doi            sql.NullString
		notes          sql.NullString
	)
	err := row.Scan(
		&rec.ID, &rec.StudyName, &authors, &year, &journal, &doi,
		&studyType, &assessmentJSON, &rec.TotalStars, &rec.QualityRating,
		&notes, &rec.AssessmentDate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("scanning row: %w", err)
	}

	rec.StudyType = types.StudyType(studyType)
	rec.Authors = authors.String
	rec.PublicationYear = int(year.Int64)
	rec.Journal = journal.String
	rec.DOI = doi.String
	rec.Notes = notes.String
	if err := json.Unmarshal([]byte(assessmentJSON), &rec.Assessment); err != nil {
		return rec, fmt.Errorf("decoding assessment of %s: %w", rec.ID, err)
	}
	return rec, nil
}
