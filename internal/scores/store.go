// Package scores provides a local, DuckDB-backed lookup store for
// precomputed per-variant scores (cadd_phred, dosage_sensitivity) this
// pipeline's domain stack carries beyond the remote recoder/VEP calls.
//
// Adapted from the teacher's internal/datasource/alphamissense package:
// same sql.DB-over-DuckDB schema/prepared-statement/batch-join shape,
// generalized from a single am_pathogenicity/am_class pair to the
// cadd_phred/dosage_sensitivity columns this pipeline's AnnotationRecord
// carries, and keyed by the pipeline's own canonical variant key string
// instead of a (chrom,pos,ref,alt) tuple.
package scores

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/vibe-annotate/vibe-annotate/internal/model"
)

// Store is a local lookup table of precomputed scores keyed by canonical
// variant key ("CHROM-POS-REF-ALT").
type Store struct {
	db       *sql.DB
	lookupPS *sql.Stmt
}

// Open opens or creates a DuckDB database at dbPath holding the scores
// table. An empty dbPath opens an in-memory database.
func Open(dbPath string) (*Store, error) {
	if dbPath != "" {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create directory: %w", err)
			}
		}
	}

	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS variant_scores (
		variant_key VARCHAR PRIMARY KEY,
		cadd_phred FLOAT,
		dosage_sensitivity VARCHAR
	)`); err != nil {
		return err
	}
	_, err := s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_variant_scores_key ON variant_scores (variant_key)`)
	return err
}

// Loaded reports whether the score table carries any rows.
func (s *Store) Loaded() bool {
	var count int64
	err := s.db.QueryRow("SELECT COUNT(*) FROM variant_scores").Scan(&count)
	return err == nil && count > 0
}

// Result is one variant's locally-stored score row.
type Result struct {
	CADDPhred         float64
	DosageSensitivity string
}

// Lookup fetches the score row for a single variant key.
func (s *Store) Lookup(key model.VariantKey) (Result, bool) {
	if s.lookupPS == nil {
		ps, err := s.db.Prepare(
			"SELECT cadd_phred, dosage_sensitivity FROM variant_scores WHERE variant_key = ? LIMIT 1",
		)
		if err != nil {
			return Result{}, false
		}
		s.lookupPS = ps
	}
	var r Result
	if err := s.lookupPS.QueryRow(string(key)).Scan(&r.CADDPhred, &r.DosageSensitivity); err != nil {
		return Result{}, false
	}
	return r, true
}

// BatchLookup queries scores for many variant keys at once via a temporary
// table join, mirroring the teacher's AlphaMissense BatchLookup for
// high-throughput batch annotation.
func (s *Store) BatchLookup(keys []model.VariantKey) (map[model.VariantKey]Result, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	if _, err := s.db.Exec(`CREATE TEMPORARY TABLE IF NOT EXISTS batch_variant_keys (variant_key VARCHAR)`); err != nil {
		return nil, fmt.Errorf("create temp table: %w", err)
	}
	defer s.db.Exec(`DROP TABLE IF EXISTS batch_variant_keys`)
	s.db.Exec(`DELETE FROM batch_variant_keys`)

	const chunkSize = 1000
	for i := 0; i < len(keys); i += chunkSize {
		end := i + chunkSize
		if end > len(keys) {
			end = len(keys)
		}
		chunk := keys[i:end]

		var sb strings.Builder
		sb.WriteString("INSERT INTO batch_variant_keys VALUES ")
		for j, k := range chunk {
			if j > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(&sb, "('%s')", strings.ReplaceAll(string(k), "'", "''"))
		}
		if _, err := s.db.Exec(sb.String()); err != nil {
			return nil, fmt.Errorf("insert batch keys: %w", err)
		}
	}

	rows, err := s.db.Query(`
		SELECT b.variant_key, v.cadd_phred, v.dosage_sensitivity
		FROM batch_variant_keys b
		JOIN variant_scores v ON v.variant_key = b.variant_key
	`)
	if err != nil {
		return nil, fmt.Errorf("batch lookup query: %w", err)
	}
	defer rows.Close()

	results := make(map[model.VariantKey]Result, len(keys))
	for rows.Next() {
		var key string
		var r Result
		if err := rows.Scan(&key, &r.CADDPhred, &r.DosageSensitivity); err != nil {
			return nil, fmt.Errorf("scan batch result: %w", err)
		}
		results[model.VariantKey(key)] = r
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("batch lookup rows: %w", err)
	}
	return results, nil
}

// Load bulk-loads scores from a TSV file with a header row naming
// variant_key, cadd_phred, dosage_sensitivity columns (in any order), using
// DuckDB's read_csv for fast ingestion.
func (s *Store) Load(tsvPath string) error {
	s.db.Exec(`DELETE FROM variant_scores`)
	query := fmt.Sprintf(`INSERT INTO variant_scores
		SELECT variant_key, CAST(cadd_phred AS FLOAT), dosage_sensitivity
		FROM read_csv('%s', delim='\t', header=true)`, tsvPath)
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("loading variant scores: %w", err)
	}
	return nil
}

// Close releases the prepared statement and underlying connection.
func (s *Store) Close() error {
	if s.lookupPS != nil {
		s.lookupPS.Close()
	}
	return s.db.Close()
}
