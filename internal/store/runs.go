package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/beaconlabs/beacon/internal/models"
)

// RunSummary is one row of run history, without the full outcome payload.
type RunSummary struct {
	RunID        string
	CompanyName  string
	Domain       string
	CreatedAt    string
	OverallScore float64
	Severity     string
	Backends     []string
	TotalPrompts int
	ErrorCount   int
}

// SaveRun persists a completed audit outcome. The full outcome is stored as
// JSON alongside the indexed summary columns.
func (s *Store) SaveRun(outcome *models.AuditOutcome) error {
	payload, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("marshaling outcome: %w", err)
	}

	_, err = s.conn.Exec(
		`INSERT OR REPLACE INTO runs
		(run_id, company_name, domain, duration_ms, overall_score, severity,
		 mention_frequency, position_quality, narrative_accuracy, founder_retrieval,
		 total_prompts, total_responses, mentions_count, error_count,
		 total_tokens, estimated_cost_usd, backends, outcome_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		outcome.RunID, outcome.CompanyName, outcome.Domain, outcome.DurationMs,
		outcome.Analysis.OverallScore, string(outcome.Analysis.Severity),
		outcome.Analysis.MentionFrequency, outcome.Analysis.PositionQuality,
		outcome.Analysis.NarrativeAccuracy, outcome.Analysis.FounderRetrieval,
		outcome.Analysis.TotalPrompts, outcome.Analysis.TotalResponses,
		outcome.Analysis.MentionsCount, outcome.Analysis.ErrorCount,
		outcome.Analysis.TotalTokens, outcome.Analysis.EstimatedCostUSD,
		strings.Join(outcome.Backends, ","), string(payload),
	)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// GetRun loads the full outcome for a run ID. Returns nil if not found.
func (s *Store) GetRun(runID string) (*models.AuditOutcome, error) {
	row := s.conn.QueryRow("SELECT outcome_json FROM runs WHERE run_id = ?", runID)

	var payload string
	if err := row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	var outcome models.AuditOutcome
	if err := json.Unmarshal([]byte(payload), &outcome); err != nil {
		return nil, fmt.Errorf("decoding run %s: %w", runID, err)
	}
	return &outcome, nil
}

// ListRuns returns run summaries for a company, most recent first. An empty
// company name lists all runs.
func (s *Store) ListRuns(companyName string, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT run_id, company_name, domain, created_at, overall_score,
		severity, backends, total_prompts, error_count
		FROM runs`
	args := []any{}
	if companyName != "" {
		query += " WHERE company_name = ?"
		args = append(args, companyName)
	}
	query += " ORDER BY created_at DESC, run_id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var r RunSummary
		var backends string
		if err := rows.Scan(&r.RunID, &r.CompanyName, &r.Domain, &r.CreatedAt,
			&r.OverallScore, &r.Severity, &backends, &r.TotalPrompts, &r.ErrorCount); err != nil {
			return nil, err
		}
		if backends != "" {
			r.Backends = strings.Split(backends, ",")
		}
		summaries = append(summaries, r)
	}
	return summaries, rows.Err()
}

// PreviousScore returns the overall score of the most recent stored run for
// a company, excluding the given run ID. The second return is false when no
// prior run exists.
func (s *Store) PreviousScore(companyName, excludeRunID string) (float64, bool, error) {
	row := s.conn.QueryRow(
		`SELECT overall_score FROM runs
		WHERE company_name = ? AND run_id != ?
		ORDER BY created_at DESC, run_id DESC LIMIT 1`,
		companyName, excludeRunID,
	)

	var score float64
	if err := row.Scan(&score); err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, err
	}
	return score, true, nil
}
