package goldlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Schema is the DDL for the gold-log table. Idempotent; applied by
// [PostgresSink.Migrate].
const Schema = `
CREATE TABLE IF NOT EXISTS gold_log (
	id BIGSERIAL PRIMARY KEY,
	ts TIMESTAMPTZ NOT NULL,
	asr_text TEXT NOT NULL,
	language TEXT NOT NULL,
	decision TEXT NOT NULL,
	v3_result JSONB,
	teacher_result JSONB,
	discrepancies JSONB,
	confidence_after DOUBLE PRECISION NOT NULL,
	am_pm_decision TEXT,
	used_triggers JSONB NOT NULL DEFAULT '[]'::jsonb,
	desc_had_time_tokens_removed BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS idx_gold_log_ts ON gold_log (ts);
CREATE INDEX IF NOT EXISTS idx_gold_log_decision ON gold_log (decision);
CREATE INDEX IF NOT EXISTS idx_gold_log_language ON gold_log (language);
`

// DB is the subset of pgx operations the sink needs. Both *pgxpool.Pool and
// *pgx.Conn satisfy this.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresSink persists entries in Postgres for querying and the scheduled
// agreement summary.
type PostgresSink struct {
	db DB
}

var _ Sink = (*PostgresSink)(nil)

// NewPostgresSink returns a sink over db. Call [PostgresSink.Migrate] before
// the first append.
func NewPostgresSink(db DB) *PostgresSink {
	return &PostgresSink{db: db}
}

// Migrate applies [Schema].
func (s *PostgresSink) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("goldlog: migrate: %w", err)
	}
	return nil
}

// Append inserts e as one row.
func (s *PostgresSink) Append(ctx context.Context, e Entry) error {
	v3, err := marshalNullable(e.V3Result)
	if err != nil {
		return fmt.Errorf("goldlog: marshal v3 result: %w", err)
	}
	tr, err := marshalNullable(e.TeacherResult)
	if err != nil {
		return fmt.Errorf("goldlog: marshal teacher result: %w", err)
	}
	disc, err := marshalNullable(e.Discrepancies)
	if err != nil {
		return fmt.Errorf("goldlog: marshal discrepancies: %w", err)
	}
	triggers, err := json.Marshal(e.UsedTriggers)
	if err != nil {
		return fmt.Errorf("goldlog: marshal triggers: %w", err)
	}

	var ampm *string
	if e.AMPMDecision != "" {
		ampm = &e.AMPMDecision
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO gold_log (
			ts, asr_text, language, decision,
			v3_result, teacher_result, discrepancies,
			confidence_after, am_pm_decision, used_triggers,
			desc_had_time_tokens_removed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		e.Timestamp, e.ASRText, string(e.Language), string(e.Decision),
		v3, tr, disc,
		e.ConfidenceAfter, ampm, triggers,
		e.DescHadTimeTokensRemoved,
	)
	if err != nil {
		return fmt.Errorf("goldlog: insert entry: %w", err)
	}
	return nil
}

// AgreementReport summarizes how often the fast path agreed with the teacher
// over a window.
type AgreementReport struct {
	Since time.Time

	Total     int
	Escalated int
	Overrides int

	// BySeverity counts escalated entries that recorded a discrepancy.
	BySeverity map[Severity]int
}

// AgreementRate is the share of escalated entries the teacher did not
// override. Returns 1 when nothing was escalated.
func (r AgreementReport) AgreementRate() float64 {
	if r.Escalated == 0 {
		return 1
	}
	return float64(r.Escalated-r.Overrides) / float64(r.Escalated)
}

// Agreement reports fast-path/teacher agreement for entries since the given
// instant.
func (s *PostgresSink) Agreement(ctx context.Context, since time.Time) (AgreementReport, error) {
	report := AgreementReport{
		Since:      since,
		BySeverity: make(map[Severity]int),
	}

	err := s.db.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE decision <> 'v3'),
			COUNT(*) FILTER (WHERE decision = 'teacher_override')
		FROM gold_log WHERE ts >= $1`, since).
		Scan(&report.Total, &report.Escalated, &report.Overrides)
	if err != nil {
		return AgreementReport{}, fmt.Errorf("goldlog: agreement totals: %w", err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT discrepancies->>'severity', COUNT(*)
		FROM gold_log
		WHERE ts >= $1 AND discrepancies IS NOT NULL
		GROUP BY 1`, since)
	if err != nil {
		return AgreementReport{}, fmt.Errorf("goldlog: agreement severities: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sev string
		var n int
		if err := rows.Scan(&sev, &n); err != nil {
			return AgreementReport{}, fmt.Errorf("goldlog: scan severity row: %w", err)
		}
		report.BySeverity[Severity(sev)] = n
	}
	if err := rows.Err(); err != nil {
		return AgreementReport{}, fmt.Errorf("goldlog: severity rows: %w", err)
	}
	return report, nil
}

// marshalNullable marshals v, mapping a nil pointer to SQL NULL.
func marshalNullable[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
