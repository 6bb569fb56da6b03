package goldlog_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kkarklins/balss/internal/goldlog"
	"github.com/kkarklins/balss/pkg/types"
)

// ---------------------------------------------------------------------------
// Test helpers — mock DB types
// ---------------------------------------------------------------------------

// mockRow implements pgx.Row for testing.
type mockRow struct {
	scanFunc func(dest ...any) error
}

func (r *mockRow) Scan(dest ...any) error { return r.scanFunc(dest...) }

// mockRows implements pgx.Rows for testing.
type mockRows struct {
	data   [][]any
	idx    int
	err    error
	closed bool
}

func (r *mockRows) Close()                                       { r.closed = true }
func (r *mockRows) Err() error                                   { return r.err }
func (r *mockRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *mockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *mockRows) RawValues() [][]byte                          { return nil }
func (r *mockRows) Conn() *pgx.Conn                              { return nil }

func (r *mockRows) Next() bool {
	if r.idx >= len(r.data) {
		return false
	}
	r.idx++
	return true
}

func (r *mockRows) Scan(dest ...any) error {
	row := r.data[r.idx-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: expected %d columns, got %d destinations", len(row), len(dest))
	}
	for i, v := range row {
		switch d := dest[i].(type) {
		case *string:
			*d = v.(string)
		case *int:
			*d = v.(int)
		default:
			return fmt.Errorf("scan: unsupported type at index %d: %T", i, dest[i])
		}
	}
	return nil
}

func (r *mockRows) Values() ([]any, error) { return nil, nil }

// mockDB implements the DB interface for testing.
type mockDB struct {
	queryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row
	queryFunc    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	execFunc     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (m *mockDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if m.queryRowFunc != nil {
		return m.queryRowFunc(ctx, sql, args...)
	}
	return &mockRow{scanFunc: func(dest ...any) error { return pgx.ErrNoRows }}
}

func (m *mockDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if m.queryFunc != nil {
		return m.queryFunc(ctx, sql, args...)
	}
	return &mockRows{}, nil
}

func (m *mockDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if m.execFunc != nil {
		return m.execFunc(ctx, sql, args...)
	}
	return pgconn.CommandTag{}, nil
}

// ---------------------------------------------------------------------------
// Migrate tests
// ---------------------------------------------------------------------------

func TestPostgresSink_Migrate(t *testing.T) {
	t.Parallel()

	var gotSQL string
	db := &mockDB{
		execFunc: func(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
			gotSQL = sql
			return pgconn.CommandTag{}, nil
		},
	}
	if err := goldlog.NewPostgresSink(db).Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error: %v", err)
	}
	if !strings.Contains(gotSQL, "CREATE TABLE IF NOT EXISTS gold_log") {
		t.Errorf("Migrate() did not apply the schema, got: %.80s", gotSQL)
	}
}

func TestPostgresSink_Migrate_Error(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("connection refused")
	db := &mockDB{
		execFunc: func(context.Context, string, ...any) (pgconn.CommandTag, error) {
			return pgconn.CommandTag{}, wantErr
		},
	}
	err := goldlog.NewPostgresSink(db).Migrate(context.Background())
	if !errors.Is(err, wantErr) {
		t.Errorf("Migrate() error = %v, want wrapped %v", err, wantErr)
	}
}

// ---------------------------------------------------------------------------
// Append tests
// ---------------------------------------------------------------------------

func TestPostgresSink_Append(t *testing.T) {
	t.Parallel()

	var (
		gotSQL  string
		gotArgs []any
	)
	db := &mockDB{
		execFunc: func(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			gotSQL = sql
			gotArgs = args
			return pgconn.CommandTag{}, nil
		},
	}

	entry := sampleEntry("helista emale homme kell viis", goldlog.DecisionFastPath)
	entry.AMPMDecision = "5->17 (default pm)"
	if err := goldlog.NewPostgresSink(db).Append(context.Background(), entry); err != nil {
		t.Fatalf("Append() error: %v", err)
	}

	if !strings.Contains(gotSQL, "INSERT INTO gold_log") {
		t.Fatalf("Append() SQL = %.80s, want gold_log insert", gotSQL)
	}
	if len(gotArgs) != 11 {
		t.Fatalf("Append() passed %d args, want 11", len(gotArgs))
	}
	if gotArgs[1] != entry.ASRText {
		t.Errorf("asr_text arg = %v, want %q", gotArgs[1], entry.ASRText)
	}
	if gotArgs[2] != string(types.LanguageLatvian) {
		t.Errorf("language arg = %v, want lv", gotArgs[2])
	}
	if gotArgs[3] != string(goldlog.DecisionFastPath) {
		t.Errorf("decision arg = %v, want v3", gotArgs[3])
	}
	ampm, ok := gotArgs[8].(*string)
	if !ok || ampm == nil || *ampm != entry.AMPMDecision {
		t.Errorf("am_pm_decision arg = %v, want %q", gotArgs[8], entry.AMPMDecision)
	}
}

func TestPostgresSink_Append_NullableColumns(t *testing.T) {
	t.Parallel()

	var gotArgs []any
	db := &mockDB{
		execFunc: func(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
			gotArgs = args
			return pgconn.CommandTag{}, nil
		},
	}

	// No teacher consultation: teacher_result, discrepancies and
	// am_pm_decision must all land as SQL NULL.
	entry := sampleEntry("izņemt veļu", goldlog.DecisionFastPath)
	entry.TeacherResult = nil
	entry.Discrepancies = nil
	entry.AMPMDecision = ""
	if err := goldlog.NewPostgresSink(db).Append(context.Background(), entry); err != nil {
		t.Fatalf("Append() error: %v", err)
	}

	if tr := gotArgs[5].([]byte); tr != nil {
		t.Errorf("teacher_result arg = %s, want nil", tr)
	}
	if disc := gotArgs[6].([]byte); disc != nil {
		t.Errorf("discrepancies arg = %s, want nil", disc)
	}
	if ampm := gotArgs[8].(*string); ampm != nil {
		t.Errorf("am_pm_decision arg = %q, want nil", *ampm)
	}
	if v3 := gotArgs[4].([]byte); len(v3) == 0 {
		t.Error("v3_result arg is empty, want marshalled resolution")
	}
}

func TestPostgresSink_Append_Error(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("deadlock detected")
	db := &mockDB{
		execFunc: func(context.Context, string, ...any) (pgconn.CommandTag, error) {
			return pgconn.CommandTag{}, wantErr
		},
	}
	err := goldlog.NewPostgresSink(db).Append(context.Background(),
		sampleEntry("izņemt veļu", goldlog.DecisionFastPath))
	if !errors.Is(err, wantErr) {
		t.Errorf("Append() error = %v, want wrapped %v", err, wantErr)
	}
}

// ---------------------------------------------------------------------------
// Agreement tests
// ---------------------------------------------------------------------------

func TestPostgresSink_Agreement(t *testing.T) {
	t.Parallel()

	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := &mockRows{data: [][]any{
		{"high", 2},
		{"low", 1},
	}}
	db := &mockDB{
		queryRowFunc: func(_ context.Context, _ string, args ...any) pgx.Row {
			if len(args) != 1 || !args[0].(time.Time).Equal(since) {
				t.Errorf("totals query args = %v, want [%v]", args, since)
			}
			return &mockRow{scanFunc: func(dest ...any) error {
				*dest[0].(*int) = 10
				*dest[1].(*int) = 4
				*dest[2].(*int) = 3
				return nil
			}}
		},
		queryFunc: func(context.Context, string, ...any) (pgx.Rows, error) {
			return rows, nil
		},
	}

	report, err := goldlog.NewPostgresSink(db).Agreement(context.Background(), since)
	if err != nil {
		t.Fatalf("Agreement() error: %v", err)
	}
	if report.Total != 10 || report.Escalated != 4 || report.Overrides != 3 {
		t.Errorf("report = %+v, want total 10, escalated 4, overrides 3", report)
	}
	if report.BySeverity[goldlog.SeverityHigh] != 2 || report.BySeverity[goldlog.SeverityLow] != 1 {
		t.Errorf("BySeverity = %v, want high:2 low:1", report.BySeverity)
	}
	if got := report.AgreementRate(); got != 0.25 {
		t.Errorf("AgreementRate() = %v, want 0.25", got)
	}
	if !rows.closed {
		t.Error("severity rows were not closed")
	}
}

func TestPostgresSink_Agreement_QueryError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("relation does not exist")
	db := &mockDB{
		queryRowFunc: func(context.Context, string, ...any) pgx.Row {
			return &mockRow{scanFunc: func(dest ...any) error {
				*dest[0].(*int) = 0
				*dest[1].(*int) = 0
				*dest[2].(*int) = 0
				return nil
			}}
		},
		queryFunc: func(context.Context, string, ...any) (pgx.Rows, error) {
			return nil, wantErr
		},
	}
	_, err := goldlog.NewPostgresSink(db).Agreement(context.Background(), time.Now())
	if !errors.Is(err, wantErr) {
		t.Errorf("Agreement() error = %v, want wrapped %v", err, wantErr)
	}
}
