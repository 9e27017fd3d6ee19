package source

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/models"
)

// DefaultView is the precomputed view holding one row per result.
const DefaultView = "leaderboard_results"

var viewNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// requiredKeys are never nulled out when empty; the schema reports them.
var requiredKeys = map[string]bool{
	"id":            true,
	"modelName":     true,
	"agentName":     true,
	"benchmarkName": true,
	"accuracy":      true,
	"standardError": true,
}

// SQLSource reads every row of the leaderboard view.
type SQLSource struct {
	db     *sql.DB
	driver string
	view   string
}

// OpenSQL opens a database handle for driver ("sqlite" or "mysql").
func OpenSQL(driver, dsn, view string) (*SQLSource, error) {
	if view == "" {
		view = DefaultView
	}
	if !viewNamePattern.MatchString(view) {
		return nil, fmt.Errorf("invalid view name %q", view)
	}
	switch driver {
	case "sqlite", "mysql":
	default:
		return nil, fmt.Errorf("unsupported SQL driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", driver, err)
	}
	return &SQLSource{db: db, driver: driver, view: view}, nil
}

// NewSQLSource wraps an existing handle.
func NewSQLSource(db *sql.DB, view string) *SQLSource {
	if view == "" {
		view = DefaultView
	}
	return &SQLSource{db: db, view: view}
}

func (s *SQLSource) Fetch(ctx context.Context) ([]models.EvaluationResult, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+s.view)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", s.view, err)
	}
	defer rows.Close() //nolint:errcheck

	cols, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("reading columns of %s: %w", s.view, err)
	}
	keys := make([]string, len(cols))
	numeric := make([]bool, len(cols))
	for i, c := range cols {
		keys[i] = camelCase(c.Name())
		numeric[i] = isNumericType(c.DatabaseTypeName())
	}

	var records []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", s.view, err)
		}

		rec := make(map[string]any, len(cols))
		for i, v := range values {
			rec[keys[i]] = normalizeValue(keys[i], v, numeric[i])
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", s.view, err)
	}

	return DecodeRecords(records)
}

func (s *SQLSource) Close() error {
	return s.db.Close()
}

func (s *SQLSource) String() string { return s.driver + ":" + s.view }

// camelCase maps a snake_case column name to its record key.
func camelCase(name string) string {
	parts := strings.Split(strings.ToLower(name), "_")
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

func isNumericType(dbType string) bool {
	switch strings.ToUpper(dbType) {
	case "DECIMAL", "NUMERIC", "FLOAT", "DOUBLE", "REAL",
		"INT", "INTEGER", "BIGINT", "SMALLINT", "TINYINT", "MEDIUMINT":
		return true
	}
	return false
}

// normalizeValue turns a driver value into its JSON-compatible form.
func normalizeValue(key string, v any, numeric bool) any {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		return normalizeValue(key, string(val), numeric)
	case string:
		if val == "" && !requiredKeys[key] {
			return nil
		}
		if numeric {
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				return f
			}
		}
		return val
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	case int64:
		return float64(val)
	case float32:
		return float64(val)
	}
	return v
}
