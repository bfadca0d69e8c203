// Package statstore executes validated, read-only SQL against the NBA
// player/team/game statistics schema and formats results for prompt
// injection.
package statstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
)

// ColumnDescription documents one column for the SQL Generator's schema
// prompt, seeded from the NBA glossary so "TS%" maps to ts_pct.
type ColumnDescription struct {
	Name        string
	Type        string
	Description string
}

// TableDescription documents one table's columns.
type TableDescription struct {
	Name        string
	Columns     []ColumnDescription
	Description string
}

// Store wraps a bounded gorm connection pool and enforces a read-only
// execution contract: statement timeout, row cap, and SELECT-only access.
type Store struct {
	db      *gorm.DB
	rowCap  int
	timeout time.Duration
	schema  []TableDescription
}

// New builds a Store. poolSize bounds the underlying sql.DB connection pool.
func New(db *gorm.DB, poolSize int, rowCap int, timeout time.Duration) (*Store, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("obtain underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(poolSize)
	return &Store{db: db, rowCap: rowCap, timeout: timeout, schema: nbaSchema()}, nil
}

// Describe returns the table list with columns, types and human-readable
// descriptions — used both by the SQL Generator's prompt and the
// semantic-sniff validation stage.
func (s *Store) Describe() []TableDescription {
	return s.schema
}

// SchemaPromptText renders Describe() as the schema-description block the
// generator embeds in its few-shot prompt.
func (s *Store) SchemaPromptText() string {
	var b strings.Builder
	for _, t := range s.schema {
		fmt.Fprintf(&b, "TABLE %s -- %s\n", t.Name, t.Description)
		for _, c := range t.Columns {
			fmt.Fprintf(&b, "  %s %s -- %s\n", c.Name, c.Type, c.Description)
		}
	}
	return b.String()
}

// KnownIdentifier reports whether name (case-insensitive) is a table or
// column in the schema, used for the semantic-sniff validation stage.
func (s *Store) KnownIdentifier(name string) bool {
	lower := strings.ToLower(name)
	for _, t := range s.schema {
		if strings.ToLower(t.Name) == lower {
			return true
		}
		for _, c := range t.Columns {
			if strings.ToLower(c.Name) == lower {
				return true
			}
		}
	}
	return false
}

// Result is the raw outcome of Execute, before formatting.
type Result struct {
	Rows      []map[string]any
	Truncated bool
	Duration  time.Duration
}

// Execute runs sql (already validated and normalized) with the store's
// timeout and row cap. Independently of sqlgen.Validator, Execute rejects
// text whose first token is not SELECT and text with a semicolon followed
// by further tokens, and it enforces the row cap itself.
func (s *Store) Execute(ctx context.Context, sql string) (*Result, error) {
	trimmed := strings.TrimSpace(sql)
	if !strings.HasPrefix(strings.ToUpper(trimmed), "SELECT") {
		return nil, fmt.Errorf("sql_forbidden_statement: statement does not begin with SELECT")
	}
	if i := strings.Index(trimmed, ";"); i >= 0 && strings.TrimSpace(trimmed[i+1:]) != "" {
		return nil, fmt.Errorf("sql_forbidden_statement: multiple statements are not allowed")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	rows, err := s.db.WithContext(ctx).Raw(sql).Rows()
	if err != nil {
		return nil, fmt.Errorf("sql_execution_error: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("sql_execution_error: %w", err)
	}

	results := make([]map[string]any, 0)
	truncated := false
	for rows.Next() {
		if len(results) >= s.rowCap {
			truncated = true
			break
		}
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("sql_execution_error: %w", err)
		}
		rowMap := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				rowMap[col] = string(b)
			} else {
				rowMap[col] = values[i]
			}
		}
		results = append(results, rowMap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sql_execution_error: %w", err)
	}

	return &Result{Rows: results, Truncated: truncated, Duration: time.Since(start)}, nil
}

// Format renders a Result for prompt inclusion: a single row/single column
// result becomes "<AGG> Result: <value>"; anything else becomes a numbered
// list bounded to 20 rows with a trailing summary of omitted rows.
func Format(result *Result) string {
	if len(result.Rows) == 0 {
		return "No rows returned."
	}
	if len(result.Rows) == 1 && len(result.Rows[0]) == 1 {
		for col, val := range result.Rows[0] {
			return fmt.Sprintf("%s Result: %v", aggLabel(col), val)
		}
	}

	const maxListed = 20
	var b strings.Builder
	listed := result.Rows
	omitted := 0
	if len(listed) > maxListed {
		omitted = len(listed) - maxListed
		listed = listed[:maxListed]
	}
	for i, row := range listed {
		fmt.Fprintf(&b, "%d. %s\n", i+1, formatRow(row))
	}
	if omitted > 0 {
		fmt.Fprintf(&b, "... (%d more rows omitted)\n", omitted)
	}
	return strings.TrimRight(b.String(), "\n")
}

// IsEmptyButValid reports whether a zero-row result should be treated as
// "empty-but-valid" rather than an error: the query executed cleanly but
// the statistical question simply has no match.
func IsEmptyButValid(result *Result, classificationConfident bool) bool {
	return len(result.Rows) == 0 && classificationConfident
}

func aggLabel(column string) string {
	lower := strings.ToLower(column)
	switch {
	case strings.Contains(lower, "count"):
		return "COUNT"
	case strings.Contains(lower, "avg") || strings.Contains(lower, "average"):
		return "AVERAGE"
	case strings.Contains(lower, "sum"):
		return "SUM"
	case strings.Contains(lower, "max"):
		return "MAX"
	case strings.Contains(lower, "min"):
		return "MIN"
	default:
		return "Result"
	}
}

func formatRow(row map[string]any) string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, row[k]))
	}
	return strings.Join(parts, ", ")
}

func nbaSchema() []TableDescription {
	return []TableDescription{
		{
			Name:        "players",
			Description: "one row per NBA player",
			Columns: []ColumnDescription{
				{"id", "INTEGER", "player id"},
				{"name", "TEXT", "player full name"},
				{"team_id", "INTEGER", "current team, references teams.id"},
				{"position", "TEXT", "primary position"},
			},
		},
		{
			Name:        "player_stats",
			Description: "one row per player per season",
			Columns: []ColumnDescription{
				{"player_id", "INTEGER", "references players.id"},
				{"season", "TEXT", "season label, e.g. 2023-24"},
				{"pts", "NUMERIC", "points per game"},
				{"reb", "NUMERIC", "rebounds per game"},
				{"ast", "NUMERIC", "assists per game"},
				{"stl", "NUMERIC", "steals per game"},
				{"blk", "NUMERIC", "blocks per game"},
				{"tov", "NUMERIC", "turnovers per game"},
				{"fg_pct", "NUMERIC", "field goal percentage, fraction in [0,1]"},
				{"ts_pct", "NUMERIC", "true shooting percentage (TS%), fraction in [0,1]"},
				{"games_played", "INTEGER", "games played"},
			},
		},
		{
			Name:        "teams",
			Description: "one row per NBA franchise",
			Columns: []ColumnDescription{
				{"id", "INTEGER", "team id"},
				{"name", "TEXT", "team name"},
				{"conference", "TEXT", "Eastern or Western"},
			},
		},
		{
			Name:        "team_stats",
			Description: "one row per team per season",
			Columns: []ColumnDescription{
				{"team_id", "INTEGER", "references teams.id"},
				{"season", "TEXT", "season label"},
				{"wins", "INTEGER", "regular season wins"},
				{"losses", "INTEGER", "regular season losses"},
				{"pts_per_game", "NUMERIC", "average points scored per game"},
			},
		},
		{
			Name:        "games",
			Description: "one row per played game",
			Columns: []ColumnDescription{
				{"id", "INTEGER", "game id"},
				{"home_team_id", "INTEGER", "references teams.id"},
				{"away_team_id", "INTEGER", "references teams.id"},
				{"played_at", "TIMESTAMP", "tip-off time"},
				{"home_score", "INTEGER", "final home score"},
				{"away_score", "INTEGER", "final away score"},
			},
		},
	}
}
