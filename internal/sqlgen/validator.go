// Package sqlgen translates a natural-language question into guarded SQL
// against the NBA statistics schema, and validates any candidate statement
// before it reaches the Statistics Store.
package sqlgen

import (
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// Validator enforces read-only, single-statement, schema-whitelisted SELECT
// statements, adapted from a multi-tenant mutation-guard into a single-
// tenant, SELECT-only guard: no tenant condition injection, no DML branch.
type Validator struct {
	allowedTables    map[string]bool
	allowedFunctions map[string]bool

	// schema is set for the duration of one ValidateAndNormalize call and
	// consulted by validateColumnRef for the semantic-sniff stage.
	schema SchemaChecker
}

// NewValidator builds a Validator scoped to the NBA statistics schema.
func NewValidator() *Validator {
	return &Validator{
		allowedTables: map[string]bool{
			"players":      true,
			"player_stats": true,
			"teams":        true,
			"team_stats":   true,
			"games":        true,
		},
		allowedFunctions: map[string]bool{
			"count": true, "sum": true, "avg": true, "min": true, "max": true,
			"coalesce": true, "nullif": true, "greatest": true, "least": true,
			"abs": true, "round": true, "length": true, "lower": true, "upper": true,
			"trim": true, "concat": true, "now": true, "current_date": true,
			"date_trunc": true, "extract": true,
		},
	}
}

// SchemaChecker is satisfied by statstore.Store and reports whether a table
// or column name belongs to the schema, for the semantic-sniff stage.
type SchemaChecker interface {
	KnownIdentifier(name string) bool
}

// ValidateAndNormalize runs the full validation pipeline and returns the
// normalized SQL text on success. Failure at any stage returns a typed error
// that the orchestrator treats as "SQL path failed"; it never injects any
// implicit condition into the query.
//
// schema may be nil to skip the semantic-sniff stage (stage 2); the
// allowed-table/allowed-function whitelists in validateFromItem and
// validateFuncCall already reject unknown tables and functions, so schema
// is only needed to additionally reject unknown bare column references.
func (v *Validator) ValidateAndNormalize(sql string, schema SchemaChecker) (string, error) {
	v.schema = schema
	defer func() { v.schema = nil }()

	if err := v.validateInput(sql); err != nil {
		return "", err
	}

	result, err := pg_query.Parse(sql)
	if err != nil {
		return "", fmt.Errorf("sql parse error: %w", err)
	}

	if len(result.Stmts) == 0 {
		return "", fmt.Errorf("empty query")
	}
	if len(result.Stmts) > 1 {
		return "", fmt.Errorf("multiple statements are not allowed")
	}

	stmt := result.Stmts[0].Stmt
	selectStmt := stmt.GetSelectStmt()
	if selectStmt == nil {
		return "", fmt.Errorf("only SELECT queries are allowed")
	}

	if err := v.validateSelectStmt(selectStmt); err != nil {
		return "", err
	}

	normalized, err := pg_query.Deparse(result)
	if err != nil {
		return "", fmt.Errorf("failed to normalize sql: %w", err)
	}

	return normalized, nil
}

func (v *Validator) validateInput(sql string) error {
	if strings.Contains(sql, "\x00") {
		return fmt.Errorf("invalid character in sql query")
	}
	if len(sql) < 6 {
		return fmt.Errorf("sql query too short")
	}
	if len(sql) > 4096 {
		return fmt.Errorf("sql query too long (max 4096 characters)")
	}
	return nil
}

func (v *Validator) validateSelectStmt(stmt *pg_query.SelectStmt) error {
	tables := make(map[string]bool)

	if stmt.Op != pg_query.SetOperation_SETOP_NONE {
		return fmt.Errorf("compound queries (UNION/INTERSECT/EXCEPT) are not allowed")
	}
	if stmt.WithClause != nil {
		return fmt.Errorf("WITH clause (CTEs) is not allowed")
	}
	if stmt.IntoClause != nil {
		return fmt.Errorf("SELECT INTO is not allowed")
	}
	if len(stmt.LockingClause) > 0 {
		return fmt.Errorf("locking clauses are not allowed")
	}

	for _, fromItem := range stmt.FromClause {
		if err := v.validateFromItem(fromItem, tables); err != nil {
			return err
		}
	}
	for _, target := range stmt.TargetList {
		if err := v.validateNode(target); err != nil {
			return err
		}
	}
	if stmt.WhereClause != nil {
		if err := v.validateNode(stmt.WhereClause); err != nil {
			return err
		}
	}
	for _, groupBy := range stmt.GroupClause {
		if err := v.validateNode(groupBy); err != nil {
			return err
		}
	}
	if stmt.HavingClause != nil {
		if err := v.validateNode(stmt.HavingClause); err != nil {
			return err
		}
	}
	for _, sortBy := range stmt.SortClause {
		if err := v.validateNode(sortBy); err != nil {
			return err
		}
	}

	if len(tables) == 0 {
		return fmt.Errorf("no valid table found in query")
	}
	return nil
}

func (v *Validator) validateFromItem(node *pg_query.Node, tables map[string]bool) error {
	if node == nil {
		return nil
	}

	if rv := node.GetRangeVar(); rv != nil {
		tableName := strings.ToLower(rv.Relname)
		if rv.Schemaname != "" && strings.ToLower(rv.Schemaname) != "public" {
			return fmt.Errorf("access to schema '%s' is not allowed", rv.Schemaname)
		}
		if !v.allowedTables[tableName] {
			return fmt.Errorf("table not allowed: %s", rv.Relname)
		}
		tables[tableName] = true
		return nil
	}

	if je := node.GetJoinExpr(); je != nil {
		if err := v.validateFromItem(je.Larg, tables); err != nil {
			return err
		}
		if err := v.validateFromItem(je.Rarg, tables); err != nil {
			return err
		}
		if je.Quals != nil {
			return v.validateNode(je.Quals)
		}
		return nil
	}

	if node.GetRangeSubselect() != nil {
		return fmt.Errorf("subqueries in FROM clause are not allowed")
	}
	if node.GetRangeFunction() != nil {
		return fmt.Errorf("functions in FROM clause are not allowed")
	}
	return nil
}

func (v *Validator) validateNode(node *pg_query.Node) error {
	if node == nil {
		return nil
	}
	if node.GetSubLink() != nil {
		return fmt.Errorf("subqueries are not allowed")
	}
	if fc := node.GetFuncCall(); fc != nil {
		return v.validateFuncCall(fc)
	}
	if cr := node.GetColumnRef(); cr != nil {
		return v.validateColumnRef(cr)
	}
	if tc := node.GetTypeCast(); tc != nil {
		if err := v.validateNode(tc.Arg); err != nil {
			return err
		}
	}
	if ae := node.GetAExpr(); ae != nil {
		if err := v.validateNode(ae.Lexpr); err != nil {
			return err
		}
		if err := v.validateNode(ae.Rexpr); err != nil {
			return err
		}
	}
	if be := node.GetBoolExpr(); be != nil {
		for _, arg := range be.Args {
			if err := v.validateNode(arg); err != nil {
				return err
			}
		}
	}
	if nt := node.GetNullTest(); nt != nil {
		if err := v.validateNode(nt.Arg); err != nil {
			return err
		}
	}
	if ce := node.GetCoalesceExpr(); ce != nil {
		for _, arg := range ce.Args {
			if err := v.validateNode(arg); err != nil {
				return err
			}
		}
	}
	if caseExpr := node.GetCaseExpr(); caseExpr != nil {
		if err := v.validateNode(caseExpr.Arg); err != nil {
			return err
		}
		for _, when := range caseExpr.Args {
			if err := v.validateNode(when); err != nil {
				return err
			}
		}
		if err := v.validateNode(caseExpr.Defresult); err != nil {
			return err
		}
	}
	if cw := node.GetCaseWhen(); cw != nil {
		if err := v.validateNode(cw.Expr); err != nil {
			return err
		}
		if err := v.validateNode(cw.Result); err != nil {
			return err
		}
	}
	if rt := node.GetResTarget(); rt != nil {
		if err := v.validateNode(rt.Val); err != nil {
			return err
		}
	}
	if sb := node.GetSortBy(); sb != nil {
		if err := v.validateNode(sb.Node); err != nil {
			return err
		}
	}
	if list := node.GetList(); list != nil {
		for _, item := range list.Items {
			if err := v.validateNode(item); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *Validator) validateFuncCall(fc *pg_query.FuncCall) error {
	funcName := ""
	for _, namePart := range fc.Funcname {
		if s := namePart.GetString_(); s != nil {
			funcName = strings.ToLower(s.Sval)
		}
	}

	if len(fc.Funcname) > 1 {
		schemaName := ""
		if s := fc.Funcname[0].GetString_(); s != nil {
			schemaName = strings.ToLower(s.Sval)
		}
		if schemaName != "" && schemaName != "pg_catalog" {
			return fmt.Errorf("schema-qualified function calls are not allowed: %s", schemaName)
		}
	}

	for _, prefix := range []string{"pg_", "lo_", "dblink", "file_", "copy_"} {
		if strings.HasPrefix(funcName, prefix) {
			return fmt.Errorf("function '%s' is not allowed (dangerous prefix)", funcName)
		}
	}

	if !v.allowedFunctions[funcName] {
		return fmt.Errorf("function not allowed: %s", funcName)
	}

	for _, arg := range fc.Args {
		if err := v.validateNode(arg); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) validateColumnRef(cr *pg_query.ColumnRef) error {
	systemColumns := map[string]bool{"xmin": true, "xmax": true, "cmin": true, "cmax": true, "ctid": true, "tableoid": true}
	lastIdx := len(cr.Fields) - 1
	for i, field := range cr.Fields {
		if field.GetAStar() != nil {
			continue
		}
		if s := field.GetString_(); s != nil {
			colName := strings.ToLower(s.Sval)
			if systemColumns[colName] {
				return fmt.Errorf("access to system column '%s' is not allowed", colName)
			}
			if strings.HasPrefix(colName, "pg_") {
				return fmt.Errorf("access to '%s' is not allowed", colName)
			}
			// Only the final field is the bare column name; earlier fields
			// are a table alias or relation name, which the schema does not
			// track and the from-item/alias resolution already validated.
			if i == lastIdx && v.schema != nil && !v.schema.KnownIdentifier(colName) {
				return fmt.Errorf("sql_syntax_invalid: unknown identifier '%s' is not part of the schema", colName)
			}
		}
	}
	return nil
}
