package sqlgen

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/nbaqa/hro/internal/chatmodel"
)

// forbiddenKeywords fails a candidate statement before it is ever parsed.
var forbiddenKeywords = []string{"INSERT", "UPDATE", "DELETE", "DROP", "ALTER", "ATTACH", "PRAGMA"}

var balancedSniff = regexp.MustCompile(`(?is)^\s*SELECT\b`)

// FewShotExample is one (question, SQL) pair shown to the generator.
type FewShotExample struct {
	Question string
	SQL      string
}

// Generator translates a natural-language question into a candidate SQL
// string via a few-shot prompt against the chat model, with temperature
// fixed at 0 for deterministic output.
type Generator struct {
	model chatmodel.ChatModel
}

// NewGenerator builds a Generator backed by the given chat model.
func NewGenerator(model chatmodel.ChatModel) *Generator {
	return &Generator{model: model}
}

// Generate constructs the directive+schema+few-shot+question prompt and
// returns the model's raw candidate SQL. Syntactic sniffing only; full AST
// validation happens in Validator.
func (g *Generator) Generate(ctx context.Context, query, schemaDescription string, examples []FewShotExample) (string, error) {
	prompt := buildPrompt(query, schemaDescription, examples)

	raw, err := g.model.GenerateChat(ctx, []chatmodel.Message{
		{Role: "system", Content: "You are a PostgreSQL query generator. Output only a single SELECT statement, nothing else."},
		{Role: "user", Content: prompt},
	}, chatmodel.Options{Temperature: 0})
	if err != nil {
		return "", fmt.Errorf("sql generation failed: %w", err)
	}

	candidate := extractSQL(raw)
	if err := syntacticSniff(candidate); err != nil {
		return "", err
	}
	return candidate, nil
}

func buildPrompt(query, schemaDescription string, examples []FewShotExample) string {
	var b strings.Builder
	b.WriteString("Dialect: PostgreSQL. Only SELECT statements are permitted; DDL and DML are forbidden.\n\n")
	b.WriteString("Schema:\n")
	b.WriteString(schemaDescription)
	b.WriteString("\n\nExamples:\n")
	for _, ex := range examples {
		fmt.Fprintf(&b, "Q: %s\nSQL: %s\n\n", ex.Question, ex.SQL)
	}
	fmt.Fprintf(&b, "Q: %s\nSQL:", query)
	return b.String()
}

// extractSQL strips markdown code fences a chat model commonly wraps SQL in.
func extractSQL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "```sql")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}

// syntacticSniff is validation stage 1: token stream begins with SELECT,
// balanced parentheses, no forbidden keywords.
func syntacticSniff(sql string) error {
	if !balancedSniff.MatchString(sql) {
		return fmt.Errorf("sql_syntax_invalid: statement does not begin with SELECT")
	}
	depth := 0
	for _, r := range sql {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return fmt.Errorf("sql_syntax_invalid: unbalanced parentheses")
			}
		}
	}
	if depth != 0 {
		return fmt.Errorf("sql_syntax_invalid: unbalanced parentheses")
	}

	upper := strings.ToUpper(sql)
	for _, kw := range forbiddenKeywords {
		if regexp.MustCompile(`\b` + kw + `\b`).MatchString(upper) {
			return fmt.Errorf("sql_forbidden_statement: forbidden keyword %s", kw)
		}
	}
	if strings.Contains(sql, ";") {
		rest := strings.TrimSpace(sql[strings.Index(sql, ";")+1:])
		if rest != "" {
			return fmt.Errorf("sql_forbidden_statement: multiple statements separated by semicolon")
		}
	}
	return nil
}
