// Package prompt selects a category-specific template by the classifier's
// Kind and binds it with conversation history, SQL results, and retrieved
// context, producing the final chat-model input.
package prompt

import (
	"fmt"
	"strings"
	"time"

	"github.com/nbaqa/hro/internal/types"
	"github.com/nbaqa/hro/internal/utils"
)

// contextBudget bounds the {context} slot so a long retrieval set never
// blows the model's context window; truncation happens at chunk boundaries.
const contextBudget = 8000

// templatesByKind replaces a per-category if-chain with a map lookup.
var templatesByKind = map[types.Kind]string{
	types.KindSQLOnly: "You are an NBA statistics assistant. Answer the question using only " +
		"the SQL query results below. If the results do not answer the question, say so.\n\n" +
		"Current time: {current_time} ({current_weekday})\n\n" +
		"Conversation history:\n{conversation_history}\n\n" +
		"SQL results:\n{sql_results}\n\n" +
		"Question: {question}\nAnswer:",
	types.KindContextual: "You are an NBA analyst. Answer the question using only the context " +
		"passages below, citing each source you use as [Source: <name>]. If the context does not " +
		"contain the answer, say \"" + types.UnavailableAnswer + "\".\n\n" +
		"Current time: {current_time} ({current_weekday})\n\n" +
		"Conversation history:\n{conversation_history}\n\n" +
		"Context:\n{context}\n\n" +
		"Question: {question}\nAnswer:",
	types.KindHybrid: "You are an NBA analyst. Answer the question using both the SQL results " +
		"and the context passages below. Cite context sources as [Source: <name>].\n\n" +
		"Current time: {current_time} ({current_weekday})\n\n" +
		"Conversation history:\n{conversation_history}\n\n" +
		"SQL results:\n{sql_results}\n\n" +
		"Context:\n{context}\n\n" +
		"Question: {question}\nAnswer:",
	types.KindUnknown: "You are an NBA assistant. Answer the question as best you can from the " +
		"conversation history alone; if you cannot, say \"" + types.UnavailableAnswer + "\".\n\n" +
		"Current time: {current_time} ({current_weekday})\n\n" +
		"Conversation history:\n{conversation_history}\n\n" +
		"Question: {question}\nAnswer:",
}

// Slots carries the values bound into a Kind's template.
type Slots struct {
	Question   string
	History    []types.HistoryTurn
	SQLResults string
	Hits       []types.RetrievalHit
}

// Assemble selects the template for kind and substitutes every slot,
// sanitizing the question before placeholder substitution.
func Assemble(kind types.Kind, slots Slots) (string, error) {
	template, ok := templatesByKind[kind]
	if !ok {
		template = templatesByKind[types.KindUnknown]
	}

	safeQuestion, ok := utils.ValidateInput(slots.Question)
	if !ok {
		return "", fmt.Errorf("invalid_input: question contains disallowed content")
	}

	currentTime, currentWeekday := CurrentTimeSlot(time.Now())

	out := template
	out = strings.ReplaceAll(out, "{question}", safeQuestion)
	out = strings.ReplaceAll(out, "{conversation_history}", formatHistory(slots.History))
	out = strings.ReplaceAll(out, "{sql_results}", slots.SQLResults)
	out = strings.ReplaceAll(out, "{context}", formatContext(slots.Hits))
	out = strings.ReplaceAll(out, "{current_time}", currentTime)
	out = strings.ReplaceAll(out, "{current_weekday}", currentWeekday)
	return out, nil
}

func formatHistory(history []types.HistoryTurn) string {
	if len(history) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for _, turn := range history {
		fmt.Fprintf(&b, "Turn %d — Q: %s\nA: %s\n", turn.TurnNumber, turn.Query, turn.Response)
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatContext renders retrieval hits as a numbered, source-cited list,
// truncated to contextBudget characters at chunk boundaries — a whole chunk
// is either fully included or fully dropped, never cut mid-sentence.
func formatContext(hits []types.RetrievalHit) string {
	if len(hits) == 0 {
		return "(no relevant context found)"
	}
	var b strings.Builder
	used := 0
	for i, hit := range hits {
		entry := fmt.Sprintf("[%d] %s [Source: %s]\n", i+1, hit.Chunk.Text, hit.Chunk.Source)
		if used+len(entry) > contextBudget && used > 0 {
			break
		}
		b.WriteString(entry)
		used += len(entry)
	}
	return strings.TrimRight(b.String(), "\n")
}

// CurrentTimeSlot formats the current time for templates that embed a
// "current_time"/"current_weekday" slot.
func CurrentTimeSlot(now time.Time) (string, string) {
	weekdayName := []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	return now.Format("2006-01-02 15:04:05"), weekdayName[now.Weekday()]
}
