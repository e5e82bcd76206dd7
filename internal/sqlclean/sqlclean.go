// Package sqlclean normalizes model-generated SQL text before execution.
package sqlclean

import (
	"strings"

	"github.com/promptboard/promptboard/internal/schema"
)

// genericDateCast is the CAST form some models emit despite the primer asking
// for the dialect-specific TO_DATE form. It is replaced as a literal string;
// nothing here parses SQL. Anything beyond this exact pattern passes through
// untouched and is only caught when the statement is executed.
const genericDateCast = "CAST(purchase_date AS DATE)"

// Sanitize strips a leading markdown code fence (with an optional "sql"
// language tag) and rewrites the generic purchase_date cast into the
// dialect-specific form. It is pure and idempotent for fence-free input.
func Sanitize(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		parts := strings.Split(text, "```")
		if len(parts) >= 2 {
			text = parts[1]
		}
		text = strings.TrimPrefix(text, "sql\r\n")
		text = strings.TrimPrefix(text, "sql\n")
		text = strings.TrimSpace(text)
	}
	text = strings.ReplaceAll(text, genericDateCast, schema.DateCastExpr)
	return strings.TrimSpace(text)
}
