// Package schema holds the fixed description of the one queryable table.
// The primer text is immutable for the process lifetime and is supplied as
// system context to the language model; generated SQL is expected (but not
// programmatically enforced) to reference only the columns listed here.
package schema

import (
	"fmt"
	"strings"
)

const TableName = "re_postsales"

// DateCastExpr is the only accepted way to use purchase_date in comparisons
// and ordering; the sanitizer rewrites the generic CAST form into it.
const DateCastExpr = "TO_DATE(purchase_date, 'DD-MM-YYYY')"

type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Note string `json:"note,omitempty"`
}

var columns = []Column{
	{Name: "customer_id", Type: "text", Note: "primary key"},
	{Name: "name", Type: "text"},
	{Name: "email", Type: "text"},
	{Name: "phone", Type: "text"},
	{Name: "property_id", Type: "text"},
	{Name: "region", Type: "text"},
	{Name: "property_type", Type: "text"},
	{Name: "purchase_date", Type: "text", Note: "DD-MM-YYYY, cast to DATE for time analysis"},
	{Name: "maintenance_due", Type: "text"},
	{Name: "payment_status", Type: "text"},
	{Name: "maintenance_requests", Type: "bigint"},
	{Name: "satisfaction_score", Type: "double precision"},
	{Name: "utilities_consumption", Type: "double precision"},
	{Name: "referral_source", Type: "text"},
	{Name: "warranty_claims", Type: "boolean"},
	{Name: "insurance_status", Type: "text"},
}

// Columns returns a copy of the table's column metadata.
func Columns() []Column {
	out := make([]Column, len(columns))
	copy(out, columns)
	return out
}

// Primer returns the system priming text for SQL generation.
func Primer() string {
	var b strings.Builder
	b.WriteString("You are a PostgreSQL expert.\n")
	fmt.Fprintf(&b, "You must only query from table %s.\n", TableName)
	b.WriteString("Here are the columns and their types:\n")
	for _, col := range columns {
		if col.Note != "" {
			fmt.Fprintf(&b, "- %s (%s, %s)\n", col.Name, col.Type, col.Note)
		} else {
			fmt.Fprintf(&b, "- %s (%s)\n", col.Name, col.Type)
		}
	}
	b.WriteString("\nRules:\n")
	b.WriteString("- Use only these columns.\n")
	fmt.Fprintf(&b, "- If dates are required, cast text to DATE using %s.\n", DateCastExpr)
	b.WriteString("- Return ONLY raw SQL with no markdown or explanation.\n")
	return b.String()
}

// OptimizeInstruction is the system message for the prompt-normalization call.
const OptimizeInstruction = "Rewrite the user's BI request into a precise, short analytical task."
