package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/promptboard/promptboard/internal/viz"
	"github.com/promptboard/promptboard/internal/warehouse"
)

type fakeCompleter struct {
	responses []string
	errs      []error
	calls     []completeCall
}

type completeCall struct {
	system string
	user   string
}

func (f *fakeCompleter) Complete(_ context.Context, systemMsg, userMsg string) (string, error) {
	index := len(f.calls)
	f.calls = append(f.calls, completeCall{system: systemMsg, user: userMsg})
	if index < len(f.errs) && f.errs[index] != nil {
		return "", f.errs[index]
	}
	if index < len(f.responses) {
		return f.responses[index], nil
	}
	return "", errors.New("unexpected completion call")
}

type fakeWarehouse struct {
	result warehouse.Result
	err    error
	sql    string
}

func (f *fakeWarehouse) Execute(_ context.Context, sqlText string) (warehouse.Result, error) {
	f.sql = sqlText
	if f.err != nil {
		return warehouse.Result{}, f.err
	}
	return f.result, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestRunBarScenario(t *testing.T) {
	completer := &fakeCompleter{responses: []string{
		"Count customers per payment status.",
		"```sql\nSELECT payment_status, COUNT(*) AS customer_count FROM re_postsales GROUP BY payment_status\n```",
	}}
	wh := &fakeWarehouse{result: warehouse.Result{
		Columns: []string{"payment_status", "customer_count"},
		Rows:    [][]any{{"paid", int64(12)}, {"overdue", int64(3)}},
	}}

	svc := NewService(completer, wh, testLogger())
	result, err := svc.Run(context.Background(), "Show customer count by payment status")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.OptimizedPrompt != "Count customers per payment status." {
		t.Fatalf("OptimizedPrompt = %q", result.OptimizedPrompt)
	}
	if result.SQL != "SELECT payment_status, COUNT(*) AS customer_count FROM re_postsales GROUP BY payment_status" {
		t.Fatalf("SQL = %q", result.SQL)
	}
	if wh.sql != result.SQL {
		t.Fatalf("executed sql = %q", wh.sql)
	}
	if result.Category != viz.Bar || result.EffectiveCategory != viz.Bar {
		t.Fatalf("Category = %q, EffectiveCategory = %q", result.Category, result.EffectiveCategory)
	}
	if result.Empty {
		t.Fatal("Empty = true for a populated result")
	}

	// The second completion must be primed with the schema, not the
	// optimization instruction.
	if len(completer.calls) != 2 {
		t.Fatalf("completion calls = %d", len(completer.calls))
	}
	if completer.calls[1].user != result.OptimizedPrompt {
		t.Fatalf("generate call user = %q", completer.calls[1].user)
	}
}

func TestRunEmptyResultIsNotAnError(t *testing.T) {
	completer := &fakeCompleter{responses: []string{
		"Distribution of satisfaction scores.",
		"SELECT satisfaction_score FROM re_postsales",
	}}
	wh := &fakeWarehouse{result: warehouse.Result{Columns: []string{"satisfaction_score"}}}

	svc := NewService(completer, wh, testLogger())
	result, err := svc.Run(context.Background(), "Show distribution of satisfaction scores")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.Empty {
		t.Fatal("Empty = false for zero rows")
	}
	if result.Category != "" || result.EffectiveCategory != "" {
		t.Fatalf("no chart should be selected for empty results, got %q/%q", result.Category, result.EffectiveCategory)
	}
}

func TestRunDateCastIsPatchedBeforeExecution(t *testing.T) {
	completer := &fakeCompleter{responses: []string{
		"Purchases per year.",
		"SELECT CAST(purchase_date AS DATE) AS d FROM re_postsales",
	}}
	wh := &fakeWarehouse{result: warehouse.Result{Columns: []string{"d"}, Rows: [][]any{{"01-02-2024"}}}}

	svc := NewService(completer, wh, testLogger())
	if _, err := svc.Run(context.Background(), "purchases over the years"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if wh.sql != "SELECT TO_DATE(purchase_date, 'DD-MM-YYYY') AS d FROM re_postsales" {
		t.Fatalf("executed sql = %q", wh.sql)
	}
}

func TestRunOptimizeFailureAborts(t *testing.T) {
	completer := &fakeCompleter{errs: []error{errors.New("model unavailable")}}
	svc := NewService(completer, &fakeWarehouse{}, testLogger())

	_, err := svc.Run(context.Background(), "anything")
	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("err = %v, want StageError", err)
	}
	if stageErr.Stage != "optimize" {
		t.Fatalf("Stage = %q", stageErr.Stage)
	}
}

func TestRunExecutionFailureSurfacesError(t *testing.T) {
	completer := &fakeCompleter{responses: []string{
		"task",
		"SELECT nope FROM re_postsales",
	}}
	wh := &fakeWarehouse{err: errors.New(`column "nope" does not exist`)}

	svc := NewService(completer, wh, testLogger())
	_, err := svc.Run(context.Background(), "anything")
	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("err = %v, want StageError", err)
	}
	if stageErr.Stage != "execute" {
		t.Fatalf("Stage = %q", stageErr.Stage)
	}
	if !errors.Is(err, wh.err) {
		t.Fatalf("expected the raw database error to be wrapped, got %v", err)
	}
}

func TestRunRejectsNonReadOnlySQL(t *testing.T) {
	completer := &fakeCompleter{responses: []string{
		"task",
		"DROP TABLE re_postsales",
	}}
	wh := &fakeWarehouse{}

	svc := NewService(completer, wh, testLogger())
	_, err := svc.Run(context.Background(), "drop everything")
	if !errors.Is(err, ErrStatementNotAllowed) {
		t.Fatalf("err = %v, want ErrStatementNotAllowed", err)
	}
	if wh.sql != "" {
		t.Fatalf("statement reached the warehouse: %q", wh.sql)
	}
}

func TestRunAllowsCTE(t *testing.T) {
	completer := &fakeCompleter{responses: []string{
		"task",
		"WITH t AS (SELECT region FROM re_postsales) SELECT region, COUNT(*) FROM t GROUP BY region",
	}}
	wh := &fakeWarehouse{result: warehouse.Result{
		Columns: []string{"region", "count"},
		Rows:    [][]any{{"north", int64(4)}},
	}}

	svc := NewService(completer, wh, testLogger())
	if _, err := svc.Run(context.Background(), "compare regions"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestRunPreconditionFallback(t *testing.T) {
	// "count" selects bar, but a single-column result cannot render one.
	completer := &fakeCompleter{responses: []string{
		"task",
		"SELECT COUNT(*) FROM re_postsales",
	}}
	wh := &fakeWarehouse{result: warehouse.Result{
		Columns: []string{"count"},
		Rows:    [][]any{{int64(42)}},
	}}

	svc := NewService(completer, wh, testLogger())
	result, err := svc.Run(context.Background(), "count all customers")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Category != viz.Bar {
		t.Fatalf("Category = %q", result.Category)
	}
	if result.EffectiveCategory != viz.Table {
		t.Fatalf("EffectiveCategory = %q", result.EffectiveCategory)
	}
}

func TestRunPieAndScatterWithTwoColumns(t *testing.T) {
	rows := warehouse.Result{
		Columns: []string{"payment_status", "share"},
		Rows:    [][]any{{"paid", 0.8}, {"overdue", 0.2}},
	}

	for prompt, want := range map[string]viz.Category{
		"share of customers by payment status":            viz.Pie,
		"plot satisfaction against utilities consumption": viz.Scatter,
		"show percentage distribution of payment status":  viz.Pie,
	} {
		completer := &fakeCompleter{responses: []string{"task", "SELECT payment_status, share FROM re_postsales"}}
		svc := NewService(completer, &fakeWarehouse{result: rows}, testLogger())
		result, err := svc.Run(context.Background(), prompt)
		if err != nil {
			t.Fatalf("Run(%q) error = %v", prompt, err)
		}
		if result.EffectiveCategory != want {
			t.Fatalf("Run(%q) EffectiveCategory = %q, want %q", prompt, result.EffectiveCategory, want)
		}
	}
}

func TestRunRequiresPrompt(t *testing.T) {
	svc := NewService(&fakeCompleter{}, &fakeWarehouse{}, testLogger())
	if _, err := svc.Run(context.Background(), "   "); err == nil {
		t.Fatal("expected error for blank prompt")
	}
}
