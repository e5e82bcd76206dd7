// Package pipeline runs a natural-language BI request through the five
// stages: normalize prompt, generate SQL, sanitize, execute, select chart.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/promptboard/promptboard/internal/llm"
	"github.com/promptboard/promptboard/internal/observability"
	"github.com/promptboard/promptboard/internal/schema"
	"github.com/promptboard/promptboard/internal/sqlclean"
	"github.com/promptboard/promptboard/internal/viz"
	"github.com/promptboard/promptboard/internal/warehouse"
)

// ErrStatementNotAllowed rejects generated SQL that is not a read-only
// SELECT/WITH statement before it reaches the database.
var ErrStatementNotAllowed = errors.New("only read-only SELECT/WITH statements are allowed")

// StageError marks which pipeline stage a collaborator failure came from.
// The wrapped error is surfaced verbatim to the user; there is no retry and
// no automatic SQL repair.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// RunResult carries everything a single run produced. Each run is
// independent; nothing here survives past rendering.
type RunResult struct {
	Prompt          string
	OptimizedPrompt string
	SQL             string
	Columns         []string
	Rows            [][]any
	Empty           bool
	// Category is what the keyword heuristic picked; EffectiveCategory is
	// what rendering preconditions allowed. Both are unset for empty results.
	Category          viz.Category
	EffectiveCategory viz.Category
	Duration          time.Duration
}

type Service struct {
	Completer llm.Completer
	Warehouse warehouse.Executor
	Logger    *slog.Logger
}

func NewService(completer llm.Completer, wh warehouse.Executor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{Completer: completer, Warehouse: wh, Logger: logger}
}

func (s *Service) Run(ctx context.Context, prompt string) (RunResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return RunResult{}, fmt.Errorf("prompt is required")
	}
	start := time.Now()
	result := RunResult{Prompt: prompt}

	optimized, err := s.timedComplete(ctx, "optimize", schema.OptimizeInstruction, prompt)
	if err != nil {
		observability.ObservePipelineRun("error")
		return result, &StageError{Stage: "optimize", Err: err}
	}
	result.OptimizedPrompt = optimized
	s.Logger.DebugContext(ctx, "prompt optimized", slog.String("optimized_prompt", optimized))

	rawSQL, err := s.timedComplete(ctx, "generate", schema.Primer(), optimized)
	if err != nil {
		observability.ObservePipelineRun("error")
		return result, &StageError{Stage: "generate", Err: err}
	}

	result.SQL = sqlclean.Sanitize(rawSQL)
	if !isReadOnly(result.SQL) {
		observability.ObservePipelineRun("error")
		return result, &StageError{Stage: "execute", Err: ErrStatementNotAllowed}
	}
	s.Logger.DebugContext(ctx, "sql generated", slog.String("sql", result.SQL))

	execStart := time.Now()
	queryResult, err := s.Warehouse.Execute(ctx, result.SQL)
	observability.ObservePipelineStage("execute", time.Since(execStart))
	if err != nil {
		observability.ObservePipelineRun("error")
		return result, &StageError{Stage: "execute", Err: err}
	}
	result.Columns = queryResult.Columns
	result.Rows = queryResult.Rows
	result.Duration = time.Since(start)

	if queryResult.Empty() {
		result.Empty = true
		observability.ObservePipelineRun("empty")
		s.Logger.InfoContext(ctx, "query returned no results", slog.String("sql", result.SQL))
		return result, nil
	}

	result.Category = viz.Select(prompt, optimized)
	result.EffectiveCategory = viz.Resolve(result.Category, len(result.Columns))
	observability.ObserveChartCategory(string(result.EffectiveCategory), result.EffectiveCategory != result.Category)
	observability.ObservePipelineRun("ok")

	s.Logger.InfoContext(ctx, "pipeline run complete",
		slog.String("category", string(result.Category)),
		slog.String("effective_category", string(result.EffectiveCategory)),
		slog.Int("rows", len(result.Rows)),
		slog.String("duration", result.Duration.String()),
	)
	return result, nil
}

func (s *Service) timedComplete(ctx context.Context, stage, systemMsg, userMsg string) (string, error) {
	start := time.Now()
	text, err := s.Completer.Complete(ctx, systemMsg, userMsg)
	observability.ObservePipelineStage(stage, time.Since(start))
	return text, err
}

func isReadOnly(sqlText string) bool {
	normalized := strings.ToLower(strings.TrimSpace(sqlText))
	if normalized == "" {
		return false
	}
	return strings.HasPrefix(normalized, "select") || strings.HasPrefix(normalized, "with")
}
