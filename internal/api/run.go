package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/promptboard/promptboard/internal/pipeline"
)

type runRequest struct {
	Prompt string `json:"prompt"`
}

type runResponse struct {
	Prompt            string         `json:"prompt"`
	OptimizedPrompt   string         `json:"optimized_prompt"`
	SQL               string         `json:"sql"`
	Columns           []string       `json:"columns"`
	Rows              [][]any        `json:"rows"`
	Empty             bool           `json:"empty"`
	Notice            string         `json:"notice,omitempty"`
	Category          string         `json:"category,omitempty"`
	EffectiveCategory string         `json:"effective_category,omitempty"`
	Stats             map[string]any `json:"stats"`
}

func handleRun(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Pipeline == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "PIPELINE_NOT_CONFIGURED", "pipeline dependencies are not configured", false, nil)
		return
	}

	var request runRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid run request body", false, map[string]any{"details": err.Error()})
		return
	}
	if strings.TrimSpace(request.Prompt) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "PROMPT_REQUIRED", "prompt is required", false, nil)
		return
	}

	result, err := deps.Pipeline.Run(r.Context(), request.Prompt)
	if err != nil {
		handleRunError(deps, w, r, err)
		return
	}

	rows := result.Rows
	truncated := false
	if deps.PreviewRowLimit > 0 && len(rows) > deps.PreviewRowLimit {
		rows = rows[:deps.PreviewRowLimit]
		truncated = true
	}

	response := runResponse{
		Prompt:            result.Prompt,
		OptimizedPrompt:   result.OptimizedPrompt,
		SQL:               result.SQL,
		Columns:           result.Columns,
		Rows:              rows,
		Empty:             result.Empty,
		Category:          string(result.Category),
		EffectiveCategory: string(result.EffectiveCategory),
		Stats: map[string]any{
			"duration_ms": result.Duration.Milliseconds(),
			"row_count":   len(result.Rows),
			"truncated":   truncated,
		},
	}
	if result.Empty {
		response.Notice = "The query returned no data."
	}
	writeJSON(w, http.StatusOK, response)
}

func handleRunError(deps Dependencies, w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, pipeline.ErrStatementNotAllowed) {
		writeError(r.Context(), w, http.StatusBadRequest, "SQL_NOT_ALLOWED", err.Error(), false, nil)
		return
	}
	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) {
		extra := map[string]any{"stage": stageErr.Stage, "details": stageErr.Err.Error()}
		switch stageErr.Stage {
		case "optimize", "generate":
			writeError(r.Context(), w, http.StatusBadGateway, "AI_REQUEST_FAILED", stageErr.Err.Error(), true, extra)
		case "execute":
			writeError(r.Context(), w, http.StatusBadRequest, "QUERY_EXECUTION_FAILED", stageErr.Err.Error(), false, extra)
		default:
			writeError(r.Context(), w, http.StatusInternalServerError, "PIPELINE_ERROR", stageErr.Err.Error(), false, extra)
		}
		return
	}
	if deps.Logger != nil {
		deps.Logger.Error("pipeline run failed", slog.String("error", err.Error()))
	}
	writeError(r.Context(), w, http.StatusBadRequest, "RUN_FAILED", err.Error(), false, nil)
}
