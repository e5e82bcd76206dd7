package api

import (
	"net/http"

	"github.com/promptboard/promptboard/internal/schema"
)

type schemaColumn struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Note string `json:"note,omitempty"`
}

type schemaResponse struct {
	Table   string         `json:"table"`
	Columns []schemaColumn `json:"columns"`
}

func handleSchema(_ Dependencies, w http.ResponseWriter, _ *http.Request) {
	columns := schema.Columns()
	out := make([]schemaColumn, 0, len(columns))
	for _, column := range columns {
		out = append(out, schemaColumn{Name: column.Name, Type: column.Type, Note: column.Note})
	}
	writeJSON(w, http.StatusOK, schemaResponse{Table: schema.TableName, Columns: out})
}
