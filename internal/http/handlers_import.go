package http

import (
	"net/http"

	"fintrack/internal/importer"
)

// defaultPreviewLimit caps how many normalized rows a preview returns when the
// client does not ask for a specific count.
const defaultPreviewLimit = 10

type importPreviewRequest struct {
	Headers    []string          `json:"headers"`
	Rows       [][]any           `json:"rows"`
	AccountID  int64             `json:"account_id"`
	Mapping    *importer.Mapping `json:"mapping"`
	DateFormat string            `json:"date_format"`
	Limit      int               `json:"limit"`
}

type importPreviewResponse struct {
	Mapping       importer.Mapping `json:"mapping"`
	MissingFields []string         `json:"missing_fields,omitempty"`
	DateFormats   []string         `json:"date_formats"`
	Rows          []importer.Row   `json:"rows"`
}

// handleImportPreview normalizes a prefix of the uploaded rows with lenient
// parsing. When the client sends no mapping, column detection proposes one;
// the response flags required fields the mapping still misses.
func (s *Server) handleImportPreview(w http.ResponseWriter, r *http.Request) {
	var req importPreviewRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Headers) == 0 {
		badRequest(w, "headers array is required")
		return
	}

	mapping := importer.DetectColumns(req.Headers)
	if req.Mapping != nil {
		mapping = *req.Mapping
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultPreviewLimit
	}

	rows := importer.Preview(req.Headers, req.Rows, mapping, req.DateFormat, req.AccountID, limit)

	respondJSON(w, http.StatusOK, importPreviewResponse{
		Mapping:       mapping,
		MissingFields: mapping.MissingRequired(),
		DateFormats:   importer.DateFormats,
		Rows:          rows,
	})
}
