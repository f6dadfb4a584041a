package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/mtavares/receiptwise/internal/domain/receipts"
)

// maxBodySize caps raw OCR payloads at 1MB; receipts are short texts.
const maxBodySize = 1 << 20

// parseRequest is the JSON body for parse and ingest endpoints.
type parseRequest struct {
	RawText string `json:"raw_text"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// readRawText accepts either a JSON body with raw_text or a plain text
// body, so OCR pipelines can POST output directly.
func readRawText(r *http.Request) (string, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}

	if r.Header.Get("Content-Type") == "text/plain" {
		return string(body), nil
	}

	var req parseRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return "", fmt.Errorf("invalid JSON body: %w", err)
	}
	return req.RawText, nil
}

// handleParse structures raw OCR text without storing it.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	rawText, err := readRawText(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	receipt := s.service.Parse(r.Context(), rawText)
	writeJSON(w, http.StatusOK, receipt)
}

// handleIngest structures raw OCR text and stores the result.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	rawText, err := readRawText(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sr, err := s.service.Ingest(r.Context(), rawText)
	if err != nil {
		s.logger.Error("failed to ingest receipt", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to store receipt")
		return
	}
	writeJSON(w, http.StatusCreated, sr)
}

// listResponse wraps paginated receipt listings.
type listResponse struct {
	Receipts []*receipts.StoredReceipt `json:"receipts"`
	Total    int                       `json:"total"`
	Limit    int                       `json:"limit"`
	Offset   int                       `json:"offset"`
}

func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	stored, total, err := s.service.List(r.Context(), limit, offset)
	if err != nil {
		s.logger.Error("failed to list receipts", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to list receipts")
		return
	}
	if stored == nil {
		stored = []*receipts.StoredReceipt{}
	}
	writeJSON(w, http.StatusOK, listResponse{Receipts: stored, Total: total, Limit: limit, Offset: offset})
}

func (s *Server) handleGetReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	sr, err := s.service.Get(r.Context(), id)
	if errors.Is(err, receipts.ErrNotFound) {
		writeError(w, http.StatusNotFound, "receipt not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to get receipt", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to get receipt")
		return
	}
	writeJSON(w, http.StatusOK, sr)
}

func (s *Server) handleDeleteReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	err := s.service.Delete(r.Context(), id)
	if errors.Is(err, receipts.ErrNotFound) {
		writeError(w, http.StatusNotFound, "receipt not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to delete receipt", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to delete receipt")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}

	results, err := s.service.Search(r.Context(), query, queryInt(r, "limit", 10))
	if err != nil {
		s.logger.Error("search failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	if results == nil {
		results = []receipts.SearchResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.service.Summary(r.Context())
	if err != nil {
		s.logger.Error("failed to summarize receipts", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to summarize receipts")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleSpeakable(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	text, err := s.service.Speakable(r.Context(), id)
	if errors.Is(err, receipts.ErrNotFound) {
		writeError(w, http.StatusNotFound, "receipt not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to render receipt", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to render receipt")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	stored, _, err := s.service.List(r.Context(), queryInt(r, "limit", 1000), 0)
	if err != nil {
		s.logger.Error("failed to load receipts for export", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to export receipts")
		return
	}

	stamp := time.Now().UTC().Format("2006-01-02")
	switch format := r.URL.Query().Get("format"); format {
	case "", "csv":
		out, err := receipts.ExportCSV(stored)
		if err != nil {
			s.logger.Error("csv export failed", slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, "failed to export receipts")
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="receipts-%s.csv"`, stamp))
		_, _ = w.Write(out)
	case "xlsx":
		out, err := receipts.ExportXLSX(stored)
		if err != nil {
			s.logger.Error("xlsx export failed", slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, "failed to export receipts")
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="receipts-%s.xlsx"`, stamp))
		_, _ = w.Write(out)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported format %q", format))
	}
}

func (s *Server) handleSuggestMerchants(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}

	suggestions := s.merchants.Suggest(query, queryInt(r, "limit", 5))
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid receipt id")
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
