package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"findash/internal/apperr"
	"findash/internal/models"
	"findash/internal/service"
)

const maxUploadBytes = 16 << 20 // 16 MiB per CSV upload

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	start, err := parseDate(r.URL.Query().Get("start_date"))
	if err != nil {
		s.respondError(w, &apperr.ValidationError{Field: "start_date", Reason: "expected YYYY-MM-DD"})
		return
	}
	end, err := parseDate(r.URL.Query().Get("end_date"))
	if err != nil {
		s.respondError(w, &apperr.ValidationError{Field: "end_date", Reason: "expected YYYY-MM-DD"})
		return
	}
	accountID, err := optionalID(r.URL.Query().Get("account_id"))
	if err != nil {
		s.respondError(w, &apperr.ValidationError{Field: "account_id", Reason: "expected an integer"})
		return
	}

	txs, err := s.svc.ListTransactions(r.Context(), start, end, accountID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, txs)
}

func (s *Server) handleSetCategory(w http.ResponseWriter, r *http.Request) {
	txID, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, err)
		return
	}

	var body struct {
		CategoryID int64 `json:"category_id"`
	}
	if err := decodeJSON(r, &body); err != nil {
		s.respondError(w, err)
		return
	}

	updated, err := s.svc.SetTransactionCategory(r.Context(), txID, body.CategoryID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, updated)
}

func (s *Server) handleRecategorize(w http.ResponseWriter, r *http.Request) {
	txID, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, err)
		return
	}

	var body struct {
		CategoryID  int64            `json:"category_id"`
		NewCategory *models.Category `json:"new_category"`
		CreateRule  bool             `json:"create_rule"`
	}
	if err := decodeJSON(r, &body); err != nil {
		s.respondError(w, err)
		return
	}
	if body.NewCategory == nil && body.CategoryID == 0 {
		s.respondError(w, &apperr.ValidationError{
			Field: "category_id", Reason: "either category_id or new_category is required"})
		return
	}

	result, err := s.svc.Recategorize(r.Context(), service.RecategorizeRequest{
		TransactionID: txID,
		CategoryID:    body.CategoryID,
		NewCategory:   body.NewCategory,
		CreateRule:    body.CreateRule,
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, result)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.svc.ListCategories(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, categories)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name           string `json:"name"`
		ParentCategory string `json:"parent_category"`
		SubCategory    string `json:"sub_category"`
	}
	if err := decodeJSON(r, &body); err != nil {
		s.respondError(w, err)
		return
	}

	category, err := s.svc.CreateCategory(r.Context(), body.Name, body.ParentCategory, body.SubCategory)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusCreated, category)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.svc.ListAccounts(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, accounts)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, &apperr.ValidationError{Field: "file", Reason: "invalid multipart payload"})
		return
	}

	accountID, err := strconv.ParseInt(r.FormValue("account_id"), 10, 64)
	if err != nil {
		s.respondError(w, &apperr.ValidationError{Field: "account_id", Reason: "expected an integer"})
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, &apperr.ValidationError{Field: "file", Reason: "missing file part"})
		return
	}
	defer file.Close()

	stats, err := s.svc.ImportCSV(r.Context(), file, accountID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, stats)
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	ruleSet, err := s.svc.ListRules(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, ruleSet)
}

func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Keyword    string `json:"keyword"`
		CategoryID int64  `json:"category_id"`
		MatchField string `json:"match_field"`
	}
	if err := decodeJSON(r, &body); err != nil {
		s.respondError(w, err)
		return
	}

	rule, err := s.svc.CreateRule(r.Context(), body.Keyword, body.CategoryID, body.MatchField)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusCreated, rule)
}

func (s *Server) handleReapplyRules(w http.ResponseWriter, r *http.Request) {
	updated, err := s.svc.ReapplyRules(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]int{"updated": updated})
}

func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	start, err := parseDate(r.URL.Query().Get("start_date"))
	if err != nil {
		s.respondError(w, &apperr.ValidationError{Field: "start_date", Reason: "expected YYYY-MM-DD"})
		return
	}
	end, err := parseDate(r.URL.Query().Get("end_date"))
	if err != nil {
		s.respondError(w, &apperr.ValidationError{Field: "end_date", Reason: "expected YYYY-MM-DD"})
		return
	}
	accountID, err := optionalID(r.URL.Query().Get("account_id"))
	if err != nil {
		s.respondError(w, &apperr.ValidationError{Field: "account_id", Reason: "expected an integer"})
		return
	}

	summary, categories, err := s.svc.Summarize(r.Context(), start, end, accountID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]any{
		"summary":    summary,
		"categories": categories,
	})
}

func (s *Server) respond(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.WithError(err).Error("Failed to encode response")
	}
}

// respondError maps the application error taxonomy onto HTTP statuses:
// validation problems are the caller's fault (400), unknown identifiers are
// 404, everything else is a 500 with the detail kept server-side.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	switch {
	case apperr.IsValidation(err):
		s.respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case apperr.IsNotFound(err):
		s.respond(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		s.log.WithError(err).Error("Request failed")
		s.respond(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &apperr.ValidationError{Field: "body", Reason: "invalid JSON payload"}
	}
	return nil
}

func parseDate(v string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(v))
}

func optionalID(v string) (*int64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, &apperr.ValidationError{Field: name, Reason: "expected an integer path segment"}
	}
	return id, nil
}
