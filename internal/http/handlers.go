package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"ledger/internal/ledger"
)

// maxUploadBytes caps batch uploads; bank exports are small.
const maxUploadBytes = 32 << 20 // 32MB

type transactionJSON struct {
	ID       int64        `json:"id"`
	Title    string       `json:"title"`
	Type     string       `json:"type"`
	Value    float64      `json:"value"`
	Category categoryJSON `json:"category"`
}

type categoryJSON struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

type balanceJSON struct {
	Income  float64 `json:"income"`
	Outcome float64 `json:"outcome"`
	Total   float64 `json:"total"`
}

type createRequest struct {
	Title    string          `json:"title"`
	Value    json.RawMessage `json:"value"`
	Type     string          `json:"type"`
	Category string          `json:"category"`
}

func toTransactionJSON(t ledger.Transaction) transactionJSON {
	return transactionJSON{
		ID:    t.ID,
		Title: t.Title,
		Type:  string(t.Type),
		Value: t.Value.Units(),
		Category: categoryJSON{
			ID:    t.Category.ID,
			Title: t.Category.Title,
		},
	}
}

func toBalanceJSON(b ledger.Balance) balanceJSON {
	return balanceJSON{
		Income:  b.Income.Units(),
		Outcome: b.Outcome.Units(),
		Total:   b.Total.Units(),
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	transactions, balance, err := s.ledger.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	payload := struct {
		Transactions []transactionJSON `json:"transactions"`
		Balance      balanceJSON       `json:"balance"`
	}{
		Transactions: make([]transactionJSON, 0, len(transactions)),
		Balance:      toBalanceJSON(balance),
	}
	for _, t := range transactions {
		payload.Transactions = append(payload.Transactions, toTransactionJSON(t))
	}

	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.WarnContext(r.Context(), "Malformed create request", "error", err)
		writeErrorJSON(w, http.StatusBadRequest, "malformed request body")
		return
	}

	value, err := parseValue(req.Value)
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid value")
		return
	}

	created, err := s.ledger.Create(r.Context(), req.Title, value, ledger.TransactionType(req.Type), req.Category)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionJSON(created))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	if err := s.ledger.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, _, err := r.FormFile("file")
	if err != nil {
		slog.WarnContext(r.Context(), "Missing batch file in upload", "error", err)
		writeErrorJSON(w, http.StatusBadRequest, "missing file upload")
		return
	}
	defer file.Close()

	// Spool the upload to disk; the reconciler owns the file from here and
	// removes it whether the import succeeds or not.
	tmp, err := os.CreateTemp(s.uploadDir, "batch-*.csv")
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to create upload file", "error", err)
		writeErrorJSON(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		slog.ErrorContext(r.Context(), "Failed to spool upload", "error", err)
		writeErrorJSON(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		slog.ErrorContext(r.Context(), "Failed to close upload file", "error", err)
		writeErrorJSON(w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	created, err := s.ledger.ImportFile(r.Context(), tmp.Name())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	payload := make([]transactionJSON, 0, len(created))
	for _, t := range created {
		payload = append(payload, toTransactionJSON(t))
	}
	writeJSON(w, http.StatusOK, payload)
}

// parseValue accepts the value either as a JSON number or as a string, both
// observed in client payloads.
func parseValue(raw json.RawMessage) (ledger.Money, error) {
	if len(raw) == 0 {
		return ledger.Money{}, ledger.ErrInvalidAmount
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return ledger.ParseAmount(str)
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		return ledger.Money{}, ledger.ErrInvalidAmount
	}
	return ledger.ParseAmount(num.String())
}

// writeError maps core errors to HTTP statuses per the error taxonomy.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ledger.ErrEmptyTitle),
		errors.Is(err, ledger.ErrEmptyCategory),
		errors.Is(err, ledger.ErrInvalidType),
		errors.Is(err, ledger.ErrInvalidAmount):
		writeErrorJSON(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrInsufficientBalance):
		writeErrorJSON(w, http.StatusBadRequest, "insufficient balance")
	case errors.Is(err, ledger.ErrNotFound):
		writeErrorJSON(w, http.StatusNotFound, "transaction not found")
	default:
		slog.ErrorContext(r.Context(), "Request failed", "error", err, "url", r.URL.Path)
		writeErrorJSON(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeErrorJSON(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, struct {
		Error string `json:"error"`
	}{Error: message})
}
