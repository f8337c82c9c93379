package devapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	applog "github.com/codingniket/FinApp/internal/log"
)

type handler struct {
	store  *Store
	logger *applog.Logger
}

// NewRouter exposes store with the wallet API's routes.
func NewRouter(store *Store, logger *applog.Logger) *mux.Router {
	if logger == nil {
		logger = applog.Discard()
	}
	h := &handler{store: store, logger: logger.WithComponent(applog.ComponentDevAPI)}

	r := mux.NewRouter()
	r.Use(h.logRequests)
	r.HandleFunc("/", h.ping).Methods(http.MethodGet)
	r.HandleFunc("/transactions", h.create).Methods(http.MethodPost)
	r.HandleFunc("/transactions/summary/{userId}", h.summary).Methods(http.MethodGet)
	r.HandleFunc("/transactions/last10/{userId}", h.last).Methods(http.MethodGet)
	r.HandleFunc("/transactions/{userId}", h.list).Methods(http.MethodGet)
	r.HandleFunc("/transactions/{id}", h.delete).Methods(http.MethodDelete)
	r.HandleFunc("/askAi", h.askAI).Methods(http.MethodPost)
	return r
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		h.logger.DebugContext(r.Context(), "Handled request",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldDuration, time.Since(start).Milliseconds())
	})
}

func (h *handler) ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.List(mux.Vars(r)["userId"]))
}

func (h *handler) last(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Last(mux.Vars(r)["userId"], LastWindow))
}

func (h *handler) summary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Summary(mux.Vars(r)["userId"]))
}

type createRequest struct {
	UserID   string              `json:"user_id"`
	Title    string              `json:"title"`
	Amount   decimal.NullDecimal `json:"amount"`
	Category string              `json:"category"`
}

func (h *handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid JSON body"})
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.UserID == "" || req.Title == "" || req.Category == "" || !req.Amount.Valid {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "All fields are required"})
		return
	}

	tx := h.store.Create(req.UserID, req.Title, req.Category, req.Amount.Decimal)
	h.logger.InfoContext(r.Context(), "Transaction created",
		applog.NewFields().WithTransaction(tx.ID, tx.Title, tx.Category, tx.Amount.String()).WithUser(tx.UserID).ToSlice()...)
	writeJSON(w, http.StatusCreated, tx)
}

func (h *handler) delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !h.store.Delete(id) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Transaction not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Transaction deleted successfully"})
}

func (h *handler) askAI(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Question is required"})
		return
	}
	answer := fmt.Sprintf("This development backend has no AI model. You asked: %q", strings.TrimSpace(req.Question))
	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
