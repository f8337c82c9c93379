package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applog "github.com/codingniket/FinApp/internal/log"
	"github.com/codingniket/FinApp/internal/middleware/trace"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts = append([]Option{WithLogger(applog.Discard())}, opts...)
	c, err := New(srv.URL+"/api", opts...)
	require.NoError(t, err)
	return c, srv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
	_, err = New("ftp://example.com")
	assert.Error(t, err)
}

func TestListTransactions(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/transactions/user_1", r.URL.Path)
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": "2", "title": "Coffee", "category": "food", "amount": "-12.50", "created_at": "2025-03-02T09:30:00Z"},
			{"id": "1", "title": "Salary", "category": "income", "amount": 30, "created_at": "2025-03-01T09:30:00Z"},
		})
	})

	txs, err := c.ListTransactions(context.Background(), "user_1")
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "Coffee", txs[0].Title)
	assert.True(t, txs[0].Amount.Equal(decimal.RequireFromString("-12.5")))
	assert.True(t, txs[1].IsIncome())
}

func TestListTransactionsLooseDates(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": "3", "title": "Rent", "category": "bills", "amount": -900, "created_at": "2025-06-01"},
			{"id": "2", "title": "Bus", "category": "transport", "amount": -2, "created_at": "2025-06-01T10:00:00"},
			{"id": "1", "title": "Gym", "category": "health", "amount": -30, "created_at": "2025-06-01 10:00:00+00"},
		})
	})

	txs, err := c.ListTransactions(context.Background(), "user_1")
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.True(t, txs[0].CreatedAt.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, txs[1].CreatedAt.Equal(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)))
	assert.True(t, txs[2].CreatedAt.Equal(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)))
}

func TestGetRejectsNonJSONContentType(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, "<html>proxy login</html>")
	})

	_, err := c.GetSummary(context.Background(), "u")
	assert.ErrorIs(t, err, ErrNotJSON)
}

func TestGetReportsStatus(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "boom"})
	})

	_, err := c.GetSummary(context.Background(), "u")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Equal(t, EndpointSummary, se.Endpoint)
}

func TestGetSummaryAndLast10(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/transactions/summary/u":
			writeJSON(w, http.StatusOK, map[string]any{"balance": "17.50", "income": "30.00", "expenses": "-12.50"})
		case "/api/transactions/last10/u":
			writeJSON(w, http.StatusOK, []any{})
		default:
			http.NotFound(w, r)
		}
	})

	s, err := c.GetSummary(context.Background(), "u")
	require.NoError(t, err)
	assert.Equal(t, "17.5", s.Balance.String())
	assert.Equal(t, "-12.5", s.Expenses.String())

	txs, err := c.LastTransactions(context.Background(), "u")
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestCreateTransactionSendsNumericAmount(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/transactions", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var raw map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.JSONEq(t, `"user_1"`, string(raw["user_id"]))
		assert.Equal(t, "-15", string(raw["amount"]))

		writeJSON(w, http.StatusCreated, map[string]any{
			"id": "9", "title": "Lunch", "category": "food", "amount": "-15.00", "created_at": time.Now().UTC(),
		})
	})

	tx, err := c.CreateTransaction(context.Background(), CreateTransactionRequest{
		UserID: "user_1", Title: "Lunch", Amount: decimal.NewFromInt(-15), Category: "food",
	})
	require.NoError(t, err)
	assert.Equal(t, "9", tx.ID)
}

func TestCreateTransactionErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message from body", `{"message":"All fields are required"}`, "All fields are required"},
		{"no message", `{}`, "failed to create transaction"},
		{"not json", `oops`, "failed to create transaction"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := c.CreateTransaction(context.Background(), CreateTransactionRequest{UserID: "u"})
			var ce *CreateError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.want, ce.Error())
			assert.Equal(t, http.StatusBadRequest, ce.StatusCode)
		})
	}
}

func TestDeleteTransaction(t *testing.T) {
	status := http.StatusOK
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/transactions/42", r.URL.Path)
		w.WriteHeader(status)
	})

	require.NoError(t, c.DeleteTransaction(context.Background(), "42"))

	status = http.StatusNotFound
	err := c.DeleteTransaction(context.Background(), "42")
	assert.ErrorIs(t, err, ErrDeleteFailed)
}

func TestAskAI(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		answer  string
		wantErr string
	}{
		{"answer", http.StatusOK, `{"answer":"You spent $12.50 on food."}`, "You spent $12.50 on food.", ""},
		{"error from body", http.StatusBadRequest, `{"error":"Question is required"}`, "", "Question is required"},
		{"error without text", http.StatusInternalServerError, `{}`, "", "Something went wrong"},
		{"undecodable body", http.StatusOK, `<html>`, "", "Network error or server not reachable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				var in map[string]string
				require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
				assert.Equal(t, "How much on food?", in["question"])
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			got, err := c.AskAI(context.Background(), "How much on food?")
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.answer, got)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestAskAIUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url, WithLogger(applog.Discard()))
	require.NoError(t, err)
	_, err = c.AskAI(context.Background(), "hello")
	assert.True(t, errors.Is(err, ErrUnreachable))
}

func TestRequestIDPropagation(t *testing.T) {
	var got string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get(trace.HeaderRequestID)
		assert.Equal(t, "FinApp/1.0", r.Header.Get("User-Agent"))
		writeJSON(w, http.StatusOK, []any{})
	})

	ctx := trace.WithRequestID(context.Background(), "req-123")
	_, err := c.ListTransactions(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, "req-123", got)

	_, err = c.ListTransactions(context.Background(), "u")
	require.NoError(t, err)
	assert.NotEmpty(t, got)
	assert.NotEqual(t, "req-123", got)
}

func TestTimeoutAndCancellation(t *testing.T) {
	block := make(chan struct{})
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}, WithTimeout(50*time.Millisecond))
	defer close(block)

	_, err := c.ListTransactions(context.Background(), "u")
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.GetSummary(ctx, "u")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMetricsRecorded(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, []any{})
	}, WithMetrics(m))

	_, _ = c.ListTransactions(context.Background(), "u")
	_, _ = c.ListTransactions(context.Background(), "u")
	_ = c.DeleteTransaction(context.Background(), "x")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues(EndpointList, "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues(EndpointDelete, "404")))

	_, err = NewMetrics(reg)
	assert.Error(t, err, "registering twice must fail")
}
