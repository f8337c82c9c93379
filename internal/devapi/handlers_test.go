package devapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codingniket/FinApp/internal/api"
	applog "github.com/codingniket/FinApp/internal/log"
)

func newTestAPI(t *testing.T) (*api.Client, *Store, *httptest.Server) {
	t.Helper()
	store := newTestStore()
	srv := httptest.NewServer(NewRouter(store, nil))
	t.Cleanup(srv.Close)

	client, err := api.New(srv.URL, api.WithLogger(applog.Discard()))
	require.NoError(t, err)
	return client, store, srv
}

func TestClientRoundTrip(t *testing.T) {
	client, _, _ := newTestAPI(t)
	ctx := context.Background()

	created, err := client.CreateTransaction(ctx, api.CreateTransactionRequest{
		UserID:   "u1",
		Title:    "Coffee",
		Amount:   decimal.RequireFromString("-3.75"),
		Category: "food",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.Amount.Equal(decimal.RequireFromString("-3.75")))

	_, err = client.CreateTransaction(ctx, api.CreateTransactionRequest{
		UserID:   "u1",
		Title:    "Salary",
		Amount:   decimal.NewFromInt(2000),
		Category: "income",
	})
	require.NoError(t, err)

	txs, err := client.ListTransactions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "Salary", txs[0].Title)

	last, err := client.LastTransactions(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, last, 2)

	sum, err := client.GetSummary(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, sum.Balance.Equal(decimal.RequireFromString("1996.25")), sum.Balance.String())
	assert.True(t, sum.Expenses.Equal(decimal.RequireFromString("-3.75")), sum.Expenses.String())

	require.NoError(t, client.DeleteTransaction(ctx, created.ID))
	err = client.DeleteTransaction(ctx, created.ID)
	assert.ErrorIs(t, err, api.ErrDeleteFailed)

	require.NoError(t, client.Ping(ctx))
}

func TestCreateRequiresAllFields(t *testing.T) {
	client, _, _ := newTestAPI(t)

	_, err := client.CreateTransaction(context.Background(), api.CreateTransactionRequest{
		UserID: "u1",
		Amount: decimal.NewFromInt(-1),
	})

	var ce *api.CreateError
	require.True(t, errors.As(err, &ce), "got %v", err)
	assert.Equal(t, http.StatusBadRequest, ce.StatusCode)
	assert.Equal(t, "All fields are required", ce.Message)
}

func TestCreateRejectsMissingAmount(t *testing.T) {
	_, _, srv := newTestAPI(t)

	resp, err := http.Post(srv.URL+"/transactions", "application/json",
		strings.NewReader(`{"user_id":"u1","title":"x","category":"food"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAskAI(t *testing.T) {
	client, _, _ := newTestAPI(t)
	ctx := context.Background()

	answer, err := client.AskAI(ctx, "How much did I spend?")
	require.NoError(t, err)
	assert.Contains(t, answer, "How much did I spend?")

	_, err = client.AskAI(ctx, "   ")
	var aiErr *api.AIError
	require.True(t, errors.As(err, &aiErr), "got %v", err)
	assert.Equal(t, "Question is required", aiErr.Message)
}

func TestEmptyUserListsAreJSONArrays(t *testing.T) {
	_, _, srv := newTestAPI(t)

	resp, err := http.Get(srv.URL + "/transactions/nobody")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(body))
}
