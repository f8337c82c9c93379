package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/codingniket/FinApp/internal/amqp"
	"github.com/codingniket/FinApp/internal/api"
	"github.com/codingniket/FinApp/internal/core"
	"github.com/codingniket/FinApp/internal/ledger"
	applog "github.com/codingniket/FinApp/internal/log"
)

// Alerts raised by the create screen.
const (
	alertSuccessTitle = "Success"
	alertCreated      = "Transaction created successfully"
	alertCreateFailed = "Failed to create transaction"
)

type transactionRow struct {
	ID       string
	Title    string
	Category string
	Icon     string
	Amount   string
	Income   bool
	Date     string
}

type homePage struct {
	layout
	Balance      string
	Income       string
	Expenses     string
	Transactions []transactionRow
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := userFromContext(ctx)

	view := ledger.NewTransactions(s.wallet, user.ID, &alertCollector{}, applog.FromContext(ctx))
	view.LoadData(ctx)
	snap := view.Snapshot()

	page := homePage{
		layout:       s.newLayout(w, r, "Transactions", "home"),
		Balance:      core.FormatCurrency(snap.Summary.Balance),
		Income:       core.FormatIncome(snap.Summary.Income),
		Expenses:     core.FormatExpenses(snap.Summary.Expenses),
		Transactions: make([]transactionRow, 0, len(snap.Transactions)),
	}
	for _, tx := range snap.Transactions {
		page.Transactions = append(page.Transactions, newTransactionRow(tx))
	}
	s.render(w, r, http.StatusOK, "home.html", page)
}

func newTransactionRow(tx core.Transaction) transactionRow {
	row := transactionRow{
		ID:       tx.ID,
		Title:    tx.Title,
		Category: tx.Category,
		Icon:     core.CategoryIcon(tx.Category),
		Amount:   core.FormatTransactionAmount(tx.Amount),
		Income:   tx.IsIncome(),
	}
	if !tx.CreatedAt.IsZero() {
		row.Date = tx.CreatedAt.Format("Jan 2, 2006")
	}
	return row
}

// handleDeleteTransaction deletes only when the confirmation box is
// ticked. An unconfirmed submit behaves like cancelling the dialog.
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := userFromContext(ctx)
	id := r.PathValue("id")

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("confirm") == "" || id == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	alerts := &alertCollector{}
	view := ledger.NewTransactions(s.wallet, user.ID, alerts, applog.FromContext(ctx))
	if err := view.DeleteTransaction(ctx, id); err == nil {
		s.events.LogTransactionDeleted(ctx, user.ID, id)
		s.publish(ctx, amqp.NewDeletedEvent(user.ID, id))
	}

	setFlash(w, alerts.Alerts())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type categoryOption struct {
	ID       string
	Name     string
	Icon     string
	Selected bool
}

type createPage struct {
	layout
	TxTitle    string
	Amount     string
	IsExpense  bool
	Categories []categoryOption
}

func (s *Server) newCreatePage(w http.ResponseWriter, r *http.Request, draft core.TransactionDraft) createPage {
	page := createPage{
		layout:    s.newLayout(w, r, "New Transaction", "create"),
		TxTitle:   draft.Title,
		Amount:    draft.Amount,
		IsExpense: draft.IsExpense,
	}
	for _, c := range core.Categories {
		page.Categories = append(page.Categories, categoryOption{ID: c.ID, Name: c.Name, Icon: c.Icon, Selected: c.ID == draft.Category})
	}
	return page
}

func (s *Server) handleCreateForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "create.html", s.newCreatePage(w, r, core.TransactionDraft{IsExpense: true}))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)
	user := userFromContext(ctx)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	draft := core.TransactionDraft{
		Title:     r.PostForm.Get("title"),
		Amount:    strings.TrimSpace(r.PostForm.Get("amount")),
		Category:  r.PostForm.Get("category"),
		IsExpense: r.PostForm.Get("type") != "income",
	}

	if err := draft.Validate(); err != nil {
		page := s.newCreatePage(w, r, draft)
		page.Alerts = append(page.Alerts, Alert{Title: ledger.AlertErrorTitle, Message: core.AlertMessage(err)})
		s.render(w, r, http.StatusUnprocessableEntity, "create.html", page)
		return
	}
	amount, err := draft.SignedAmount()
	if err != nil {
		page := s.newCreatePage(w, r, draft)
		page.Alerts = append(page.Alerts, Alert{Title: ledger.AlertErrorTitle, Message: core.AlertMessage(core.ErrInvalidAmount)})
		s.render(w, r, http.StatusUnprocessableEntity, "create.html", page)
		return
	}

	created, err := s.wallet.CreateTransaction(ctx, api.CreateTransactionRequest{
		UserID:   user.ID,
		Title:    strings.TrimSpace(draft.Title),
		Amount:   amount,
		Category: draft.Category,
	})
	if err != nil {
		logger.ErrorContext(ctx, "Create transaction failed",
			applog.FieldError, err,
			applog.FieldOperation, applog.OpCreate,
			"backend_message", backendMessage(err))
		page := s.newCreatePage(w, r, draft)
		page.Alerts = append(page.Alerts, Alert{Title: ledger.AlertErrorTitle, Message: alertCreateFailed})
		s.render(w, r, http.StatusBadGateway, "create.html", page)
		return
	}

	s.events.LogTransactionCreated(ctx, user.ID, created.ID, created.Title, created.Category, created.Amount.String())
	s.publish(ctx, amqp.NewCreatedEvent(user.ID, created))

	setFlash(w, []Alert{{Title: alertSuccessTitle, Message: alertCreated}})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// backendMessage extracts the wallet API's explanation for the log. The
// user only ever sees alertCreateFailed.
func backendMessage(err error) string {
	var ce *api.CreateError
	if errors.As(err, &ce) {
		return ce.Message
	}
	return ""
}

// publish sends a transaction event when a broker is configured. Failures
// are logged only.
func (s *Server) publish(ctx context.Context, event *amqp.TransactionEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionEvent(ctx, event); err != nil {
		applog.FromContext(ctx).WarnContext(ctx, "Publishing transaction event failed",
			applog.FieldError, err,
			applog.FieldEventType, event.Type,
			applog.FieldTransactionID, event.TransactionID,
			applog.FieldOperation, applog.OpPublish)
	}
}
