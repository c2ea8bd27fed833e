package handler

import (
	"net/http"
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xbank/transaction-service/internal/cqrs"
	"github.com/xbank/transaction-service/internal/middleware"
	"github.com/xbank/transaction-service/internal/models"
	"github.com/xbank/transaction-service/internal/web"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// idPattern bounds the delete path parameter to a plain decimal id.
var idPattern = regexp.MustCompile(`^\d{1,18}$`)

// TransactionCommander defines the write-side operations used by TransactionHandler.
type TransactionCommander interface {
	CreateTransaction(cqrs.CreateTransactionCommand) (*models.Transaction, error)
	EditTransaction(cqrs.EditTransactionCommand) (*models.Transaction, error)
	DeleteTransaction(cqrs.DeleteTransactionCommand) error
}

// TransactionQuerier defines the read-side operations used by TransactionHandler.
type TransactionQuerier interface {
	CountTransactions() (int64, error)
	GetAllTransactions(cqrs.ListTransactionsQuery) ([]models.Transaction, error)
}

type TransactionHandler struct {
	commands TransactionCommander
	queries  TransactionQuerier
	appName  string
}

type CreateTransactionRequest struct {
	Account   string  `json:"account" validate:"required"`
	ToAccount string  `json:"toAccount" validate:"required"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Currency  string  `json:"currency" validate:"required"`
}

type EditTransactionRequest struct {
	ID        int64   `json:"id" validate:"required,gt=0"`
	Account   string  `json:"account" validate:"required"`
	ToAccount string  `json:"toAccount" validate:"required"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Currency  string  `json:"currency" validate:"required"`
}

func NewTransactionHandler(commands TransactionCommander, queries TransactionQuerier, appName string) *TransactionHandler {
	return &TransactionHandler{commands: commands, queries: queries, appName: appName}
}

// CreateTransaction handles POST /api/transactions.
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	transaction, err := h.commands.CreateTransaction(cqrs.CreateTransactionCommand{
		Account:   req.Account,
		ToAccount: req.ToAccount,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Actor:     middleware.GetUserLogin(c),
	})
	if err != nil {
		h.respondWriteError(c, err)
		return
	}

	id := strconv.FormatInt(transaction.ID, 10)
	c.Header("Location", "/api/transactions/"+id)
	web.SetAlertHeaders(c, h.appName, "TransactionManagement.created", id)
	c.JSON(http.StatusCreated, transaction)
}

// EditTransaction handles PUT /api/transactions. It responds 201 like the
// create path; clients depend on that status.
func (h *TransactionHandler) EditTransaction(c *gin.Context) {
	var req EditTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	transaction, err := h.commands.EditTransaction(cqrs.EditTransactionCommand{
		ID:        req.ID,
		Account:   req.Account,
		ToAccount: req.ToAccount,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Actor:     middleware.GetUserLogin(c),
	})
	if err != nil {
		h.respondWriteError(c, err)
		return
	}

	id := strconv.FormatInt(transaction.ID, 10)
	c.Header("Location", "/api/transactions/"+id)
	web.SetAlertHeaders(c, h.appName, "TransactionManagement.edit", id)
	c.JSON(http.StatusCreated, transaction)
}

// DeleteTransaction handles DELETE /api/transactions/:id. Deleting an id
// that was never created responds exactly like deleting one that was.
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	rawID := c.Param("id")
	if !idPattern.MatchString(rawID) {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid transaction id")
		return
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid transaction id")
		return
	}

	if err := h.commands.DeleteTransaction(cqrs.DeleteTransactionCommand{
		ID:    id,
		Actor: middleware.GetUserLogin(c),
	}); err != nil {
		h.respondWriteError(c, err)
		return
	}

	web.SetAlertHeaders(c, h.appName, "deleteTransaction.deleted", rawID)
	c.Status(http.StatusNoContent)
}

// GetAllTransactions handles GET /api/transactions. The total count and
// the page body come from two independent queries; the headers reflect
// the count at the time it ran, not a snapshot shared with the page.
func (h *TransactionHandler) GetAllTransactions(c *gin.Context) {
	page, size := pageParams(c)

	total, err := h.queries.CountTransactions()
	if err != nil {
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to count transactions")
		return
	}

	transactions, err := h.queries.GetAllTransactions(cqrs.ListTransactionsQuery{Page: page, Size: size})
	if err != nil {
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to list transactions")
		return
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}

	web.SetPaginationHeaders(c, page, size, total)
	c.JSON(http.StatusOK, transactions)
}

func (h *TransactionHandler) respondWriteError(c *gin.Context, err error) {
	switch err.Error() {
	case "write access denied":
		middleware.RespondWithError(c, http.StatusForbidden, "Write access denied")
	default:
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to process transaction")
	}
}

func pageParams(c *gin.Context) (int, int) {
	page := 0
	size := defaultPageSize
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v >= 0 {
			page = v
		}
	}
	if s := c.Query("size"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 && v <= maxPageSize {
			size = v
		}
	}
	return page, size
}
