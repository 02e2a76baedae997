package wallet

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/chakri8826/Student-Interview-App/internal/auth"
	"github.com/chakri8826/Student-Interview-App/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	repo Repository
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{
		repo: NewRepository(db),
	}
}

type OrderRequest struct {
	PackID int `json:"pack_id" binding:"required"`
}

type OrderResponse struct {
	OrderID     string `json:"order_id"`
	AmountCents int64  `json:"amount_cents"`
	Credits     int    `json:"credits"`
}

type WalletResponse struct {
	BalanceCredits   int           `json:"balance_credits"`
	LastTransactions []Transaction `json:"last_transactions"`
}

type TransactionListResponse struct {
	Transactions []Transaction `json:"transactions"`
	Total        int           `json:"total"`
}

// GetWallet godoc
// @Summary      Get wallet
// @Description  Returns the balance and the last five transactions of the authenticated user.
// @Tags         wallet
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  WalletResponse
// @Failure      401  {object}  gin.H
// @Failure      500  {object}  gin.H
// @Router       /wallet [get]
func (h *Handler) GetWallet(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	w, err := h.repo.GetOrCreateWallet(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load wallet"})
		return
	}

	txs, err := h.repo.GetTransactions(c.Request.Context(), userID, 5, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load transactions"})
		return
	}

	c.JSON(http.StatusOK, WalletResponse{
		BalanceCredits:   w.BalanceCredits,
		LastTransactions: txs,
	})
}

// CreateOrder godoc
// @Summary      Buy a credit pack
// @Description  Credits the wallet with the chosen pack and records the purchase.
// @Tags         wallet
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      OrderRequest  true  "Credit pack order"
// @Success      200      {object}  OrderResponse
// @Failure      400      {object}  gin.H
// @Failure      401      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Router       /payments/order [post]
func (h *Handler) CreateOrder(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pack, ok := CreditPacks[req.PackID]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credit pack"})
		return
	}

	orderID := fmt.Sprintf("order_%s", strings.ReplaceAll(uuid.NewString(), "-", "")[:16])

	tx, err := h.repo.Purchase(c.Request.Context(), userID, pack, orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create payment order"})
		return
	}

	metrics.RecordPurchase(pack.Credits)

	c.JSON(http.StatusOK, OrderResponse{
		OrderID:     orderID,
		AmountCents: pack.AmountCents,
		Credits:     tx.Credits,
	})
}

// ListTransactions godoc
// @Summary      List transactions
// @Description  Returns the transaction history of the authenticated user, newest first.
// @Tags         wallet
// @Security     BearerAuth
// @Produce      json
// @Param        skip   query     int  false  "Offset"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  TransactionListResponse
// @Failure      401    {object}  gin.H
// @Failure      500    {object}  gin.H
// @Router       /transactions [get]
func (h *Handler) ListTransactions(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	total, err := h.repo.CountTransactions(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load transactions"})
		return
	}

	txs, err := h.repo.GetTransactions(c.Request.Context(), userID, limit, skip)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load transactions"})
		return
	}

	c.JSON(http.StatusOK, TransactionListResponse{
		Transactions: txs,
		Total:        total,
	})
}
