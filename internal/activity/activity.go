package activity

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/chakri8826/Student-Interview-App/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Item struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type Handler struct {
	db *sqlx.DB
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{db: db}
}

// List godoc
// @Summary      Recent activity
// @Description  Merges transactions, sessions, role selections and CV uploads into one newest-first feed.
// @Tags         activity
// @Security     BearerAuth
// @Produce      json
// @Param        limit  query     int  false  "Max items"
// @Success      200    {object}  gin.H
// @Failure      500    {object}  gin.H
// @Router       /activities [get]
func (h *Handler) List(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 {
		limit = 20
	}

	items, err := h.collect(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get activities"})
		return
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}

	c.JSON(http.StatusOK, gin.H{"activities": items})
}

func (h *Handler) collect(ctx context.Context, userID int) ([]Item, error) {
	items := []Item{}

	var txs []struct {
		Type      string    `db:"type"`
		Credits   int       `db:"credits"`
		CreatedAt time.Time `db:"created_at"`
	}
	err := h.db.SelectContext(ctx, &txs,
		`SELECT type, credits, created_at FROM wallet_transactions WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	for _, t := range txs {
		items = append(items, Item{
			Type:      "transaction_" + t.Type,
			Message:   fmt.Sprintf("%s %d credits", capitalize(t.Type), t.Credits),
			CreatedAt: t.CreatedAt,
		})
	}

	var sessions []struct {
		Kind      string    `db:"kind"`
		Status    string    `db:"status"`
		CreatedAt time.Time `db:"created_at"`
	}
	err = h.db.SelectContext(ctx, &sessions,
		`SELECT kind, status, created_at FROM billable_sessions WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	for _, s := range sessions {
		message := fmt.Sprintf("Interview %s", s.Status)
		if s.Kind == "screening" {
			message = fmt.Sprintf("CV screening %s", s.Status)
		}
		items = append(items, Item{Type: s.Kind, Message: message, CreatedAt: s.CreatedAt})
	}

	var selections []struct {
		CreatedAt time.Time `db:"created_at"`
	}
	err = h.db.SelectContext(ctx, &selections,
		`SELECT created_at FROM user_role_selections WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	for _, s := range selections {
		items = append(items, Item{Type: "role_selection", Message: "Updated role selection", CreatedAt: s.CreatedAt})
	}

	var cvs []struct {
		Filename  string    `db:"filename"`
		CreatedAt time.Time `db:"created_at"`
	}
	err = h.db.SelectContext(ctx, &cvs,
		`SELECT filename, created_at FROM cvs WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	for _, cv := range cvs {
		items = append(items, Item{Type: "cv_upload", Message: "Uploaded CV " + cv.Filename, CreatedAt: cv.CreatedAt})
	}

	return items, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
