package role

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/chakri8826/Student-Interview-App/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	repo Repository
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{repo: NewRepository(db)}
}

type SelectionRequest struct {
	RoleIDs []int `json:"role_ids" binding:"required,min=1"`
}

// ListRoles godoc
// @Summary      List roles
// @Description  Returns the active role catalog, seeding the defaults on first call.
// @Tags         roles
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   Role
// @Failure      500  {object}  gin.H
// @Router       /roles [get]
func (h *Handler) ListRoles(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.repo.SeedDefaults(ctx); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to seed roles"})
		return
	}

	roles, err := h.repo.ListActive(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get roles"})
		return
	}

	c.JSON(http.StatusOK, roles)
}

// AddSelections godoc
// @Summary      Add role selections
// @Description  Adds the given roles to the user's selection. Already-selected roles are skipped, not errors.
// @Tags         roles
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      SelectionRequest  true  "Role ids"
// @Success      200      {object}  gin.H
// @Failure      400      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Router       /my/roles [post]
func (h *Handler) AddSelections(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	added, skipped, err := h.repo.AddSelections(c.Request.Context(), userID, req.RoleIDs)
	if err != nil {
		if errors.Is(err, ErrRoleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Role not found or inactive"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add role selections"})
		return
	}

	message := fmt.Sprintf("Successfully added %d role(s)", len(added))
	if len(skipped) > 0 {
		message += fmt.Sprintf(", skipped %d already selected role(s)", len(skipped))
	}

	c.JSON(http.StatusOK, gin.H{
		"message":          message,
		"added_role_ids":   added,
		"skipped_role_ids": skipped,
	})
}

// SetSelections godoc
// @Summary      Replace role selections
// @Description  Replaces the user's whole role selection in one transaction.
// @Tags         roles
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      SelectionRequest  true  "Role ids"
// @Success      200      {object}  gin.H
// @Failure      400      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Router       /my/roles/set [post]
func (h *Handler) SetSelections(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	valid, err := h.repo.CountActiveByIDs(c.Request.Context(), req.RoleIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate roles"})
		return
	}
	if valid != len(req.RoleIDs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "One or more roles are invalid or inactive"})
		return
	}

	if err := h.repo.ReplaceSelections(c.Request.Context(), userID, req.RoleIDs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set user roles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Role selection updated",
		"role_ids": req.RoleIDs,
	})
}

// ListSelections godoc
// @Summary      List my role selections
// @Tags         roles
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   SelectionWithRole
// @Failure      500  {object}  gin.H
// @Router       /my/roles [get]
func (h *Handler) ListSelections(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	selections, err := h.repo.ListSelections(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user roles"})
		return
	}

	c.JSON(http.StatusOK, selections)
}
