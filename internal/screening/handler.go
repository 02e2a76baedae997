package screening

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/chakri8826/Student-Interview-App/internal/auth"
	"github.com/chakri8826/Student-Interview-App/internal/document"
	"github.com/chakri8826/Student-Interview-App/internal/session"
	"github.com/chakri8826/Student-Interview-App/internal/wallet"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type RunRequest struct {
	CVID int `json:"cv_id" binding:"required"`
}

// Run godoc
// @Summary      Run a CV screening
// @Description  Reserves 1 credit, reads the CV and runs the AI analysis. Credits are returned if the document cannot be read.
// @Tags         screenings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      RunRequest  true  "CV to screen"
// @Success      200      {object}  Result
// @Failure      400      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Router       /screenings/run [post]
func (h *Handler) Run(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Run(c.Request.Context(), userID, req.CVID)
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrInsufficientCredits):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient credits"})
		case errors.Is(err, document.ErrCVNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "CV not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run screening, credits were returned"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// Get godoc
// @Summary      Get a screening
// @Tags         screenings
// @Security     BearerAuth
// @Produce      json
// @Param        screeningID  path      int  true  "Screening ID"
// @Success      200          {object}  session.Session
// @Failure      404          {object}  gin.H
// @Router       /screenings/{screeningID} [get]
func (h *Handler) Get(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	screeningID, err := strconv.Atoi(c.Param("screeningID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid screening ID"})
		return
	}

	sess, err := h.service.Get(c.Request.Context(), userID, screeningID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Screening not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch screening"})
		return
	}

	c.JSON(http.StatusOK, sess)
}
