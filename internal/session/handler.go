package session

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/chakri8826/Student-Interview-App/internal/auth"
	"github.com/chakri8826/Student-Interview-App/internal/conversation"
	"github.com/chakri8826/Student-Interview-App/internal/role"
	"github.com/chakri8826/Student-Interview-App/internal/wallet"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type StartInterviewRequest struct {
	RoleID int  `json:"role_id" binding:"required"`
	CVID   *int `json:"cv_id"`
}

type StartInterviewResponse struct {
	ID      int     `json:"id"`
	Status  string  `json:"status"`
	JoinURL *string `json:"join_url,omitempty"`
}

// StartInterview godoc
// @Summary      Start a live interview session
// @Description  Reserves 5 credits and creates a conversational session with the video vendor. Credits are returned if the vendor call definitively fails.
// @Tags         interviews
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      StartInterviewRequest  true  "Interview parameters"
// @Success      201      {object}  StartInterviewResponse
// @Success      202      {object}  StartInterviewResponse
// @Failure      400      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Failure      502      {object}  gin.H
// @Router       /interviews/start [post]
func (h *Handler) StartInterview(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req StartInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.service.StartInterview(c.Request.Context(), userID, req.RoleID, req.CVID)
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrInsufficientCredits):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient credits"})
		case errors.Is(err, role.ErrRoleNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Role not found"})
		case errors.Is(err, conversation.ErrNotConfigured):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Interview vendor is not configured"})
		case errors.Is(err, conversation.ErrExternalService):
			c.JSON(http.StatusBadGateway, gin.H{"error": "Interview session creation failed, credits were returned"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start interview"})
		}
		return
	}

	status := http.StatusCreated
	if sess.Status == StatusCreated {
		// Ambiguous vendor outcome, nothing was refunded yet.
		status = http.StatusAccepted
	}

	c.JSON(status, StartInterviewResponse{
		ID:      sess.ID,
		Status:  sess.Status,
		JoinURL: sess.JoinURL,
	})
}

// ListInterviews godoc
// @Summary      List my interview sessions
// @Tags         interviews
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   Session
// @Failure      500  {object}  gin.H
// @Router       /interviews [get]
func (h *Handler) ListInterviews(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	sessions, err := h.service.ListInterviews(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch interviews"})
		return
	}

	c.JSON(http.StatusOK, sessions)
}

// GetInterview godoc
// @Summary      Get one interview session
// @Tags         interviews
// @Security     BearerAuth
// @Produce      json
// @Param        sessionID  path      int  true  "Session ID"
// @Success      200        {object}  Session
// @Failure      404        {object}  gin.H
// @Router       /interviews/{sessionID} [get]
func (h *Handler) GetInterview(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	sessionID, err := strconv.Atoi(c.Param("sessionID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID"})
		return
	}

	sess, err := h.service.GetInterview(c.Request.Context(), userID, sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Interview not found"})
		return
	}

	c.JSON(http.StatusOK, sess)
}
