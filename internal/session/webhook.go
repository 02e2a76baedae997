package session

import (
	"net/http"
	"strings"

	"github.com/chakri8826/Student-Interview-App/internal/api"
	"github.com/chakri8826/Student-Interview-App/internal/logger"
	"github.com/chakri8826/Student-Interview-App/internal/metrics"
	"github.com/chakri8826/Student-Interview-App/internal/user"

	"github.com/gin-gonic/gin"
)

// terminalByVendorStatus is the fixed vocabulary mapping from vendor
// status tokens to our terminal states. Anything absent is ignored.
var terminalByVendorStatus = map[string]string{
	"completed": StatusDone,
	"ended":     StatusDone,
	"finished":  StatusDone,
	"done":      StatusDone,
	"failed":    StatusFailed,
	"canceled":  StatusFailed,
	"cancelled": StatusFailed,
}

type webhookPayload struct {
	ExternalRef    string `json:"external_ref"`
	RoomName       string `json:"room_name"`
	RoomID         string `json:"room_id"`
	ConversationID string `json:"conversation_id"`
	Status         string `json:"status"`
	Event          string `json:"event"`
}

func (p webhookPayload) correlation() string {
	for _, v := range []string{p.ExternalRef, p.RoomName, p.RoomID, p.ConversationID} {
		if v != "" {
			return v
		}
	}
	return ""
}

func (p webhookPayload) statusToken() string {
	if p.Status != "" {
		return p.Status
	}
	return p.Event
}

// WebhookHandler consumes asynchronous vendor notifications and drives
// the active → done|failed transitions. It never fails loudly to the
// sender: a vendor will not retry a 4xx/5xx meaningfully and internal
// errors must not cross the trust boundary.
type WebhookHandler struct {
	sessions Repository
	userRepo user.Repository
	notifier Notifier
}

func NewWebhookHandler(sessions Repository, userRepo user.Repository, notifier Notifier) *WebhookHandler {
	return &WebhookHandler{sessions: sessions, userRepo: userRepo, notifier: notifier}
}

// Handle godoc
// @Summary      Vendor status webhook
// @Description  Receives session status notifications from the conversational vendor. Always responds 200.
// @Tags         interviews
// @Accept       json
// @Produce      json
// @Success      200  {object}  api.WebhookAck
// @Router       /interviews/webhook [post]
func (h *WebhookHandler) Handle(c *gin.Context) {
	var payload webhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		logger.Error("webhook payload unreadable", "error", err.Error())
		metrics.RecordWebhookEvent("bad_payload")
		c.JSON(http.StatusOK, api.WebhookAck{OK: false})
		return
	}

	ref := payload.correlation()
	if ref == "" {
		metrics.RecordWebhookEvent("no_correlation")
		c.JSON(http.StatusOK, api.WebhookAck{OK: true})
		return
	}

	sess, err := h.locate(c, ref)
	if err != nil {
		// Unknown session: acknowledge, nothing to change. Network
		// retries and notifications for foreign sessions land here.
		metrics.RecordWebhookEvent("unknown_session")
		c.JSON(http.StatusOK, api.WebhookAck{OK: true})
		return
	}

	terminal, known := terminalByVendorStatus[strings.ToLower(payload.statusToken())]
	if !known {
		metrics.RecordWebhookEvent("unknown_status")
		c.JSON(http.StatusOK, api.WebhookAck{OK: true})
		return
	}

	applied, err := h.sessions.Resolve(c.Request.Context(), sess.ID, terminal)
	if err != nil {
		logger.Error("failed to resolve session from webhook",
			"session_id", sess.ID, "terminal", terminal, "error", err.Error())
		metrics.RecordWebhookEvent("error")
		c.JSON(http.StatusOK, api.WebhookAck{OK: false})
		return
	}

	if !applied {
		// Already terminal, or never activated. Repeat notifications
		// are expected and ignored.
		metrics.RecordWebhookEvent("noop")
		c.JSON(http.StatusOK, api.WebhookAck{OK: true})
		return
	}

	logger.Info("session resolved from webhook",
		"session_id", sess.ID, "ref", sess.Ref, "status", terminal)
	metrics.RecordWebhookEvent("applied")
	metrics.RecordSession(sess.Kind, terminal)

	if terminal == StatusDone {
		h.notifyCompleted(c, sess)
	}

	c.JSON(http.StatusOK, api.WebhookAck{OK: true})
}

// locate resolves the correlation identifier: our own refs carry a
// kind prefix, anything else is treated as the vendor's session id.
func (h *WebhookHandler) locate(c *gin.Context, ref string) (*Session, error) {
	ctx := c.Request.Context()
	if strings.HasPrefix(ref, KindInterview+"_") || strings.HasPrefix(ref, KindScreening+"_") {
		return h.sessions.FindByRef(ctx, ref)
	}
	return h.sessions.FindByExternalID(ctx, ref)
}

func (h *WebhookHandler) notifyCompleted(c *gin.Context, sess *Session) {
	if h.notifier == nil {
		return
	}
	u, err := h.userRepo.FindByID(c.Request.Context(), sess.UserID)
	if err != nil {
		return
	}
	_ = h.notifier.Send(c.Request.Context(), u.Email, u.Name,
		"Your interview session is complete",
		"Your interview practice session has finished. Check your dashboard for history.")
}
