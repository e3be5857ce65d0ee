package v1

import (
	"net/http"
	"time"

	"portfolio-admin-backend/internal/delivery/http/middleware"
	"portfolio-admin-backend/internal/delivery/http/response"
	"portfolio-admin-backend/internal/domain"
	"portfolio-admin-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	sessions  domain.SessionProvider
	heartbeat time.Duration
}

func NewSessionHandler(public *gin.RouterGroup, sessions domain.SessionProvider) {
	handler := &SessionHandler{sessions: sessions, heartbeat: 25 * time.Second}

	public.GET("/session", handler.Current)
	public.GET("/session/events", handler.Events)
}

type SessionStatus struct {
	Status  string          `json:"status"` // authenticated or anonymous
	Session *domain.Session `json:"session,omitempty"`
}

// sessionToken also accepts ?access_token= because EventSource cannot set headers.
func sessionToken(c *gin.Context) string {
	if token := middleware.BearerToken(c); token != "" {
		return token
	}
	return c.Query("access_token")
}

// Current godoc
// @Summary      Current session
// @Description  Resolves the session gate: authenticated with the session, or anonymous.
// @Tags         session
// @Produce      json
// @Success      200  {object}  response.Response{data=SessionStatus}
// @Router       /session [get]
func (h *SessionHandler) Current(c *gin.Context) {
	session, err := h.sessions.GetSession(c.Request.Context(), sessionToken(c))
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	response.Quiet(c, http.StatusOK, statusOf(session))
}

func statusOf(session *domain.Session) SessionStatus {
	if session == nil {
		return SessionStatus{Status: "anonymous"}
	}
	return SessionStatus{Status: "authenticated", Session: session}
}

// Events godoc
// @Summary      Session state stream
// @Description  Server-Sent Events. The first "auth" event is the resolved current state,
// @Description  followed by every sign-in or sign-out of the same admin. The subscription
// @Description  is released when the client disconnects.
// @Tags         session
// @Produce      text/event-stream
// @Success      200
// @Router       /session/events [get]
func (h *SessionHandler) Events(c *gin.Context) {
	ctx := c.Request.Context()
	session, err := h.sessions.GetSession(ctx, sessionToken(c))
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}

	userID := ""
	if session != nil {
		userID = session.User.ID
	}

	changes := make(chan domain.AuthStateChange, 8)
	sub := h.sessions.OnAuthStateChange(func(change domain.AuthStateChange) {
		if userID == "" || change.UserID != userID {
			return
		}
		select {
		case changes <- change:
		default: // slow reader, drop
		}
	})
	defer sub.Unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent("auth", domain.AuthStateChange{
		Event:   domain.EventInitialSession,
		UserID:  userID,
		Session: session,
		At:      time.Now(),
	})
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case change := <-changes:
			c.SSEvent("auth", change)
			c.Writer.Flush()
			if change.Event == domain.EventSignedOut {
				return
			}
		case <-ticker.C:
			c.SSEvent("ping", time.Now().Unix())
			c.Writer.Flush()
		}
	}
}
