package messaging

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"

	"pustaka-backend/internal/platform/auth"
	"pustaka-backend/internal/platform/httpx"
)

type Handler struct {
	svc *Service
	hub *Hub
}

func RegisterRoutes(r gin.IRoutes, svc *Service, hub *Hub) {
	h := &Handler{svc: svc, hub: hub}

	r.GET("/conversations", h.Conversations)
	r.GET("/conversations/:conversation_id/messages", h.Messages)
	r.POST("/conversations/:conversation_id/read", h.MarkAllRead)
	r.POST("/messages", h.Send)
	r.PUT("/messages/:message_id", h.Edit)
	r.DELETE("/messages/:message_id", h.Delete)
	r.GET("/messages/unread-count", h.UnreadCount)
	r.GET("/messages/stream", h.Stream)
}

func (h *Handler) Conversations(c *gin.Context) {
	res, err := h.svc.Conversations(c.Request.Context(), auth.UserID(c))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Data(c, http.StatusOK, res)
}

func (h *Handler) Messages(c *gin.Context) {
	res, err := h.svc.Messages(c.Request.Context(), auth.UserID(c), c.Param("conversation_id"))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Data(c, http.StatusOK, res)
}

func (h *Handler) Send(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailWith(c, httpx.CodeInvalidArgument, "invalid json or missing required fields")
		return
	}
	res, err := h.svc.Send(c.Request.Context(), auth.UserID(c), req)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Data(c, http.StatusCreated, res)
}

func (h *Handler) Edit(c *gin.Context) {
	var req EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailWith(c, httpx.CodeInvalidArgument, "invalid json or missing required fields")
		return
	}
	res, err := h.svc.Edit(c.Request.Context(), auth.UserID(c), c.Param("message_id"), req)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Data(c, http.StatusOK, res)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), auth.UserID(c), c.Param("message_id")); err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Data(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	if err := h.svc.MarkAllRead(c.Request.Context(), auth.UserID(c), c.Param("conversation_id")); err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Data(c, http.StatusOK, gin.H{"read": true})
}

func (h *Handler) UnreadCount(c *gin.Context) {
	n, err := h.svc.UnreadCount(c.Request.Context(), auth.UserID(c))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Data(c, http.StatusOK, gin.H{"unread": n})
}

// Stream is the push channel that replaces interval polling. There is
// no replay: a consumer does one full re-fetch after (re)connecting and
// then applies events in sequence order. The opening "ready" event
// carries the current sequence so the client knows where it stands.
func (h *Handler) Stream(c *gin.Context) {
	userID := auth.UserID(c)
	ch, cancel := h.hub.Subscribe(userID)
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Render(http.StatusOK, sse.Event{
		Id:    strconv.FormatUint(h.hub.Seq(), 10),
		Event: "ready",
		Data:  gin.H{"seq": h.hub.Seq()},
	})
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.Render(http.StatusOK, sse.Event{
				Id:    strconv.FormatUint(ev.Seq, 10),
				Event: string(ev.Kind),
				Data:  ev,
			})
			return true
		}
	})
}
