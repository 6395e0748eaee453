package reviews

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pustaka-backend/internal/platform/auth"
	"pustaka-backend/internal/platform/httpx"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.GET("/books/:book_id/reviews", h.ListByBook)
	r.POST("/reviews", h.Create)
	r.DELETE("/reviews/:review_id", h.Delete)
}

func (h *Handler) ListByBook(c *gin.Context) {
	res, err := h.svc.ListByBook(c.Request.Context(), c.Param("book_id"))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Data(c, http.StatusOK, res)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailWith(c, httpx.CodeInvalidArgument, "invalid json or missing required fields")
		return
	}
	res, err := h.svc.Create(c.Request.Context(), auth.UserID(c), req)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Data(c, http.StatusCreated, res)
}

func (h *Handler) Delete(c *gin.Context) {
	isAdmin := auth.Role(c) == auth.RoleAdmin
	if err := h.svc.Delete(c.Request.Context(), auth.UserID(c), isAdmin, c.Param("review_id")); err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Data(c, http.StatusOK, gin.H{"deleted": true})
}
