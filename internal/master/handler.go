package master

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pustaka-backend/internal/platform/httpx"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.GET("/majors", h.list(KindMajor))
	r.POST("/majors", h.create(KindMajor))
	r.PUT("/majors/:entry_id", h.update(KindMajor))
	r.DELETE("/majors/:entry_id", h.remove(KindMajor))

	r.GET("/classes", h.list(KindClass))
	r.POST("/classes", h.create(KindClass))
	r.PUT("/classes/:entry_id", h.update(KindClass))
	r.DELETE("/classes/:entry_id", h.remove(KindClass))
}

func (h *Handler) list(k Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := h.svc.List(c.Request.Context(), k)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.Data(c, http.StatusOK, res)
	}
}

func (h *Handler) create(k Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpsertRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.FailWith(c, httpx.CodeInvalidArgument, "invalid json or missing required fields")
			return
		}
		res, err := h.svc.Create(c.Request.Context(), k, req)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.Data(c, http.StatusCreated, res)
	}
}

func (h *Handler) update(k Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpsertRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.FailWith(c, httpx.CodeInvalidArgument, "invalid json or missing required fields")
			return
		}
		res, err := h.svc.Update(c.Request.Context(), k, c.Param("entry_id"), req)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.Data(c, http.StatusOK, res)
	}
}

func (h *Handler) remove(k Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.svc.Delete(c.Request.Context(), k, c.Param("entry_id")); err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.Data(c, http.StatusOK, gin.H{"deleted": true})
	}
}
