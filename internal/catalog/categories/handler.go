package categories

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pustaka-backend/internal/platform/httpx"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.GET("/categories", h.List)
	r.GET("/categories/:category_id", h.Get)
	r.POST("/categories", h.Create)
	r.PUT("/categories/:category_id", h.Update)
	r.DELETE("/categories/:category_id", h.Delete)
}

func (h *Handler) List(c *gin.Context) {
	res, err := h.svc.List(c.Request.Context())
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Data(c, http.StatusOK, res)
}

func (h *Handler) Get(c *gin.Context) {
	res, err := h.svc.Get(c.Request.Context(), c.Param("category_id"))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Data(c, http.StatusOK, res)
}

func (h *Handler) Create(c *gin.Context) {
	var req UpsertCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailWith(c, httpx.CodeInvalidArgument, "invalid json or missing required fields")
		return
	}
	res, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	c.Header("Location", "/categories/"+res.ID)
	httpx.Data(c, http.StatusCreated, res)
}

func (h *Handler) Update(c *gin.Context) {
	var req UpsertCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailWith(c, httpx.CodeInvalidArgument, "invalid json or missing required fields")
		return
	}
	res, err := h.svc.Update(c.Request.Context(), c.Param("category_id"), req)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Data(c, http.StatusOK, res)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("category_id")); err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Data(c, http.StatusOK, gin.H{"deleted": true})
}
