package books

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pustaka-backend/internal/platform/httpx"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.GET("/books", h.List)
	r.GET("/books/:book_id", h.Get)
	r.POST("/books", h.Create)
	r.PUT("/books/:book_id", h.Update)
	r.DELETE("/books/:book_id", h.Delete)
}

func (h *Handler) List(c *gin.Context) {
	f := Filter{
		CategoryID: c.Query("category_id"),
		Search:     c.Query("search"),
		Limit:      httpx.ParseIntDefault(c.Query("limit"), 0),
		Offset:     httpx.ParseIntDefault(c.Query("offset"), 0),
	}
	res, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Data(c, http.StatusOK, res)
}

func (h *Handler) Get(c *gin.Context) {
	res, err := h.svc.Get(c.Request.Context(), c.Param("book_id"))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Data(c, http.StatusOK, res)
}

func (h *Handler) Create(c *gin.Context) {
	var req UpsertBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailWith(c, httpx.CodeInvalidArgument, "invalid json or missing required fields")
		return
	}
	res, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	c.Header("Location", "/books/"+res.ID)
	httpx.Data(c, http.StatusCreated, res)
}

func (h *Handler) Update(c *gin.Context) {
	var req UpsertBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailWith(c, httpx.CodeInvalidArgument, "invalid json or missing required fields")
		return
	}
	res, err := h.svc.Update(c.Request.Context(), c.Param("book_id"), req)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Data(c, http.StatusOK, res)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("book_id")); err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Data(c, http.StatusOK, gin.H{"deleted": true})
}
