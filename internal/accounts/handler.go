package accounts

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pustaka-backend/internal/platform/auth"
	"pustaka-backend/internal/platform/httpx"
)

type Handler struct{ svc *Service }

// RegisterPublicRoutes wires the unauthenticated auth endpoints.
func RegisterPublicRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.POST("/auth/login", h.Login)
	r.POST("/auth/register", h.Register)
}

// RegisterRoutes wires the authenticated user endpoints.
func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.GET("/auth/me", h.Me)
	r.PUT("/auth/profile", h.UpdateProfile)

	// any signed-in user; lets a student find a librarian to message
	r.GET("/contacts/admins", h.AdminContacts)

	// admin member management
	r.GET("/users", h.List)
	r.POST("/users", h.Create)
	r.GET("/users/:user_id", h.Get)
	r.PUT("/users/:user_id", h.Update)
	r.DELETE("/users/:user_id", h.Delete)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailWith(c, httpx.CodeInvalidArgument, "invalid json or missing required fields")
		return
	}
	res, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Data(c, http.StatusOK, res)
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailWith(c, httpx.CodeInvalidArgument, "invalid json or missing required fields")
		return
	}
	res, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Data(c, http.StatusCreated, res)
}

// Me is the session check every protected page runs before rendering.
func (h *Handler) Me(c *gin.Context) {
	res, err := h.svc.Get(c.Request.Context(), auth.UserID(c))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Data(c, http.StatusOK, res)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailWith(c, httpx.CodeInvalidArgument, "invalid json or missing required fields")
		return
	}
	res, err := h.svc.UpdateMember(c.Request.Context(), auth.UserID(c), req)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Data(c, http.StatusOK, res)
}

func (h *Handler) AdminContacts(c *gin.Context) {
	res, err := h.svc.AdminContacts(c.Request.Context())
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Data(c, http.StatusOK, res)
}

func (h *Handler) List(c *gin.Context) {
	f := UserFilter{
		Role:   c.Query("role"),
		Search: c.Query("search"),
		Limit:  httpx.ParseIntDefault(c.Query("limit"), 0),
		Offset: httpx.ParseIntDefault(c.Query("offset"), 0),
	}
	res, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Data(c, http.StatusOK, res)
}

func (h *Handler) Get(c *gin.Context) {
	res, err := h.svc.Get(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Data(c, http.StatusOK, res)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailWith(c, httpx.CodeInvalidArgument, "invalid json or missing required fields")
		return
	}
	res, err := h.svc.CreateMember(c.Request.Context(), req)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	c.Header("Location", "/users/"+res.ID)
	httpx.Data(c, http.StatusCreated, res)
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailWith(c, httpx.CodeInvalidArgument, "invalid json or missing required fields")
		return
	}
	res, err := h.svc.UpdateMember(c.Request.Context(), c.Param("user_id"), req)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Data(c, http.StatusOK, res)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.DeleteMember(c.Request.Context(), c.Param("user_id")); err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Data(c, http.StatusOK, gin.H{"deleted": true})
}
