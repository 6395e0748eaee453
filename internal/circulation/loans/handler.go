package loans

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pustaka-backend/internal/circulation/loanview"
	"pustaka-backend/internal/platform/auth"
	"pustaka-backend/internal/platform/httpx"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// student
	r.POST("/loans", h.Create)
	r.GET("/loans/mine", h.ListMine)
	r.POST("/loans/:loan_id/return", h.RequestReturn)

	// admin
	r.GET("/loans", h.List)
	r.GET("/loans/report", h.Report)
	r.GET("/loans/:loan_id", h.Get)
	r.POST("/loans/:loan_id/approve", h.Approve)
	r.POST("/loans/:loan_id/reject", h.Reject)
	r.POST("/loans/:loan_id/pickup", h.Pickup)
	r.POST("/loans/:loan_id/verify-return", h.VerifyReturn)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailWith(c, httpx.CodeInvalidArgument, "invalid json or missing required fields")
		return
	}
	res, err := h.svc.Create(c.Request.Context(), auth.UserID(c), req)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	c.Header("Location", "/loans/"+res.ID)
	httpx.Data(c, http.StatusCreated, res)
}

func (h *Handler) Get(c *gin.Context) {
	res, err := h.svc.Get(c.Request.Context(), c.Param("loan_id"))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Data(c, http.StatusOK, res)
}

func (h *Handler) List(c *gin.Context) {
	res, err := h.svc.List(c.Request.Context(), filterFromQuery(c, ""))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Data(c, http.StatusOK, res)
}

func (h *Handler) ListMine(c *gin.Context) {
	res, err := h.svc.List(c.Request.Context(), filterFromQuery(c, auth.UserID(c)))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Data(c, http.StatusOK, res)
}

func (h *Handler) Report(c *gin.Context) {
	res, err := h.svc.Report(c.Request.Context(), filterFromQuery(c, ""))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Data(c, http.StatusOK, res)
}

func (h *Handler) Approve(c *gin.Context) {
	h.decide(c, h.svc.Approve)
}

func (h *Handler) Reject(c *gin.Context) {
	h.decide(c, h.svc.Reject)
}

func (h *Handler) VerifyReturn(c *gin.Context) {
	h.decide(c, h.svc.VerifyReturn)
}

func (h *Handler) Pickup(c *gin.Context) {
	res, err := h.svc.Pickup(c.Request.Context(), c.Param("loan_id"))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Data(c, http.StatusOK, res)
}

func (h *Handler) RequestReturn(c *gin.Context) {
	var req ReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailWith(c, httpx.CodeInvalidArgument, "invalid json or missing required fields")
		return
	}
	res, err := h.svc.RequestReturn(c.Request.Context(), auth.UserID(c), c.Param("loan_id"), req)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Data(c, http.StatusOK, res)
}

// decide shares the body of approve/reject/verify: optional notes in,
// updated loan out.
func (h *Handler) decide(c *gin.Context, fn func(ctx context.Context, loanID string, req DecisionRequest) (*LoanResponse, error)) {
	var req DecisionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.FailWith(c, httpx.CodeInvalidArgument, "invalid json")
			return
		}
	}
	res, err := fn(c.Request.Context(), c.Param("loan_id"), req)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Data(c, http.StatusOK, res)
}

func filterFromQuery(c *gin.Context, userID string) Filter {
	f := Filter{
		UserID: userID,
		Limit:  httpx.ParseIntDefault(c.Query("limit"), 0),
		Offset: httpx.ParseIntDefault(c.Query("offset"), 0),
	}
	if v := c.Query("status"); v != "" {
		st := loanview.Status(v)
		if st.Valid() {
			f.Status = st
		}
	}
	if v := c.Query("from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			f.From = &t
		}
	}
	if v := c.Query("to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			end := t.AddDate(0, 0, 1)
			f.To = &end
		}
	}
	return f
}
