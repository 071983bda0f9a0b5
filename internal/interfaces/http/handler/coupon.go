package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	promotionapp "github.com/shopcore/backend/internal/application/promotion"
)

// CouponHandler exposes the coupon pool and issuance endpoints
type CouponHandler struct {
	BaseHandler
	couponService *promotionapp.CouponService
}

// NewCouponHandler creates a new CouponHandler
func NewCouponHandler(couponService *promotionapp.CouponService) *CouponHandler {
	return &CouponHandler{couponService: couponService}
}

// IssueRequest identifies the user claiming a coupon
type IssueRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

// UseRequest identifies the owner redeeming an issued coupon
type UseRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

// Create handles POST /coupons
func (h *CouponHandler) Create(c *gin.Context) {
	var req promotionapp.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	coupon, err := h.couponService.CreateCoupon(c.Request.Context(), &req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, coupon)
}

// Get handles GET /coupons/:id
func (h *CouponHandler) Get(c *gin.Context) {
	couponID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid coupon ID format")
		return
	}

	coupon, err := h.couponService.GetCoupon(c.Request.Context(), couponID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, coupon)
}

// List handles GET /coupons
func (h *CouponHandler) List(c *gin.Context) {
	req, err := bindList(c)
	if err != nil {
		h.BadRequest(c, "Invalid pagination parameters")
		return
	}

	coupons, total, err := h.couponService.ListCoupons(c.Request.Context(), req.Offset(), req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, coupons, total, req.Page, req.PageSize)
}

// Issue handles POST /coupons/:id/issue. First come first served: once the
// pool is exhausted every caller gets QUOTA_EXHAUSTED, and a user who
// already holds this coupon gets ALREADY_ISSUED.
func (h *CouponHandler) Issue(c *gin.Context) {
	couponID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid coupon ID format")
		return
	}

	var req IssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	userCoupon, err := h.couponService.Issue(c.Request.Context(), couponID, req.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, userCoupon)
}

// Use handles POST /user-coupons/:id/use
func (h *CouponHandler) Use(c *gin.Context) {
	userCouponID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid user coupon ID format")
		return
	}

	var req UseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	userCoupon, err := h.couponService.Use(c.Request.Context(), userCouponID, req.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, userCoupon)
}

// ListUserCoupons handles GET /users/:userId/coupons
func (h *CouponHandler) ListUserCoupons(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "userId")
	if !ok {
		h.BadRequest(c, "Invalid user ID format")
		return
	}

	req, err := bindList(c)
	if err != nil {
		h.BadRequest(c, "Invalid pagination parameters")
		return
	}

	coupons, total, err := h.couponService.ListUserCoupons(c.Request.Context(), userID, req.Offset(), req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, coupons, total, req.Page, req.PageSize)
}
