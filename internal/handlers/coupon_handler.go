package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nikolayk812/checkout-demo/internal/domain"
	"github.com/nikolayk812/checkout-demo/internal/service"
)

type CouponService interface {
	Create(ctx context.Context, actor domain.Actor, in service.CreateCouponInput) (domain.Coupon, error)
	Update(ctx context.Context, actor domain.Actor, couponID uuid.UUID, in service.UpdateCouponInput) (domain.Coupon, error)
	Delete(ctx context.Context, actor domain.Actor, couponID uuid.UUID) error
}

// CouponHandler serves coupon administration. Routes are expected behind
// middleware.RequireRole for admins.
type CouponHandler struct {
	coupons CouponService
	log     *slog.Logger
}

func NewCouponHandler(coupons CouponService, log *slog.Logger) *CouponHandler {
	return &CouponHandler{
		coupons: coupons,
		log:     log,
	}
}

type createCouponRequest struct {
	Code     string    `json:"code"`
	Amount   int       `json:"amount"`
	FromDate time.Time `json:"fromDate"`
	ToDate   time.Time `json:"toDate"`
}

type updateCouponRequest struct {
	Amount   *int       `json:"amount,omitempty"`
	FromDate *time.Time `json:"fromDate,omitempty"`
	ToDate   *time.Time `json:"toDate,omitempty"`
}

type couponEnvelope struct {
	Message string         `json:"message"`
	Coupon  couponResponse `json:"coupon"`
}

// CreateCoupon handles POST /coupons/create
func (h *CouponHandler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r, h.log)
	if !ok {
		return
	}

	var req createCouponRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}

	coupon, err := h.coupons.Create(r.Context(), actor, service.CreateCouponInput{
		Code:     req.Code,
		Amount:   req.Amount,
		FromDate: req.FromDate,
		ToDate:   req.ToDate,
	})
	if err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}

	WriteJSON(w, http.StatusCreated, couponEnvelope{Message: "Coupon created successfully", Coupon: mapCoupon(coupon)}, h.log)
}

// UpdateCoupon handles PATCH /coupons/update/{id}
func (h *CouponHandler) UpdateCoupon(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r, h.log)
	if !ok {
		return
	}

	couponID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid coupon id", h.log)
		return
	}

	var req updateCouponRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}

	coupon, err := h.coupons.Update(r.Context(), actor, couponID, service.UpdateCouponInput{
		Amount:   req.Amount,
		FromDate: req.FromDate,
		ToDate:   req.ToDate,
	})
	if err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, couponEnvelope{Message: "Coupon updated successfully", Coupon: mapCoupon(coupon)}, h.log)
}

// DeleteCoupon handles DELETE /coupons/delete/{id}
func (h *CouponHandler) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r, h.log)
	if !ok {
		return
	}

	couponID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid coupon id", h.log)
		return
	}

	if err := h.coupons.Delete(r.Context(), actor, couponID); err != nil {
		writeServiceError(w, r, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, messageResponse{Message: "Coupon deleted successfully"}, h.log)
}
