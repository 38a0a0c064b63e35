package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"dealMintAPI/internal/drop"
	"dealMintAPI/services"

	"go.uber.org/zap"
)

type CouponHandler struct {
	couponService *services.CouponService
	log           *zap.Logger
}

func NewCouponHandler(couponService *services.CouponService, log *zap.Logger) *CouponHandler {
	return &CouponHandler{
		couponService: couponService,
		log:           log.Named("coupon_handler"),
	}
}

func (h *CouponHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req drop.TransferCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.CouponID == "" || req.ToWallet == "" {
		respondWithError(w, http.StatusBadRequest, "Missing couponId or toWallet")
		return
	}

	coupon, err := h.couponService.Transfer(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCouponNotFound):
			respondWithError(w, http.StatusNotFound, "Coupon not found")
		case errors.Is(err, services.ErrCouponRedeemed):
			respondWithError(w, http.StatusBadRequest, "Coupon already redeemed")
		case errors.Is(err, services.ErrInvalidTransfer):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			h.log.Error("coupon transfer failed", zap.String("coupon_id", req.CouponID), zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Unexpected error")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, drop.CouponTransferResponse{Coupon: drop.NewCouponView(coupon)})
}
