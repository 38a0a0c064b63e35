package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"dealMintAPI/internal/drop"
	"dealMintAPI/services"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type AdminHandler struct {
	dropService         *services.DropService
	confirmationService *services.ConfirmationService
	log                 *zap.Logger
}

func NewAdminHandler(dropService *services.DropService, confirmationService *services.ConfirmationService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{
		dropService:         dropService,
		confirmationService: confirmationService,
		log:                 log.Named("admin_handler"),
	}
}

func (h *AdminHandler) ConfirmClaims(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Minute)
	defer cancel()

	result, err := h.confirmationService.ConfirmPendingDropClaims(ctx)
	if err != nil {
		h.log.Error("confirmation sweep failed", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Unexpected error")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *AdminHandler) CreateDrop(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req drop.CreateDropRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.dropService.CreateDrop(ctx, req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidDrop) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error("failed to create drop", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Unexpected error")
		return
	}

	respondWithJSON(w, http.StatusCreated, drop.NewDropSummary(created))
}

func (h *AdminHandler) CancelDrop(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	dropID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid drop ID")
		return
	}

	if err := h.dropService.CancelDrop(ctx, dropID); err != nil {
		if ce, ok := services.AsClaimError(err); ok {
			respondWithClaimError(w, ce)
			return
		}
		h.log.Error("failed to cancel drop", zap.String("drop_id", dropID.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Unexpected error")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": string(drop.StatusCancelled)})
}
