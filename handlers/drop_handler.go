package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dealMintAPI/internal/cache"
	"dealMintAPI/internal/drop"
	"dealMintAPI/services"

	"go.uber.org/zap"
)

type DropHandler struct {
	dropService  *services.DropService
	claimService *services.ClaimService
	cache        *cache.Cache
	log          *zap.Logger
}

func NewDropHandler(dropService *services.DropService, claimService *services.ClaimService, c *cache.Cache, log *zap.Logger) *DropHandler {
	return &DropHandler{
		dropService:  dropService,
		claimService: claimService,
		cache:        c,
		log:          log.Named("drop_handler"),
	}
}

func (h *DropHandler) GetToday(w http.ResponseWriter, r *http.Request) {
	if cached, ok := h.cache.Get(cache.KeyTodayDrop); ok {
		respondWithJSON(w, http.StatusOK, cached)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	active, err := h.dropService.GetActiveDrop(ctx)
	if err != nil {
		h.log.Error("failed to load today's drop", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Unexpected error")
		return
	}

	payload := drop.NewTodayResponse(active)
	h.cache.Set(cache.KeyTodayDrop, payload, cache.TodayDropTTL)

	respondWithJSON(w, http.StatusOK, payload)
}

func (h *DropHandler) Claim(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req drop.ClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.DropID == "" {
		respondWithError(w, http.StatusBadRequest, "Missing dropId")
		return
	}

	result, err := h.claimService.ClaimDrop(ctx, req)
	if err != nil {
		if ce, ok := services.AsClaimError(err); ok {
			respondWithClaimError(w, ce)
			return
		}
		h.log.Error("drop claim failed", zap.String("drop_id", req.DropID), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Unexpected error")
		return
	}

	respondWithJSON(w, http.StatusOK, drop.NewClaimResponse(result))
}

func (h *DropHandler) Verify(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ref := strings.TrimSpace(r.URL.Query().Get("ref"))
	if ref == "" {
		ref = strings.TrimSpace(r.URL.Query().Get("reference"))
	}
	if ref == "" {
		respondWithError(w, http.StatusBadRequest, "Missing ref")
		return
	}

	verification, err := h.dropService.VerifyClaim(ctx, ref)
	if err != nil {
		h.log.Error("verify failed", zap.String("reference", ref), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Unexpected error")
		return
	}
	if verification == nil {
		respondWithJSON(w, http.StatusNotFound, map[string]interface{}{
			"verified": false,
			"reason":   "Reference not found",
		})
		return
	}

	respondWithJSON(w, http.StatusOK, verification)
}

// GetLeaderboard serves the default sized board from cache; explicit limits
// always hit the store.
func (h *DropHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := services.DefaultLeaderboardLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondWithError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	useCache := limit == services.DefaultLeaderboardLimit
	if useCache {
		if cached, ok := h.cache.Get(cache.KeyLeaderboard); ok {
			respondWithJSON(w, http.StatusOK, cached)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	entries, err := h.dropService.GetDropLeaderboard(ctx, limit)
	if err != nil {
		h.log.Error("failed to load leaderboard", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Unexpected error")
		return
	}

	payload := drop.NewLeaderboardResponse(entries)
	if useCache {
		h.cache.Set(cache.KeyLeaderboard, payload, cache.LeaderboardTTL)
	}

	respondWithJSON(w, http.StatusOK, payload)
}
