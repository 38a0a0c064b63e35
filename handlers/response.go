package handlers

import (
	"encoding/json"
	"net/http"

	"dealMintAPI/services"
)

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithClaimError(w http.ResponseWriter, err *services.ClaimError) {
	respondWithJSON(w, claimErrorStatus(err.Code), map[string]string{
		"error": err.Message,
		"code":  string(err.Code),
	})
}

func claimErrorStatus(code services.ClaimErrorCode) int {
	switch code {
	case services.CodeDropNotFound:
		return http.StatusNotFound
	case services.CodeLimitReached, services.CodeDropSoldOut, services.CodeDealSupplyExceeded:
		return http.StatusConflict
	}
	return http.StatusBadRequest
}
