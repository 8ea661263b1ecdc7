package handlers

import (
	"net/http"

	"github.com/upascal/fast-api-backend-template/internal/utils"
)

type HealthHandler struct {
	Version string
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": h.Version,
	})
}
