package handlers

import (
	"crypto/subtle"
	"log"
	"net/http"
	"strings"

	"sprachtrainer/internal/service"
)

// AdminHandler exposes operational endpoints
type AdminHandler struct {
	syncService *service.SyncService
	adminToken  string
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(syncService *service.SyncService, adminToken string) *AdminHandler {
	return &AdminHandler{syncService: syncService, adminToken: adminToken}
}

// TriggerSync handles POST /admin/sync
func (h *AdminHandler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid admin token", nil)
		return
	}

	result, err := h.syncService.Run()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "SYNC_FAILED", "sync run failed", err)
		return
	}

	log.Printf("admin-triggered sync finished in %s", result.Duration)
	respondJSON(w, http.StatusOK, result)
}

// Healthz handles GET /healthz
func (h *AdminHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AdminHandler) authorized(r *http.Request) bool {
	if h.adminToken == "" {
		return false
	}
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.adminToken)) == 1
}
