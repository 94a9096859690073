package handlers

import (
	"errors"
	"net/http"

	"pingchain/config"
	"pingchain/platforms"
	"pingchain/types"
)

func (h *Handler) StartPlatformSync(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req types.PlatformSyncRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Platform == "" {
		writeError(w, "Missing platform", http.StatusBadRequest)
		return
	}

	if err := h.platforms.Start(r.Context(), uid, req.Platform, req.Config); err != nil {
		if errors.Is(err, platforms.ErrInvalidConfig) {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		config.Logger.WithField("platform", req.Platform).Error("Failed to start platform sync: ", err)
		writeError(w, "Failed to reach "+string(req.Platform), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, types.PlatformSyncResponse{Success: true, Platform: req.Platform, Running: true})
}

func (h *Handler) StopPlatformSync(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	platform := types.Platform(r.URL.Query().Get("platform"))
	if platform == "" {
		writeError(w, "Missing platform", http.StatusBadRequest)
		return
	}
	if err := h.platforms.Stop(uid, platform); err != nil {
		if errors.Is(err, platforms.ErrNotRunning) {
			writeError(w, err.Error(), http.StatusNotFound)
			return
		}
		fail(w, err, "platform sync")
		return
	}
	writeJSON(w, http.StatusOK, types.PlatformSyncResponse{Success: true, Platform: platform, Running: false})
}
