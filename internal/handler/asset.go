package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/gabriel-vasile/mimetype"

	"github.com/gitchest/gitchest/internal/assets"
)

// AssetHandler serves files under the data directory for URLs produced by
// assets.Converter.
type AssetHandler struct {
	root   string
	logger *slog.Logger
}

// NewAssetHandler creates a new AssetHandler rooted at root.
func NewAssetHandler(root string, logger *slog.Logger) *AssetHandler {
	return &AssetHandler{root: root, logger: logger}
}

// Serve handles GET /asset/*.
func (h *AssetHandler) Serve(w http.ResponseWriter, r *http.Request) {
	path, err := assets.DecodeFileSrc(r.URL.EscapedPath())
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ASSET_PATH", "Invalid asset path")
		return
	}

	resolved, err := assets.Resolve(h.root, path)
	if err != nil {
		if errors.Is(err, assets.ErrOutsideRoot) {
			h.logger.Warn("asset_outside_root", "path", path)
			writeError(w, http.StatusForbidden, "ASSET_FORBIDDEN", "Asset is outside the data directory")
			return
		}
		writeError(w, http.StatusBadRequest, "INVALID_ASSET_PATH", "Invalid asset path")
		return
	}

	f, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeError(w, http.StatusNotFound, "ASSET_NOT_FOUND", "Asset not found")
			return
		}
		h.logger.Error("asset_open_failed", "path", resolved, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		writeError(w, http.StatusNotFound, "ASSET_NOT_FOUND", "Asset not found")
		return
	}

	mtype, err := mimetype.DetectReader(f)
	if err == nil {
		w.Header().Set("Content-Type", mtype.String())
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	w.Header().Set("Cache-Control", "private, max-age=300")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
