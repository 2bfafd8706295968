package httpapi

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/ronnyMakhuddin/PasarKalikatir/internal/domain"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/idempotency"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader lets a client retry a checkout without placing the
// order twice.
const IdempotencyKeyHeader = "Idempotency-Key"

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		h.logger.Info("🌐 HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// idempotent replays the stored response for a repeated Idempotency-Key sent
// by the same caller with the same body. Server errors are not stored so the
// client can retry them.
func (h *Handler) idempotent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" || h.svc.Idempotency == nil {
			next.ServeHTTP(w, r)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			h.writeError(w, r, domain.Validationf("unreadable request body: %v", err))
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		key = scopedKey(key, IdentityFrom(r.Context()).UserID, body)

		stored, ok, err := h.svc.Idempotency.Get(r.Context(), key)
		if err != nil {
			h.logger.Warn("⚠️ Idempotency lookup failed, processing request", zap.Error(err))
		} else if ok {
			w.Header().Set("Content-Type", stored.ContentType)
			w.Header().Set("Idempotent-Replayed", "true")
			w.WriteHeader(stored.Status)
			w.Write(stored.Body)
			return
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		var written bytes.Buffer
		ww.Tee(&written)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if status >= http.StatusInternalServerError {
			return
		}
		resp := idempotency.Response{
			Status:      status,
			ContentType: ww.Header().Get("Content-Type"),
			Body:        written.Bytes(),
		}
		if err := h.svc.Idempotency.Save(r.Context(), key, resp, h.svc.IdempotencyTTL); err != nil {
			h.logger.Warn("⚠️ Failed to store idempotent response", zap.Error(err))
		}
	})
}

// scopedKey binds a client key to the caller and the request body, so two
// clients picking the same key never see each other's response.
func scopedKey(key, userID string, body []byte) string {
	sum := sha256.Sum256(body)
	return key + ":" + userID + ":" + hex.EncodeToString(sum[:])
}
