package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/ronnyMakhuddin/PasarKalikatir/internal/domain"
)

// UserIDHeader carries the user id authenticated by the fronting gateway.
const UserIDHeader = "X-User-ID"

type identityKey struct{}

// IdentityFrom returns the caller identity attached by the identify middleware.
// Anonymous callers and users without a profile have an empty Role.
func IdentityFrom(ctx context.Context) domain.Identity {
	id, _ := ctx.Value(identityKey{}).(domain.Identity)
	return id
}

func (h *Handler) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(UserIDHeader)
		if userID == "" {
			next.ServeHTTP(w, r)
			return
		}

		id, err := h.svc.Accounts.Resolve(r.Context(), userID)
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			id = domain.Identity{UserID: userID}
		} else if err != nil {
			h.writeError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey{}, id)))
	})
}

func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IdentityFrom(r.Context()).UserID == "" {
			writeMessage(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requireSeller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := IdentityFrom(r.Context())
		switch {
		case id.UserID == "":
			writeMessage(w, http.StatusUnauthorized, "authentication required")
		case !id.IsVerifiedSeller():
			writeMessage(w, http.StatusForbidden, "verified seller account required")
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := IdentityFrom(r.Context())
		switch {
		case id.UserID == "":
			writeMessage(w, http.StatusUnauthorized, "authentication required")
		case !id.IsAdmin():
			writeMessage(w, http.StatusForbidden, "admin account required")
		default:
			next.ServeHTTP(w, r)
		}
	})
}
