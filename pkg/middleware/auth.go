package middleware

import (
	"context"
	"net/http"
	"time"

	"openfeed/pkg/common"
	"openfeed/pkg/logger"
	"openfeed/pkg/profile"
	"openfeed/pkg/sessions"
)

type (
	IProfileRepo interface {
		GetById(context.Context, string) (*profile.Profile, error)
	}
	ISessionManager interface {
		SessionFromToken(string) (*sessions.Session, error)
	}
	Auth struct {
		ProfileRepo    IProfileRepo
		SessionManager ISessionManager
	}
)

func NewAuthMiddleware(sm ISessionManager, pr IProfileRepo) *Auth {
	return &Auth{
		ProfileRepo:    pr,
		SessionManager: sm,
	}
}

// Middleware resolves the bearer token into a wallet session and puts it
// into the request context. Requests without a token pass through
// unauthenticated; handlers decide what that means for them.
func (auth Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")

		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		session, err := auth.SessionManager.SessionFromToken(authHeader)
		if err != nil {
			logger.Log(r.Context()).Errorf("can't get session from token: %v", err)
			next.ServeHTTP(w, r)
			return
		}

		if session.ProfileId != "" {
			repoCtx, repoCtxCancel := context.WithTimeout(r.Context(), 5*time.Second)
			defer repoCtxCancel()
			if _, err := auth.ProfileRepo.GetById(repoCtx, session.ProfileId); err != nil {
				logger.Log(r.Context()).Errorf("auth: can't get the profile from repo: %v", err)
				common.WriteMsg(w, "profile not found", http.StatusBadRequest)
				return
			}
		}

		ctx := context.WithValue(r.Context(), sessions.SessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
