package app

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/petpassport/petpassport/pkg/user"
	log "github.com/sirupsen/logrus"
)

const userIdHeader = "X-User-Id"

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, deps *Dependencies) {
	r.Use(requestLogger)
	r.Use(currentUser(deps.UserService))
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		log.Tracef("%s %s", req.Method, req.URL.Path)
		next.ServeHTTP(w, req)
	})
}

// currentUser propagates the X-User-Id header into the request context. Public share views and
// user registration are served without it.
func currentUser(users user.Service) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if isAnonymous(req) {
				next.ServeHTTP(w, req)
				return
			}

			uid := req.Header.Get(userIdHeader)
			if uid == "" {
				http.Error(w, "missing "+userIdHeader+" header", http.StatusUnauthorized)
				return
			}
			ctx := req.Context()
			u, err := users.GetUserByUid(ctx, uid)
			if err != nil {
				if errors.Is(err, user.ErrUserNotFound) {
					log.Debugf("user not found: %s", uid)
					http.Error(w, "user not found", http.StatusForbidden)
				} else {
					log.Errorf("failed to get user: %v", err)
					http.Error(w, err.Error(), http.StatusInternalServerError)
				}
				return
			}
			log.Tracef("user found: %s", u.Uid)
			next.ServeHTTP(w, req.WithContext(user.WithUser(ctx, u)))
		})
	}
}

func isAnonymous(req *http.Request) bool {
	if strings.HasPrefix(req.URL.Path, "/api/public/") {
		return true
	}
	return req.Method == http.MethodPost && req.URL.Path == "/api/user"
}
