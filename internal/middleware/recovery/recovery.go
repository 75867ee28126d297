package recovery

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"achpay/internal/log"
)

// Middleware recovers from handler panics, logs them with the request
// logger and answers 500 through onPanic.
func Middleware(onPanic func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.FromContext(r.Context()).ErrorContext(r.Context(), "Panic recovered",
					log.FieldError, fmt.Sprint(rec),
					log.FieldMethod, r.Method,
					log.FieldPath, r.URL.Path,
					"stack", string(debug.Stack()))

				if onPanic != nil {
					onPanic(w, r)
					return
				}
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
