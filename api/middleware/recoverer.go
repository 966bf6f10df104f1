package middleware

import (
	"fmt"
	"net/http"

	"github.com/hamperhouse/storefront-backend/api/responses"
	pkgerrors "github.com/hamperhouse/storefront-backend/pkg/errors"
	"github.com/hamperhouse/storefront-backend/pkg/logger"
)

// Recoverer turns a handler panic into a 500 envelope. When the handler had
// already started the response only the log line is written.
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w}
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}
				err := pkgerrors.Wrap(pkgerrors.CodeInternal, fmt.Errorf("panic: %v", v), "panic")
				ctx := r.Context()
				if rec.status != 0 {
					if logg != nil {
						ctx = logg.WithFields(ctx, map[string]any{"panic": v, "status_sent": rec.status, "path": r.URL.Path})
						logg.Error(ctx, "panic.recovered", err)
					}
					return
				}
				if logg != nil {
					ctx = logg.WithFields(ctx, map[string]any{"panic": v, "path": r.URL.Path})
				}
				responses.WriteError(ctx, logg, w, err)
			}()
			next.ServeHTTP(rec, r)
		})
	}
}
