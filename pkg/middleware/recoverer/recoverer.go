package recoverer

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/vadimbarashkov/url-shorter/pkg/middleware"
)

const serverErrorMsg = "server error occurred"

// New returns middleware that turns a panic in next into a logged plain-text 500.
// http.ErrAbortHandler is re-raised so the server can abort the connection.
func New(logger *slog.Logger) middleware.Middleware {
	const op = "middleware.recoverer.New"

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

				logger.Error(
					"something went wrong, panic occurred",
					slog.Group(op, slog.Any("err", rec), slog.String("path", r.URL.Path)),
				)

				render.Status(r, http.StatusInternalServerError)
				render.PlainText(w, r, serverErrorMsg)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
