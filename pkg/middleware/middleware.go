// Package middleware holds HTTP middleware shared by the delivery layers.
package middleware

import "net/http"

type Middleware = func(next http.Handler) http.Handler
