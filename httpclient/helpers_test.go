/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package httpclient

import (
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"
)

const respHeaderPrefix = "X-Echo-"

// newEchoServer returns a test server that copies the given request headers into the response
// (with respHeaderPrefix) and replies with the status taken from the URL path.
func newEchoServer(headers ...string) *httptest.Server {
	router := chi.NewRouter()
	echo := func(status int) http.HandlerFunc {
		return func(rw http.ResponseWriter, r *http.Request) {
			for _, h := range headers {
				rw.Header().Set(respHeaderPrefix+h, r.Header.Get(h))
			}
			rw.WriteHeader(status)
		}
	}
	router.Get("/", echo(http.StatusNoContent))
	router.Post("/", echo(http.StatusNoContent))
	router.Get("/fail", echo(http.StatusServiceUnavailable))
	return httptest.NewServer(router)
}
