// Package site serves the embedded landing page.
package site

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
)

// Register attaches the landing page and its assets to router.
func Register(_ context.Context, router *mux.Router) {
	if router == nil {
		panic("router is nil")
	}
	files := http.FileServer(FS())
	router.Handle("/", files).Methods(http.MethodGet)
	router.PathPrefix("/assets/").Handler(files).Methods(http.MethodGet)
}
