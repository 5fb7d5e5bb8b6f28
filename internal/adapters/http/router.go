package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shivamDefault/ChatLive/internal/application"
	"github.com/shivamDefault/ChatLive/internal/ports"
)

// Handler exposes the session view model over HTTP. One process serves one
// client session.
type Handler struct {
	service *application.Service
	blobs   ports.BlobReader
	ready   func(ctx context.Context) error
}

func NewHandler(service *application.Service, blobs ports.BlobReader, ready func(ctx context.Context) error) *Handler {
	return &Handler{service: service, blobs: blobs, ready: ready}
}

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(withRequestID, instrument)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/state", handler.state)
		r.Get("/state/changes", handler.stateChanges)
		r.Post("/notifications/consume", handler.consumeNotification)

		r.Post("/session/login", handler.login)
		r.Post("/session/signup", handler.signUp)
		r.Post("/session/logout", handler.logOut)

		r.Put("/profile", handler.updateProfile)
		r.Post("/profile/image", handler.uploadProfileImage)

		r.Post("/chats", handler.addChat)
		r.Post("/chats/close", handler.closeChat)
		r.Delete("/chats/{chatID}", handler.deleteChat)
		r.Post("/chats/{chatID}/open", handler.openChat)
		r.Post("/chats/{chatID}/messages", handler.sendMessage)

		r.Post("/statuses", handler.uploadStatus)
		r.Get("/statuses/{userID}", handler.statusesOf)

		r.Get("/blobs/{blobID}", handler.downloadBlob)
	})
	return r
}
