package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func MapHttpRoutes(r *chi.Mux, chatHandler ChatHandler, authHandler AuthHandler, authMiddleware *AuthMiddleware) {
	// Auth routes (public)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", http.HandlerFunc(authHandler.Login))
		r.Post("/refresh", http.HandlerFunc(authHandler.RefreshToken))
		r.Post("/logout", http.HandlerFunc(authHandler.Logout))

		// Protected auth routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Post("/logout-all", http.HandlerFunc(authHandler.LogoutAllDevices))
		})
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Route("/chat", func(r chi.Router) {
			r.Post("/messages", http.HandlerFunc(chatHandler.SendMessage))
			r.Get("/conversation", http.HandlerFunc(chatHandler.GetConversation))
			r.Get("/contacts", http.HandlerFunc(chatHandler.GetContacts))
			r.Get("/unread_count", http.HandlerFunc(chatHandler.GetUnreadCount))
			r.Post("/delete_conversation", http.HandlerFunc(chatHandler.DeleteConversation))
			r.Post("/delete_messages", http.HandlerFunc(chatHandler.DeleteMessages))
		})
	})
}
