package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/ray-remotestate/cafeteria/handlers"
	"github.com/ray-remotestate/cafeteria/middlewares"
	"github.com/ray-remotestate/cafeteria/models"
	"github.com/ray-remotestate/cafeteria/utils"
)

type Server struct {
	Router http.Handler
	server *http.Server
}

const (
	readTimeout       = 5 * time.Minute
	readHeaderTimeout = 30 * time.Second
	writeTimeout      = 5 * time.Minute
)

type Options struct {
	Addr           string
	Secret         []byte
	AllowedOrigins []string
}

func SetupRoutes(h *handlers.Handler, opts Options) *Server {
	router := mux.NewRouter()
	router.Use(
		middlewares.RequestID,
		middlewares.Logger,
		middlewares.Recoverer,
		middlewares.Metrics(h.Metrics),
		middlewares.NewAuthenticator(opts.Secret).Session,
	)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{"alive": true}`)
	}).Methods("GET")
	router.Handle("/metrics", h.Metrics.Handler()).Methods("GET")

	router.HandleFunc("/register", h.Register).Methods("POST")
	router.HandleFunc("/login", h.Login).Methods("POST")
	router.HandleFunc("/logout", h.Logout).Methods("POST")

	router.HandleFunc("/menu", h.ListMenu).Methods("GET")

	// any logged-in caller
	authed := router.NewRoute().Subrouter()
	authed.Use(middlewares.AuthMiddleware)

	authed.HandleFunc("/admin-request", h.CreateAdminRequest).Methods("POST")
	authed.HandleFunc("/orders", h.CreateOrder).Methods("POST")

	// admin only
	admin := router.NewRoute().Subrouter()
	admin.Use(middlewares.RoleBasedMiddleware(models.RoleAdmin))

	admin.HandleFunc("/admin-requests", h.ListAdminRequests).Methods("GET")
	admin.HandleFunc("/admin-requests/approve", h.ApproveAdminRequest).Methods("POST")
	admin.HandleFunc("/admin-requests/reject", h.RejectAdminRequest).Methods("POST")

	admin.HandleFunc("/menu", h.CreateMenuItem).Methods("POST")
	admin.HandleFunc("/menu/{id:[0-9]+}", h.UpdateMenuItem).Methods("PUT")
	admin.HandleFunc("/menu/{id:[0-9]+}", h.DeleteMenuItem).Methods("DELETE")

	admin.HandleFunc("/orders/admin", h.ListOrdersAdmin).Methods("GET")
	admin.HandleFunc("/orders/admin/summary", h.OrdersSummary).Methods("GET")
	admin.HandleFunc("/admin/users", h.ListUsers).Methods("GET")

	// mux skips router.Use middleware when nothing matches
	router.NotFoundHandler = unmatched(h, http.StatusNotFound, "not found")
	router.MethodNotAllowedHandler = unmatched(h, http.StatusMethodNotAllowed, "method not allowed")

	cors := gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins(opts.AllowedOrigins),
		gorillahandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorillahandlers.AllowedHeaders([]string{"Content-Type", "Authorization", middlewares.RequestIDHeader}),
		gorillahandlers.AllowCredentials(),
	)

	handler := cors(router)
	return &Server{
		Router: handler,
		server: &http.Server{
			Addr:              opts.Addr,
			Handler:           handler,
			ReadTimeout:       readTimeout,
			ReadHeaderTimeout: readHeaderTimeout,
			WriteTimeout:      writeTimeout,
		},
	}
}

func unmatched(h *handlers.Handler, status int, message string) http.Handler {
	fn := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondMessage(w, status, message)
	})
	return middlewares.RequestID(middlewares.Logger(middlewares.Metrics(h.Metrics)(fn)))
}

func (svr *Server) Run() error {
	if err := svr.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (svr *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return svr.server.Shutdown(ctx)
}
