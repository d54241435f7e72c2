package http

import (
	"net/http"

	"telehealth-backend/internal/delivery/http/handler"
	"telehealth-backend/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router              *mux.Router
	authHandler         *handler.AuthHandler
	doctorHandler       *handler.DoctorHandler
	appointmentHandler  *handler.AppointmentHandler
	prescriptionHandler *handler.PrescriptionHandler
	chatHandler         *handler.ChatHandler
	notificationHandler *handler.NotificationHandler
	adminHandler        *handler.AdminHandler
	wsHandler           *handler.WSHandler
	authMiddleware      *middleware.AuthMiddleware
	corsMiddleware      *middleware.CORSMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	doctorHandler *handler.DoctorHandler,
	appointmentHandler *handler.AppointmentHandler,
	prescriptionHandler *handler.PrescriptionHandler,
	chatHandler *handler.ChatHandler,
	notificationHandler *handler.NotificationHandler,
	adminHandler *handler.AdminHandler,
	wsHandler *handler.WSHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:              mux.NewRouter(),
		authHandler:         authHandler,
		doctorHandler:       doctorHandler,
		appointmentHandler:  appointmentHandler,
		prescriptionHandler: prescriptionHandler,
		chatHandler:         chatHandler,
		notificationHandler: notificationHandler,
		adminHandler:        adminHandler,
		wsHandler:           wsHandler,
		authMiddleware:      authMiddleware,
		corsMiddleware:      corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register/patient", r.authHandler.RegisterPatient).Methods(http.MethodPost)
	auth.HandleFunc("/register/doctor", r.authHandler.RegisterDoctor).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.Me).Methods(http.MethodGet)

	// Public doctor directory
	api.HandleFunc("/doctors", r.doctorHandler.ListDoctors).Methods(http.MethodGet)

	// Doctor self-service (before /doctors/{id} so "me" doesn't match as an ID)
	doctorsMe := api.PathPrefix("/doctors/me").Subrouter()
	doctorsMe.Use(r.authMiddleware.Authenticate)
	doctorsMe.Use(middleware.RequireDoctor)
	doctorsMe.HandleFunc("", r.doctorHandler.GetMyProfile).Methods(http.MethodGet)
	doctorsMe.HandleFunc("", r.doctorHandler.UpdateMyProfile).Methods(http.MethodPut)

	api.HandleFunc("/doctors/{id}", r.doctorHandler.GetDoctor).Methods(http.MethodGet)

	// Appointments (protected)
	appointments := api.PathPrefix("/appointments").Subrouter()
	appointments.Use(r.authMiddleware.Authenticate)
	appointments.HandleFunc("", r.appointmentHandler.Create).Methods(http.MethodPost)
	appointments.HandleFunc("", r.appointmentHandler.GetMy).Methods(http.MethodGet)
	appointments.HandleFunc("/{id}", r.appointmentHandler.Get).Methods(http.MethodGet)
	appointments.HandleFunc("/{id}", r.appointmentHandler.Cancel).Methods(http.MethodDelete)
	appointments.HandleFunc("/{id}/status", r.appointmentHandler.UpdateStatus).Methods(http.MethodPatch)
	appointments.HandleFunc("/{id}/messages", r.chatHandler.GetMessages).Methods(http.MethodGet)

	// Payments (protected)
	payments := api.PathPrefix("/payments").Subrouter()
	payments.Use(r.authMiddleware.Authenticate)
	payments.HandleFunc("/intent", r.appointmentHandler.CreatePaymentIntent).Methods(http.MethodPost)
	payments.HandleFunc("/confirm", r.appointmentHandler.ConfirmPayment).Methods(http.MethodPost)

	// Prescriptions (protected; creation is doctor-only)
	prescriptions := api.PathPrefix("/prescriptions").Subrouter()
	prescriptions.Use(r.authMiddleware.Authenticate)
	prescriptions.HandleFunc("", r.prescriptionHandler.GetMy).Methods(http.MethodGet)
	prescriptions.HandleFunc("/{id}", r.prescriptionHandler.Get).Methods(http.MethodGet)

	prescriptionsDoctor := api.PathPrefix("/prescriptions").Subrouter()
	prescriptionsDoctor.Use(r.authMiddleware.Authenticate)
	prescriptionsDoctor.Use(middleware.RequireDoctor)
	prescriptionsDoctor.HandleFunc("", r.prescriptionHandler.Create).Methods(http.MethodPost)

	// Notifications (protected)
	notifications := api.PathPrefix("/notifications").Subrouter()
	notifications.Use(r.authMiddleware.Authenticate)
	notifications.HandleFunc("", r.notificationHandler.GetMy).Methods(http.MethodGet)
	notifications.HandleFunc("/{id}/read", r.notificationHandler.MarkRead).Methods(http.MethodPatch)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/doctors/pending", r.adminHandler.GetPendingDoctors).Methods(http.MethodGet)
	admin.HandleFunc("/doctors/{id}/decision", r.adminHandler.DecideDoctor).Methods(http.MethodPost)
	admin.HandleFunc("/stats", r.adminHandler.GetStats).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs", r.adminHandler.GetAuditLogs).Methods(http.MethodGet)

	// WebSocket endpoint; auth happens inside the handler via the token
	// query parameter
	r.router.HandleFunc("/ws/{user_id}", r.wsHandler.Serve).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
