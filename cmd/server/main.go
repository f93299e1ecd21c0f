package main

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/stripe/stripe-go/v82"

	"petroffparking/internal/api"
	"petroffparking/internal/auth"
	"petroffparking/internal/config"
	"petroffparking/internal/repository"
	"petroffparking/internal/service"
)

func main() {
	godotenv.Load()
	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	database, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := database.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	stripe.Key = cfg.StripeSecret

	driverRepo := repository.NewDriverRepository(database)
	vehicleRepo := repository.NewVehicleRepository(database)
	sessionRepo := repository.NewSessionRepository(database)
	planRepo := repository.NewPlanRepository(database)
	subscriptionRepo := repository.NewSubscriptionRepository(database)
	paymentRepo := repository.NewPaymentRepository(database)
	auditRepo := repository.NewAuditRepository(database)
	adminAuthRepo := repository.NewAdminAuthRepository(database)
	jobRepo := repository.NewJobRepository(database)

	barrier := service.NewBarrierClient(cfg.BarrierURL)
	stripeSvc := service.NewStripeService(cfg.CheckoutSuccessURL, cfg.CheckoutCancelURL)
	senderSvc := service.NewSenderService()

	gateSvc := service.NewGateService(cfg, vehicleRepo, driverRepo, sessionRepo, subscriptionRepo, planRepo, barrier)
	sessionSvc := service.NewSessionService(sessionRepo, vehicleRepo)
	planSvc := service.NewPlanService(planRepo)
	subscriptionSvc := service.NewSubscriptionService(subscriptionRepo, vehicleRepo, planRepo)
	paymentSvc := service.NewPaymentService(paymentRepo, sessionRepo, subscriptionRepo, planRepo, subscriptionSvc, stripeSvc)
	accessListSvc := service.NewAccessListService(vehicleRepo, subscriptionRepo, auditRepo)
	vehicleSvc := service.NewVehicleService(vehicleRepo, driverRepo)
	driverSvc := service.NewDriverService(driverRepo)
	adminAuthSvc := service.NewAdminAuthService(adminAuthRepo, cfg.JWTSecret)
	jobSvc := service.NewJobService(jobRepo)

	scanHandler := api.NewScanHandler(gateSvc)
	sessionHandler := api.NewSessionHandler(sessionSvc)
	planHandler := api.NewPlanHandler(planSvc)
	subscriptionHandler := api.NewSubscriptionHandler(subscriptionSvc, paymentSvc, vehicleSvc, driverSvc, senderSvc)
	paymentHandler := api.NewPaymentHandler(paymentSvc)
	vehicleHandler := api.NewVehicleHandler(vehicleSvc, accessListSvc)
	driverHandler := api.NewDriverHandler(driverSvc)
	receiptHandler := api.NewReceiptHandler(sessionSvc, vehicleSvc, planSvc, senderSvc)
	adminAuthHandler := api.NewAdminAuthHandler(adminAuthSvc)
	stripeWebhookHandler := api.NewStripeWebhookHandler(cfg.StripeWebhookSecret, paymentSvc)

	r := mux.NewRouter()

	// Gate endpoints (called by the camera/barrier controllers)
	r.HandleFunc("/api/scans/entry", scanHandler.EntryScan).Methods("POST")
	r.HandleFunc("/api/scans/exit", scanHandler.ExitScan).Methods("POST")

	// Public endpoints
	r.HandleFunc("/api/plans", planHandler.List).Methods("GET")
	r.HandleFunc("/api/sessions/{id}/checkout", paymentHandler.SessionCheckout).Methods("POST")
	r.HandleFunc("/api/sessions/{id}/receipt", receiptHandler.SendReceipt).Methods("POST")
	r.HandleFunc("/api/stripe/webhook", stripeWebhookHandler.HandleWebhook).Methods("POST")

	r.HandleFunc("/api/admin/login", adminAuthHandler.Login).Methods("POST")

	// Admin endpoints (protected)
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.AdminAuthMiddleware(cfg.JWTSecret))
	admin.HandleFunc("/admins", adminAuthHandler.CreateAdmin).Methods("POST")

	admin.HandleFunc("/drivers", driverHandler.Create).Methods("POST")
	admin.HandleFunc("/drivers", driverHandler.List).Methods("GET")
	admin.HandleFunc("/drivers/{id}", driverHandler.Get).Methods("GET")
	admin.HandleFunc("/drivers/{id}/vehicles", vehicleHandler.ListForDriver).Methods("GET")

	admin.HandleFunc("/vehicles", vehicleHandler.Register).Methods("POST")
	admin.HandleFunc("/vehicles/{id}", vehicleHandler.Get).Methods("GET")
	admin.HandleFunc("/vehicles/{id}/blacklist", vehicleHandler.Blacklist).Methods("POST")
	admin.HandleFunc("/vehicles/{id}/whitelist", vehicleHandler.Whitelist).Methods("POST")
	admin.HandleFunc("/vehicles/{id}/audit", vehicleHandler.AuditTrail).Methods("GET")
	admin.HandleFunc("/vehicles/{id}", vehicleHandler.DeleteBlacklisted).Methods("DELETE")
	admin.HandleFunc("/vehicles/{id}/sessions", sessionHandler.ListForVehicle).Methods("GET")
	admin.HandleFunc("/vehicles/{id}/subscriptions", subscriptionHandler.ListForVehicle).Methods("GET")

	admin.HandleFunc("/sessions", sessionHandler.Start).Methods("POST")
	admin.HandleFunc("/sessions/{id}", sessionHandler.Get).Methods("GET")
	admin.HandleFunc("/sessions/{id}/end", sessionHandler.End).Methods("POST")
	admin.HandleFunc("/sessions/{id}", sessionHandler.Delete).Methods("DELETE")

	admin.HandleFunc("/plans", planHandler.Create).Methods("POST")
	admin.HandleFunc("/plans/{id}", planHandler.Get).Methods("GET")
	admin.HandleFunc("/plans/{id}", planHandler.Update).Methods("PUT")
	admin.HandleFunc("/plans/{id}", planHandler.Delete).Methods("DELETE")

	admin.HandleFunc("/subscriptions", subscriptionHandler.Create).Methods("POST")
	admin.HandleFunc("/subscriptions/{id}", subscriptionHandler.Get).Methods("GET")
	admin.HandleFunc("/subscriptions/{id}/status", subscriptionHandler.SetStatus).Methods("PUT")
	admin.HandleFunc("/subscriptions/{id}/checkout", subscriptionHandler.Checkout).Methods("POST")
	admin.HandleFunc("/subscriptions/{id}", subscriptionHandler.Delete).Methods("DELETE")

	admin.HandleFunc("/payments", paymentHandler.Create).Methods("POST")
	admin.HandleFunc("/payments", paymentHandler.List).Methods("GET")
	admin.HandleFunc("/payments/{id}", paymentHandler.Get).Methods("GET")
	admin.HandleFunc("/payments/{id}/status", paymentHandler.SetStatus).Methods("PUT")
	admin.HandleFunc("/payments/{id}/refund", paymentHandler.Refund).Methods("POST")
	admin.HandleFunc("/payments/{id}", paymentHandler.Delete).Methods("DELETE")

	c := cron.New()
	if _, err := c.AddFunc("@every 10m", func() {
		if err := jobSvc.ExpireSubscriptions(); err != nil {
			log.Printf("Cron Job error: %v", err)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule subscription expiry job: %v", err)
	}
	if _, err := c.AddFunc("@hourly", func() {
		if err := jobSvc.PurgeStalePendingPayments(24 * time.Hour); err != nil {
			log.Printf("Cron Job error: %v", err)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule stale payment purge job: %v", err)
	}
	c.Start()
	defer c.Stop()

	corsHandler := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "Stripe-Signature"}),
	)

	log.Printf("Server running on port %s", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, corsHandler(handlers.LoggingHandler(log.Writer(), r))))
}
