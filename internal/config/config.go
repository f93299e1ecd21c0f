package config

import (
	"os"
	"strconv"
)

// Config carries every tunable the services need. It is built once in main
// and handed to constructors; nothing reads the environment after startup.
type Config struct {
	DatabaseURL string
	Port        string

	// Gate / pricing
	VisitorModeEnabled bool
	GraceMinutes       int
	RoundUp            bool
	GraceAutoClose     bool

	// Barrier controller (outbound, best effort)
	BarrierURL          string
	BarrierPulseSeconds int

	// Stripe
	StripeSecret        string
	StripeWebhookSecret string
	CheckoutSuccessURL  string
	CheckoutCancelURL   string

	JWTSecret string
}

func Load() Config {
	return Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Port:        getenv("PORT", "8080"),

		VisitorModeEnabled: getbool("VISITOR_MODE_ENABLED", true),
		GraceMinutes:       getint("GRACE_MINUTES", 10),
		RoundUp:            getbool("PRICING_ROUND_UP", true),
		GraceAutoClose:     getbool("GRACE_AUTO_CLOSE", true),

		BarrierURL:          os.Getenv("BARRIER_URL"),
		BarrierPulseSeconds: getint("BARRIER_PULSE_SECONDS", 5),

		StripeSecret:        os.Getenv("STRIPE_SECRET"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		CheckoutSuccessURL:  getenv("CHECKOUT_SUCCESS_URL", "http://localhost:3000/receipt?session_id={CHECKOUT_SESSION_ID}"),
		CheckoutCancelURL:   getenv("CHECKOUT_CANCEL_URL", "http://localhost:3000/payment/failed"),

		JWTSecret: os.Getenv("JWT_SECRET"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getint(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
