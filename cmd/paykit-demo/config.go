package main

import "time"

const (
	backendMemory   = "memory"
	backendStripe   = "stripe"
	backendRedis    = "redis"
	backendPostgres = "postgres"

	sessionsPaddle = "paddle"
)

type appConfig struct {
	Env         string        `env:"APP_ENV" envDefault:"development"`
	LogLevel    string        `env:"LOG_LEVEL"`
	Backend     string        `env:"BILLING_BACKEND" envDefault:"memory"`
	Sessions    string        `env:"BILLING_SESSIONS"` // empty uses the backend's own issuer
	TrialPeriod time.Duration `env:"DEMO_TRIAL_PERIOD" envDefault:"168h"`
	Email       string        `env:"DEMO_CUSTOMER_EMAIL" envDefault:"demo@example.com"`
	SuccessURL  string        `env:"DEMO_SUCCESS_URL" envDefault:"https://app.example.com/billing/success"`
	ReturnURL   string        `env:"DEMO_RETURN_URL" envDefault:"https://app.example.com/account"`
	MetricsAddr string        `env:"METRICS_ADDR"` // serve /metrics after the scenario when set
}
