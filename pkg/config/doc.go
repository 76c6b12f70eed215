// Package config loads typed configuration from environment variables.
//
// It wraps github.com/caarlos0/env/v11 for struct tag parsing and
// github.com/joho/godotenv for .env files. Every configuration type is
// parsed once per process and cached; Reset clears the cache in tests.
//
//	var cfg stripe.Config
//	config.MustLoad(&cfg)
package config
