package main

import (
	"flag"
	"log/slog"
	"os"

	"beautybook/internal/logger"
	"beautybook/internal/validation"
)

func main() {
	var cfg validation.SmokeConfig
	flag.StringVar(&cfg.BaseURL, "url", "http://localhost:8081", "Base URL for API validation")
	flag.Int64Var(&cfg.PackageID, "package", 1, "Service package to book")
	flag.Int64Var(&cfg.LocationID, "location", 1, "Location to book")
	flag.StringVar(&cfg.OperatorEmail, "operator-email", "", "Operator login for admin checks (empty = skip)")
	flag.StringVar(&cfg.OperatorPassword, "operator-password", os.Getenv("OPERATOR_PASSWORD"), "Operator password")
	flag.Parse()

	logger.Init("info", "text")

	if err := validation.NewSmokeValidator(cfg, nil).ValidateAll(); err != nil {
		logger.Fatal("Validation failed", "error", err)
	}

	slog.Info("Validation passed")
}
