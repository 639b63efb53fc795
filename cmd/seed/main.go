package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"beautybook/internal/calendar"
	"beautybook/internal/config"
	"beautybook/internal/database"
	"beautybook/internal/logger"
	"beautybook/internal/models"
	"beautybook/internal/repository"
	"beautybook/internal/service"

	"github.com/google/uuid"
)

var (
	clearExisting    = flag.Bool("clear", false, "Delete the catalog (and the bookings that reference it) before seeding")
	dryRun           = flag.Bool("dry-run", false, "Show what would be seeded without making changes")
	operatorEmail    = flag.String("operator-email", "operator@beautybook.local", "Email of the operator account to create (empty = skip)")
	operatorPassword = flag.String("operator-password", "", "Operator password (empty = generate one)")
)

type Seeder struct {
	db    *database.DB
	repos *repository.Repositories
	users *service.UserService
}

func main() {
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()

	log.Info("Starting catalog seeder...", "dry_run", *dryRun, "clear", *clearExisting)

	if *dryRun {
		describe()
		return
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	repos := repository.NewRepositories(db)
	services := service.NewServices(service.StoresFrom(repos), calendar.SystemClock{}, cfg.Booking)
	seeder := &Seeder{db: db, repos: repos, users: services.Users}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := seeder.Seed(ctx); err != nil {
		log.Error("Failed to seed catalog", "error", err)
		os.Exit(1)
	}

	log.Info("Seeding completed successfully!")
}

func describe() {
	log := logger.Get()
	for _, pkg := range demoPackages() {
		log.Info("[DRY RUN] Would create package", "name", pkg.Name)
	}
	for _, loc := range demoLocations() {
		log.Info("[DRY RUN] Would create location", "name", loc.Name, "transport_cost", loc.TransportCost.StringFixed(2))
	}
	if *operatorEmail != "" {
		log.Info("[DRY RUN] Would create operator", "email", *operatorEmail)
	}
}

func (s *Seeder) Seed(ctx context.Context) error {
	log := logger.Get()

	if *clearExisting {
		if err := s.clear(ctx); err != nil {
			return fmt.Errorf("failed to clear catalog: %w", err)
		}
	} else {
		count, err := s.existingPackages(ctx)
		if err != nil {
			return fmt.Errorf("failed to check existing packages: %w", err)
		}
		if count > 0 {
			log.Info("Catalog already seeded, skipping (use -clear to override)", "packages", count)
			return s.seedOperator(ctx)
		}
	}

	for _, pkg := range demoPackages() {
		if err := s.repos.Catalog.CreatePackage(ctx, &pkg); err != nil {
			return fmt.Errorf("failed to create package %q: %w", pkg.Name, err)
		}
		log.Info("Created package", "id", pkg.ID, "name", pkg.Name)
	}

	for _, loc := range demoLocations() {
		if err := s.repos.Catalog.CreateLocation(ctx, &loc); err != nil {
			return fmt.Errorf("failed to create location %q: %w", loc.Name, err)
		}
		log.Info("Created location", "id", loc.ID, "name", loc.Name)
	}

	return s.seedOperator(ctx)
}

func (s *Seeder) existingPackages(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM service_packages").Scan(&count)
	return count, err
}

func (s *Seeder) clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		"TRUNCATE service_packages, locations RESTART IDENTITY CASCADE")
	return err
}

func (s *Seeder) seedOperator(ctx context.Context) error {
	if *operatorEmail == "" {
		return nil
	}
	log := logger.Get()

	existing, err := s.repos.Users.GetByEmail(ctx, *operatorEmail)
	if err != nil {
		return fmt.Errorf("failed to look up operator: %w", err)
	}
	if existing != nil {
		log.Info("Operator already exists", "email", *operatorEmail)
		return nil
	}

	password := *operatorPassword
	generated := password == ""
	if generated {
		password = uuid.NewString()
	}

	user, err := s.users.Register(ctx, &models.RegisterUserRequest{
		Email:    *operatorEmail,
		Password: password,
		FullName: "Studio Operator",
	})
	if err != nil {
		return fmt.Errorf("failed to create operator: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, "UPDATE users SET is_operator = TRUE WHERE user_id = $1", user.UserID); err != nil {
		return fmt.Errorf("failed to grant operator role: %w", err)
	}

	if generated {
		log.Info("Created operator", "email", user.Email, "generated_password", password)
	} else {
		log.Info("Created operator", "email", user.Email)
	}
	return nil
}
