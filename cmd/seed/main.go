package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hostelworks/hms-api/internal/models"
	"github.com/hostelworks/hms-api/internal/repository"
	"github.com/hostelworks/hms-api/pkg/config"
	"github.com/hostelworks/hms-api/pkg/database"
	"github.com/hostelworks/hms-api/pkg/logger"
)

// Seeds the bootstrap Admin account. Safe to run repeatedly: an existing
// account with the given email is left untouched.
func main() {
	email := flag.String("email", "admin@hostel.local", "admin email")
	password := flag.String("password", "", "admin password (required)")
	name := flag.String("name", "Hostel Administrator", "admin full name")
	flag.Parse()

	if *password == "" {
		log.Fatal("usage: seed -email <email> -password <password> [-name <full name>]")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users := repository.NewUserRepository(db)

	if existing, err := users.FindByEmail(ctx, *email); err == nil {
		logr.Sugar().Infow("admin account already exists", "id", existing.ID, "email", existing.Email)
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		logr.Sugar().Fatalw("failed to check for existing admin", "error", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		logr.Sugar().Fatalw("failed to hash password", "error", err)
	}

	admin := &models.User{
		Email:        *email,
		PasswordHash: string(hash),
		FullName:     *name,
		Role:         models.RoleAdmin,
		Active:       true,
	}
	if err := users.Create(ctx, admin); err != nil {
		logr.Sugar().Fatalw("failed to create admin account", "error", err)
	}

	logr.Sugar().Infow("admin account created", "id", admin.ID, "email", admin.Email)
}
