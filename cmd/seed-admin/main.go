package main

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/enroll-leads-api/internal/models"
	"github.com/noah-isme/enroll-leads-api/internal/repository"
	"github.com/noah-isme/enroll-leads-api/pkg/config"
	"github.com/noah-isme/enroll-leads-api/pkg/database"
)

// Seeds the dashboard admin account. Admins are never created through the
// API, only here.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if cfg.Admin.Password == "" {
		log.Fatal("ADMIN_PASSWORD must be set to seed the admin account")
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Admin.Password), 12)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	repo := repository.NewAdminRepository(db)
	admin := &models.Admin{
		Email:        cfg.Admin.Email,
		PasswordHash: string(hash),
	}

	if err := repo.Upsert(context.Background(), admin); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}

	fmt.Printf("admin seeded: %s\n", cfg.Admin.Email)
	fmt.Println("change the password after first login")
}
