// File: cmd/seed/main.go
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Shadow6402/ASTT-Esport/internal/config"
	pg "github.com/Shadow6402/ASTT-Esport/internal/infra/db/postgres"
)

// Applies the schema and bootstraps the first admin account. Safe to run
// repeatedly: the schema uses IF NOT EXISTS and the admin insert is keyed
// on the email.
func main() {
	ctx := context.Background()

	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	schemaPath := flag.String("schema", "deploy/postgres/init.sql", "path to schema file")
	adminEmail := flag.String("admin-email", "admin@astt-esport.fr", "bootstrap admin email")
	adminPassword := flag.String("admin-password", "", "bootstrap admin password (required)")
	flag.Parse()

	if *adminPassword == "" {
		log.Fatal("-admin-password is required")
	}

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 2)
	if err != nil {
		log.Fatalf("postgres connection failed: %v", err)
	}
	defer pool.Close()

	log.Println("[1/2] Applying schema...")
	schema, err := os.ReadFile(*schemaPath)
	if err != nil {
		log.Fatalf("read schema: %v", err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		log.Fatalf("apply schema: %v", err)
	}

	log.Println("[2/2] Creating admin account...")
	hash, err := bcrypt.GenerateFromPassword([]byte(*adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	tag, err := pool.Exec(ctx, `
		INSERT INTO users (id, first_name, last_name, email, password_hash, role, status, created_at)
		VALUES ($1, 'Admin', 'ASTT', $2, $3, 'admin', 'active', $4)
		ON CONFLICT (email) DO NOTHING;
	`, uuid.NewString(), *adminEmail, string(hash), time.Now())
	if err != nil {
		log.Fatalf("create admin: %v", err)
	}
	if tag.RowsAffected() == 0 {
		log.Printf("admin %s already exists, left untouched", *adminEmail)
	} else {
		log.Printf("admin %s created", *adminEmail)
	}

	log.Println("Seed complete.")
}
