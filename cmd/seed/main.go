// File: cmd/seed/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Randipa/lmcfinal/internal/config"
	"github.com/Randipa/lmcfinal/internal/domain/model"
	pg "github.com/Randipa/lmcfinal/internal/infra/db/postgres"
)

// schema is the full DDL. Everything is idempotent so the command can run on
// every deploy.
const schema = `
CREATE TABLE IF NOT EXISTS users (
  id            UUID PRIMARY KEY,
  first_name    TEXT NOT NULL,
  last_name     TEXT NOT NULL DEFAULT '',
  phone_number  TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  education     TEXT NOT NULL DEFAULT '',
  address       TEXT NOT NULL DEFAULT '',
  role          TEXT NOT NULL DEFAULT 'student',
  created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS courses (
  id          UUID PRIMARY KEY,
  title       TEXT NOT NULL,
  price_cents BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS payment_attempts (
  id           UUID PRIMARY KEY,
  order_id     TEXT NOT NULL UNIQUE,
  user_id      UUID NOT NULL REFERENCES users(id),
  course_id    UUID NOT NULL,
  amount_cents BIGINT NOT NULL,
  currency     TEXT NOT NULL,
  phone_number TEXT NOT NULL,
  status       TEXT NOT NULL DEFAULT 'pending',
  payment_id   TEXT,
  hash         TEXT NOT NULL DEFAULT '',
  meta         JSONB NOT NULL DEFAULT '{}'::jsonb,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  completed_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_payment_attempts_user ON payment_attempts(user_id);
CREATE INDEX IF NOT EXISTS idx_payment_attempts_payment_id ON payment_attempts(payment_id);

CREATE TABLE IF NOT EXISTS entitlements (
  id         UUID PRIMARY KEY,
  user_id    UUID NOT NULL REFERENCES users(id),
  course_id  UUID NOT NULL,
  source     TEXT NOT NULL DEFAULT '',
  granted_at TIMESTAMPTZ NOT NULL,
  expires_at TIMESTAMPTZ NOT NULL
);
-- The expiry is deterministic per billing cycle, so this key excludes two
-- live grants inserted by concurrent transactions (callback vs bank-transfer
-- approval) that each pass the NOT EXISTS check before the other commits.
-- It also serves the (user_id, course_id, expires_at) liveness lookups.
CREATE UNIQUE INDEX IF NOT EXISTS uq_entitlements_cycle ON entitlements(user_id, course_id, expires_at);
DROP INDEX IF EXISTS idx_entitlements_user_course;

CREATE TABLE IF NOT EXISTS inquiries (
  id           UUID PRIMARY KEY,
  user_id      UUID REFERENCES users(id),
  first_name   TEXT NOT NULL,
  last_name    TEXT NOT NULL DEFAULT '',
  phone_number TEXT NOT NULL,
  course_id    UUID NOT NULL,
  message      TEXT NOT NULL DEFAULT '',
  status       TEXT NOT NULL DEFAULT 'pending',
  created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_inquiries_phone ON inquiries(phone_number, course_id);
CREATE INDEX IF NOT EXISTS idx_inquiries_user ON inquiries(user_id, course_id);

CREATE TABLE IF NOT EXISTS bank_transfer_requests (
  id         UUID PRIMARY KEY,
  user_id    UUID NOT NULL REFERENCES users(id),
  course_id  UUID NOT NULL,
  slip_url   TEXT NOT NULL,
  status     TEXT NOT NULL DEFAULT 'pending',
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS shop_orders (
  id          UUID PRIMARY KEY,
  order_id    TEXT NOT NULL UNIQUE,
  user_id     UUID NOT NULL REFERENCES users(id),
  items       JSONB NOT NULL DEFAULT '[]'::jsonb,
  total_cents BIGINT NOT NULL,
  status      TEXT NOT NULL DEFAULT 'pending',
  payment_id  TEXT,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	adminPhone := flag.String("admin-phone", "0770000000", "phone number for the seeded admin account")
	adminPassword := flag.String("admin-password", "", "password for the seeded admin account (required on first run)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, schema); err != nil {
		log.Fatalf("apply schema: %v", err)
	}
	fmt.Println("schema applied")

	var admins int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role='admin'`).Scan(&admins); err != nil {
		log.Fatalf("count admins: %v", err)
	}
	if admins > 0 {
		fmt.Printf("%d admin account(s) already present. No changes.\n", admins)
		return
	}

	if *adminPassword == "" {
		log.Fatalf("no admin account found: pass -admin-password to create one")
	}
	phone, err := model.NormalizePhoneNumber(*adminPhone)
	if err != nil {
		log.Fatalf("admin phone: %v", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(*adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	adminID := uuid.NewString()
	_, err = pool.Exec(ctx, `
INSERT INTO users (id, first_name, last_name, phone_number, password_hash, role)
VALUES ($1, 'Admin', '', $2, $3, 'admin')`, adminID, phone, string(hash))
	if err != nil {
		log.Fatalf("create admin: %v", err)
	}
	fmt.Printf("seeded admin account (id=%s, phone=%s)\n", adminID, phone)

	courseID := uuid.NewString()
	_, err = pool.Exec(ctx, `
INSERT INTO courses (id, title, price_cents) VALUES ($1, 'Sample Course', 250000)
ON CONFLICT DO NOTHING`, courseID)
	if err != nil {
		log.Fatalf("seed course: %v", err)
	}
	fmt.Printf("seeded course (id=%s)\n", courseID)

	fmt.Println("Seeding complete.")
}
