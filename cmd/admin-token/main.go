package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/member-directory/config"
	"github.com/oksasatya/member-directory/pkg/helpers"
)

// Mints an admin bearer token signed with ADMIN_JWT_SECRET, for office staff
// tooling and local development:
//
//	go run ./cmd/admin-token -email office@example.org
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	email := flag.String("email", "", "admin email placed in the token")
	ttl := flag.Duration("ttl", cfg.AdminTokenTTL, "token lifetime")
	flag.Parse()

	if strings.TrimSpace(*email) == "" {
		fmt.Fprintln(os.Stderr, "usage: admin-token -email <address> [-ttl 12h]")
		os.Exit(2)
	}
	if cfg.IsProduction() && cfg.AdminJWTSecret == "devadminsecret" {
		log.Fatal("ADMIN_JWT_SECRET must be set in production")
	}

	jwt := helpers.NewJWTManager(cfg.AdminJWTSecret, *ttl, cfg.AppName)
	token, exp, err := jwt.GenerateAdminToken(strings.TrimSpace(*email))
	if err != nil {
		log.Fatalf("sign token: %v", err)
	}
	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires %s\n", exp.UTC().Format(time.RFC3339))
}
