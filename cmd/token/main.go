// Command main mints a development access token for a user id.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"hearth/internal/config"
	"hearth/internal/middleware"
)

func main() {
	userID := flag.String("user", "", "User id to put in the token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "Token lifetime")
	flag.Parse()

	if *userID == "" {
		log.Fatal("-user is required")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Env == "production" {
		log.Fatal("Refusing to mint tokens in production")
	}

	token, err := middleware.IssueToken(cfg.JWTSecret, cfg.JWTIssuer, *userID, *ttl)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}
	fmt.Println(token)
}
