// Command admintoken prints a signed admin bearer token for the API.
//
//	admintoken -sub ops -email ops@example.com -ttl 24h
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"nomineetracker/config"
	"nomineetracker/internal/adapters/auth"
	"nomineetracker/internal/domain"
)

func main() {
	sub := flag.String("sub", "admin", "token subject")
	mail := flag.String("email", "", "email claim")
	ttl := flag.Duration("ttl", 12*time.Hour, "token lifetime")
	flag.Parse()

	log.SetFlags(0)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *ttl <= 0 {
		log.Fatalf("ttl must be positive")
	}
	token, err := auth.NewJWTIssuer(cfg.JWTSecret).Issue(*sub, *mail, []string{domain.RoleAdmin}, *ttl)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}
	fmt.Fprintln(os.Stdout, token)
}
