// Command tokenctl mints HS256 bearer tokens accepted by /api/process-result.
// The secret is read from JWT_SECRET (or .env) unless -secret is given.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"studioapi/internal/auth"
)

func main() {
	var (
		sub    auth.TokenSubject
		secret string
		ttl    = auth.DefaultTokenTTL
	)
	flag.Int64Var(&sub.ID, "id", 0, "user id (required)")
	flag.StringVar(&sub.Email, "email", "", "user email")
	flag.StringVar(&sub.Role, "role", "user", "user role")
	flag.StringVar(&sub.Name, "name", "", "display name")
	flag.StringVar(&secret, "secret", "", "signing secret (defaults to $JWT_SECRET)")
	flag.DurationVar(&ttl, "ttl", ttl, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()
	if secret == "" {
		secret = os.Getenv("JWT_SECRET")
	}
	if sub.ID <= 0 {
		fmt.Fprintln(os.Stderr, "tokenctl: -id is required")
		flag.Usage()
		os.Exit(2)
	}

	tok, err := auth.NewTokenIssuer(secret).Issue(sub, ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tokenctl: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
