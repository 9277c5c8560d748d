// Command token mints a development bearer token for a given account address.
//
//	JWT_SECRET=... go run ./cmd/token -address 0xabc -ttl 24h
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"blockpay/internal/middleware"
)

func main() {
	var (
		addressFlag string
		ttlFlag     time.Duration
	)

	flag.StringVar(&addressFlag, "address", "", "account address the token acts as")
	flag.DurationVar(&ttlFlag, "ttl", time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()

	address := strings.TrimSpace(addressFlag)
	if address == "" {
		exitWithError(errors.New("-address is required"))
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		exitWithError(errors.New("JWT_SECRET must be set"))
	}

	token, err := middleware.SignJWT(secret, middleware.TokenClaims{
		Sub: address,
		Exp: time.Now().Add(ttlFlag).Unix(),
	})
	if err != nil {
		exitWithError(err)
	}

	fmt.Println(token)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
