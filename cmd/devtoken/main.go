// Command devtoken prints a bearer token for local testing, signed with
// JWT_SECRET.
//
//	go run ./cmd/devtoken -user 1 -role CUSTOMER
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/vivekyarra/moviesbyvivek/internal/config"
	"github.com/vivekyarra/moviesbyvivek/internal/middleware"
	"github.com/vivekyarra/moviesbyvivek/internal/utils"
)

func main() {
	user := flag.Uint64("user", 1, "user id placed in the sub claim")
	role := flag.String("role", middleware.RoleCustomer, "CUSTOMER or ADMIN")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	config.LoadDotEnv()
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	tok, err := utils.NewAccessToken(secret, *user, *role, *ttl)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(tok.Token)
}
