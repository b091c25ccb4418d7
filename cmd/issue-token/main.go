// Command issue-token prints a bearer token for an owner, signed with the
// server's JWT settings.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"finanzas/internal/cli"
	"finanzas/internal/config"
	"finanzas/internal/identity"
	"finanzas/internal/log"
)

func main() {
	owner := flag.String("owner", "", "owner id the token authenticates")
	expiry := flag.Duration("expiry", 0, "token lifetime; defaults to JWT_EXPIRY")
	flag.Parse()

	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentAuth, (*config.Config).ValidateAuth)

	if *owner == "" {
		fmt.Fprintln(os.Stderr, "usage: issue-token -owner <id> [-expiry 24h]")
		os.Exit(2)
	}
	ttl := cfg.JWTExpiry
	if *expiry > 0 {
		ttl = *expiry
	}

	token, err := identity.NewIssuer(cfg.JWTSecret, cfg.JWTIssuer, ttl).Issue(*owner)
	if err != nil {
		logger.Error("Failed to issue token", log.FieldError, err, log.FieldOwnerID, *owner)
		os.Exit(1)
	}
	logger.Debug("Issued token", log.FieldOwnerID, *owner, "expires_at", time.Now().Add(ttl).Format(time.RFC3339))
	fmt.Println(token)
}
