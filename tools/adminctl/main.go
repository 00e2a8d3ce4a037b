// Package main provisions the first administrator account. There is no
// default admin credential anywhere in the system: run this once against
// a fresh database instead.
//
// Usage:
//
//	adminctl -d "postgres://..." -username admin -email admin@example.com
//
// The password is taken from the ADMIN_PASSWORD environment variable and
// must satisfy the same policy as signup.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/atinyakov/LeafGuard/internal/db"
	"github.com/atinyakov/LeafGuard/internal/repository"
	"github.com/atinyakov/LeafGuard/internal/service"
)

func main() {
	var (
		dsn      string
		username string
		email    string
	)
	flag.StringVar(&dsn, "d", "", "db address")
	flag.StringVar(&username, "username", "", "admin username")
	flag.StringVar(&email, "email", "", "admin email")
	flag.Parse()

	password := os.Getenv("ADMIN_PASSWORD")

	if dsn == "" || username == "" || email == "" || password == "" {
		fmt.Fprintln(os.Stderr, "usage: adminctl -d <dsn> -username <name> -email <email>  (password via ADMIN_PASSWORD)")
		os.Exit(2)
	}

	postgresDB, err := db.InitPostgres(dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot init database: %v\n", err)
		os.Exit(1)
	}
	defer postgresDB.Close()

	// The token issuer is unused for signup.
	auth := service.NewAuthService(repository.NewPostgresUserRepository(postgresDB), nil)

	user, err := auth.Signup(context.Background(), username, email, password, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot create admin: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("admin %q created with id %d\n", user.Username, user.ID)
}
