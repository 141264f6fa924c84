// Command adduser creates an account directly against the database,
// bypassing the HTTP API. Useful for bootstrapping a fresh install.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/Mukasa-Matthew/expense-api/internal/auth"
	"github.com/Mukasa-Matthew/expense-api/internal/config"
	"github.com/Mukasa-Matthew/expense-api/internal/core"
	"github.com/Mukasa-Matthew/expense-api/internal/log"
	"github.com/Mukasa-Matthew/expense-api/internal/storage"
)

func main() {
	_ = godotenv.Load()

	email := flag.String("email", "", "account email")
	name := flag.String("name", "", "display name")
	currency := flag.String("currency", string(core.DefaultCurrency), "default currency code")
	flag.Parse()

	logger := log.New(log.Config{})
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "configuration invalid:", err)
		os.Exit(1)
	}

	reader := bufio.NewReader(os.Stdin)
	if *email == "" {
		*email = prompt(reader, "Email: ")
	}
	if *name == "" {
		*name = prompt(reader, "Name: ")
	}

	password, err := readPassword("Password: ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "read password:", err)
		os.Exit(1)
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "read password:", err)
		os.Exit(1)
	}
	if password != confirm {
		fmt.Fprintln(os.Stderr, "passwords do not match")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.DBPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	svc := auth.NewService(repo, cfg.SessionTTL, cfg.BcryptCost, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	u, err := svc.Register(ctx, *email, *name, password, core.Currency(*currency))
	if err != nil {
		fmt.Fprintln(os.Stderr, "create user:", err)
		os.Exit(1)
	}

	fmt.Printf("created user %d (%s)\n", u.ID, u.Email)
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func readPassword(label string) (string, error) {
	fmt.Print(label)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
