package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/back-pedagogico/stories-backend/config"
	"github.com/back-pedagogico/stories-backend/internal/app/repository"
	"github.com/back-pedagogico/stories-backend/internal/app/service"
	"github.com/back-pedagogico/stories-backend/internal/db"
	"github.com/back-pedagogico/stories-backend/pkg/logger"
	"github.com/back-pedagogico/stories-backend/pkg/util"
)

var errPasswordMismatch = errors.New("passwords do not match")

func main() {
	name := flag.String("name", "", "admin name (login identifier)")
	password := flag.String("password", "", "admin password; prompted when empty")
	hashOnly := flag.Bool("hash-only", false, "print the bcrypt hash and exit without touching the database")
	flag.Parse()

	logger.Initialize(logger.Config{Level: "warn", Format: "console", EnableColor: true})

	pw := *password
	if pw == "" {
		var err error
		pw, err = promptPassword(bufio.NewReader(os.Stdin), os.Stdout)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
	}

	if *hashOnly {
		hash, err := util.HashPassword(pw)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	if strings.TrimSpace(*name) == "" {
		fmt.Fprintln(os.Stderr, "Error: -name is required unless -hash-only is set")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}
	conn, err := db.Connect(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", err)
	}
	defer db.Close(conn)

	if err := db.Migrate(conn); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	authService := service.NewAuthService(repository.NewAdminUserRepository(conn), cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry, nil)
	admin, err := authService.CreateAdmin(context.Background(), *name, pw)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	fmt.Printf("Admin %q created (id %d)\n", admin.Name, admin.ID)
}

// promptPassword asks for the password twice. Input is echoed.
func promptPassword(in *bufio.Reader, out io.Writer) (string, error) {
	read := func(prompt string) (string, error) {
		fmt.Fprint(out, prompt)
		line, err := in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	first, err := read("Password: ")
	if err != nil {
		return "", err
	}
	second, err := read("Repeat password: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errPasswordMismatch
	}
	if first == "" {
		return "", util.ErrEmptyPassword
	}
	return first, nil
}
