package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/qehclinic/portal-backend/internal/config"
	"github.com/qehclinic/portal-backend/internal/database"
	"github.com/qehclinic/portal-backend/internal/users"
	"github.com/qehclinic/portal-backend/pkg/logger"
)

// setroles assigns portal roles out-of-band, keyed by e-mail. The new role
// takes effect the next time the user signs in and receives a fresh token.
//
//	setroles <master|officer|public> <email>
//	setroles batch <role> <file>       one e-mail per line, # comments allowed
func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if cfg.MongoDB.URI == "" {
		logger.Fatalf("MONGODB_URI is not configured")
	}

	ctx := context.Background()
	client, err := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
	if err != nil {
		logger.Fatalf("failed to connect to MongoDB: %v", err)
	}
	defer func() { _ = client.Disconnect(ctx) }()

	svc := users.NewService(users.NewMongoUserRepository(client.Database(cfg.MongoDB.Database).Collection("users")))

	switch {
	case len(os.Args) == 4 && os.Args[1] == "batch":
		runBatch(ctx, svc, os.Args[2], os.Args[3])
	case len(os.Args) == 3:
		role, email := os.Args[1], os.Args[2]
		if err := svc.AssignRole(ctx, email, role); err != nil {
			logger.Fatalf("failed to assign role: %v", err)
		}
		fmt.Printf("assigned role %q to %s (applies on next sign-in)\n", role, email)
	default:
		usage()
	}
}

func runBatch(ctx context.Context, svc *users.Service, role, path string) {
	f, err := os.Open(path)
	if err != nil {
		logger.Fatalf("failed to open %s: %v", path, err)
	}
	defer f.Close()

	var assigned, failed int
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		email := strings.TrimSpace(sc.Text())
		if email == "" || strings.HasPrefix(email, "#") {
			continue
		}
		if err := svc.AssignRole(ctx, email, role); err != nil {
			logger.Errorf("%s: %v", email, err)
			failed++
			continue
		}
		assigned++
	}
	if err := sc.Err(); err != nil {
		logger.Fatalf("failed to read %s: %v", path, err)
	}
	fmt.Printf("assigned role %q to %d user(s), %d failure(s)\n", role, assigned, failed)
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: setroles <master|officer|public> <email>")
	fmt.Fprintln(os.Stderr, "       setroles batch <role> <file>")
	os.Exit(2)
}
