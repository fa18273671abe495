// Package main provides a one-shot CSV import tool.
//
// This imports a legacy library export directly into the store, without
// going through the API server.
//
// Usage:
//
//	DATA_PATH=~/ReadKeep/data go run ./cmd/import --owner usr_abc123 export.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/readkeepapp/readkeep-server/internal/service"
	"github.com/readkeepapp/readkeep-server/internal/store"
)

var ownerID = flag.String("owner", "", "User ID the imported books belong to (default: the root user)")

func main() {
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: import [--owner USER_ID] <export.csv>")
		os.Exit(1)
	}
	csvPath := flag.Arg(0)

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/ReadKeep/data")
	}
	dbPath := filepath.Join(dataPath, "store")

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	owner := *ownerID
	if owner == "" {
		owner, err = findRootUser(ctx, s)
		if err != nil {
			log.Fatalf("Failed to resolve owner: %v", err)
		}
	}

	f, err := os.Open(csvPath) //#nosec G304 -- path comes from the command line
	if err != nil {
		log.Fatalf("Failed to open export: %v", err)
	}
	defer f.Close()

	importer := service.NewImportService(s, nil)
	result, err := importer.ImportCSV(ctx, owner, f)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	fmt.Printf("Imported %d books, skipped %d rows\n", result.Imported, result.Skipped)
	for _, msg := range result.Errors {
		fmt.Printf("  %s\n", msg)
	}

	if result.Skipped > 0 {
		os.Exit(1)
	}
}

func findRootUser(ctx context.Context, s *store.Store) (string, error) {
	for user, err := range s.Users.List(ctx) {
		if err != nil {
			return "", err
		}
		if user.IsRoot {
			return user.ID, nil
		}
	}
	return "", fmt.Errorf("no root user found, pass --owner")
}
