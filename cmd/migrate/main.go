package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"forge-api/internal/shared"

	_ "github.com/go-sql-driver/mysql"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Migration completed successfully")
}

func run() error {
	dsn, err := shared.SafeEnv("DSN")
	if err != nil {
		return err
	}

	migrationPath := filepath.Join("migrations", "create_generation_table.sql")
	if len(os.Args) > 1 {
		migrationPath = os.Args[1]
	}
	migrationSQL, err := os.ReadFile(migrationPath)
	if err != nil {
		return fmt.Errorf("reading migration file %s: %w", migrationPath, err)
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}

	for _, stmt := range splitStatements(string(migrationSQL)) {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("executing statement %q: %w", stmt, err)
		}
	}
	return nil
}

// splitStatements breaks a migration file into executable statements,
// dropping comment lines and empty fragments.
func splitStatements(src string) []string {
	var out []string
	for _, stmt := range strings.Split(src, ";") {
		var lines []string
		for _, line := range strings.Split(stmt, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "--") {
				continue
			}
			lines = append(lines, line)
		}
		if len(lines) == 0 {
			continue
		}
		out = append(out, strings.Join(lines, "\n"))
	}
	return out
}
