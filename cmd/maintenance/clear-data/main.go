package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/stayease/hotel-booking-backend/internal/config"
	"github.com/stayease/hotel-booking-backend/internal/database"
)

// Order matters only for the report; TRUNCATE ... CASCADE handles references
var bookingTables = []string{"payment_slips", "bookings"}
var inventoryTables = []string{"room_units", "room_types", "packages"}

func main() {
	var dbURLFlag string
	var all bool
	flag.StringVar(&dbURLFlag, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flag.BoolVar(&all, "all", false, "also clear room inventory and packages (users are always kept)")
	flag.Parse()

	_ = godotenv.Load()

	dbURL := dbURLFlag
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" || dbURL == config.MemoryDatabaseURL {
		log.Fatal("DATABASE_URL must point at PostgreSQL (or pass -database-url)")
	}

	db, err := database.NewConnection(config.DatabaseConfig{
		URL:                dbURL,
		Driver:             "pgx",
		MaxConnections:     2,
		MaxIdleConnections: 1,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	tables := bookingTables
	if all {
		tables = append(append([]string{}, bookingTables...), inventoryTables...)
	}

	fmt.Printf("Connected to database. Truncating %s...\n", strings.Join(tables, ", "))
	if _, err := db.Exec("TRUNCATE TABLE " + strings.Join(tables, ", ") + " CASCADE"); err != nil {
		log.Fatalf("failed to truncate tables: %v", err)
	}

	fmt.Println("Post-clear row counts:")
	for _, t := range tables {
		var count int
		if err := db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", t)).Scan(&count); err != nil {
			fmt.Printf("  %s: error: %v\n", t, err)
			continue
		}
		fmt.Printf("  %s: %d\n", t, count)
	}
}
