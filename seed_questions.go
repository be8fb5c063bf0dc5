package main

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// defaultQuestions is the catalog installed on an empty database
var defaultQuestions = []string{
	"How satisfied is the merchant with the device overall?",
	"How reliable is the card reader (chip, swipe and contactless)?",
	"How fast are transactions processed at peak hours?",
	"How clear and readable is the screen in store lighting?",
	"How long does the battery last through a trading day?",
	"How stable is the network connection (Wi-Fi or mobile data)?",
	"How good is the receipt printer's print quality?",
	"How easy is the device for cashiers to learn and use?",
	"How well has the device held up to daily wear?",
	"How satisfied is the merchant with support and servicing?",
}

// seedQuestions inserts the default catalog when the questions table is empty
func seedQuestions(dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM questions").Scan(&count); err != nil {
		return fmt.Errorf("failed to count questions: %w", err)
	}
	if count > 0 {
		log.Printf("✅ Question catalog already has %d entries, skipping seed", count)
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO questions (uuid, description, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (description) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, description := range defaultQuestions {
		if _, err := stmt.Exec(uuid.NewString(), description); err != nil {
			return fmt.Errorf("failed to insert question %q: %w", description, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit questions: %w", err)
	}

	log.Printf("✅ Seeded %d default questions", len(defaultQuestions))
	return nil
}
