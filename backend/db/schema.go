package db

import (
	"database/sql"
	"fmt"

	"github.com/apex/log"
)

// InitSchema creates the tables if they don't exist.
func InitSchema(dbc *sql.DB) error {
	log.Info("Initializing civicfix database schema...")

	usersTableSQL := `
	CREATE TABLE IF NOT EXISTS users(
		id CHAR(36) NOT NULL,
		username VARCHAR(64) NOT NULL,
		email VARCHAR(255) NOT NULL,
		phone_number VARCHAR(20),
		aadhar_number CHAR(12) NOT NULL,
		password_hash VARCHAR(100) NOT NULL,
		role ENUM('user', 'admin') NOT NULL DEFAULT 'user',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE INDEX username_index (username),
		UNIQUE INDEX email_index (email),
		UNIQUE INDEX aadhar_index (aadhar_number)
	)`
	if _, err := dbc.Exec(usersTableSQL); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	log.Info("Users table created/verified")

	reportsTableSQL := `
	CREATE TABLE IF NOT EXISTS reports(
		id CHAR(36) NOT NULL,
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		image MEDIUMTEXT NOT NULL,
		after_image MEDIUMTEXT,
		latitude DOUBLE NOT NULL,
		longitude DOUBLE NOT NULL,
		address VARCHAR(512),
		category ENUM('Water', 'Roads', 'Landslides', 'Electricity', 'Sanitation', 'Others') NOT NULL,
		status ENUM('pending', 'in-progress', 'resolved') NOT NULL DEFAULT 'pending',
		author_id CHAR(36) NOT NULL,
		tags JSON,
		report_count INT NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		in_progress_at TIMESTAMP NULL,
		resolved_at TIMESTAMP NULL,
		PRIMARY KEY (id),
		INDEX author_index (author_id),
		INDEX report_count_index (report_count),
		INDEX coords_index (latitude, longitude)
	)`
	if _, err := dbc.Exec(reportsTableSQL); err != nil {
		return fmt.Errorf("failed to create reports table: %w", err)
	}
	log.Info("Reports table created/verified")

	// One row per (report, user); the primary key is what makes vote
	// mutual exclusion and single-vote-per-user hold under concurrency.
	votesTableSQL := `
	CREATE TABLE IF NOT EXISTS report_votes(
		report_id CHAR(36) NOT NULL,
		user_id CHAR(36) NOT NULL,
		vote ENUM('up', 'down') NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (report_id, user_id),
		INDEX user_index (user_id)
	)`
	if _, err := dbc.Exec(votesTableSQL); err != nil {
		return fmt.Errorf("failed to create report_votes table: %w", err)
	}
	log.Info("Report_votes table created/verified")

	// Same trick for abuse flags: the primary key rejects a second flag
	// from the same user atomically.
	abuseTableSQL := `
	CREATE TABLE IF NOT EXISTS report_abuse(
		report_id CHAR(36) NOT NULL,
		user_id CHAR(36) NOT NULL,
		reason VARCHAR(512) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (report_id, user_id)
	)`
	if _, err := dbc.Exec(abuseTableSQL); err != nil {
		return fmt.Errorf("failed to create report_abuse table: %w", err)
	}
	log.Info("Report_abuse table created/verified")

	moderationTableSQL := `
	CREATE TABLE IF NOT EXISTS moderation_events(
		id BIGINT NOT NULL AUTO_INCREMENT,
		actor CHAR(36),
		action VARCHAR(64) NOT NULL,
		target_id CHAR(36) NOT NULL,
		details JSON,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		INDEX target_index (target_id)
	)`
	if _, err := dbc.Exec(moderationTableSQL); err != nil {
		return fmt.Errorf("failed to create moderation_events table: %w", err)
	}
	log.Info("Moderation_events table created/verified")

	return nil
}
