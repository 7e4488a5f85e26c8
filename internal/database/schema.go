package database

import (
	"context"
	"fmt"
	"strings"
)

var tables = []struct {
	name string
	ddl  string
}{
	{"users", `
		CREATE TABLE IF NOT EXISTS users (
			id $ID PRIMARY KEY,
			username VARCHAR(50) UNIQUE NOT NULL,
			email VARCHAR(100) UNIQUE NOT NULL,
			nickname VARCHAR(50) NOT NULL DEFAULT '',
			password_hash VARCHAR(100) NOT NULL,
			role VARCHAR(20) NOT NULL DEFAULT 'member',
			last_login_at $TS,
			created_at $TS NOT NULL,
			updated_at $TS NOT NULL
		)`},
	{"posts", `
		CREATE TABLE IF NOT EXISTS posts (
			id $ID PRIMARY KEY,
			title VARCHAR(200) NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			category VARCHAR(50) NOT NULL DEFAULT '',
			author_id $ID NOT NULL REFERENCES users(id),
			view_count INTEGER NOT NULL DEFAULT 0,
			like_count INTEGER NOT NULL DEFAULT 0,
			deleted BOOLEAN NOT NULL DEFAULT FALSE,
			deleted_at $TS,
			is_notice BOOLEAN NOT NULL DEFAULT FALSE,
			created_at $TS NOT NULL,
			updated_at $TS NOT NULL
		)`},
	{"post_votes", `
		CREATE TABLE IF NOT EXISTS post_votes (
			id $ID PRIMARY KEY,
			post_id $ID NOT NULL REFERENCES posts(id),
			user_id $ID NOT NULL REFERENCES users(id),
			is_upvote BOOLEAN NOT NULL,
			created_at $TS NOT NULL,
			UNIQUE (post_id, user_id)
		)`},
	{"comments", `
		CREATE TABLE IF NOT EXISTS comments (
			id $ID PRIMARY KEY,
			content VARCHAR(1000) NOT NULL,
			post_id $ID NOT NULL REFERENCES posts(id),
			author_id $ID NOT NULL REFERENCES users(id),
			parent_id $ID REFERENCES comments(id),
			like_count INTEGER NOT NULL DEFAULT 0,
			deleted BOOLEAN NOT NULL DEFAULT FALSE,
			deleted_at $TS,
			created_at $TS NOT NULL,
			updated_at $TS NOT NULL
		)`},
	{"comment_likes", `
		CREATE TABLE IF NOT EXISTS comment_likes (
			id $ID PRIMARY KEY,
			comment_id $ID NOT NULL REFERENCES comments(id),
			user_id $ID NOT NULL REFERENCES users(id),
			created_at $TS NOT NULL,
			UNIQUE (comment_id, user_id)
		)`},
	{"reports", `
		CREATE TABLE IF NOT EXISTS reports (
			id $ID PRIMARY KEY,
			target_type VARCHAR(20) NOT NULL,
			target_id $ID NOT NULL,
			reporter_id $ID NOT NULL REFERENCES users(id),
			reason VARCHAR(500) NOT NULL DEFAULT '',
			status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
			created_at $TS NOT NULL,
			updated_at $TS NOT NULL,
			UNIQUE (target_type, target_id, reporter_id)
		)`},
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_posts_listing ON posts (deleted, is_notice, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_author ON posts (author_id)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_post ON comments (post_id, parent_id)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_parent ON comments (parent_id)`,
	`CREATE INDEX IF NOT EXISTS idx_reports_status ON reports (status, target_type)`,
}

// InitializeTables creates all necessary tables if they don't exist
func (s *SQLStore) InitializeTables(ctx context.Context) error {
	types := strings.NewReplacer("$ID", "UUID", "$TS", "TIMESTAMP WITH TIME ZONE")
	if s.driver == DriverSQLite {
		types = strings.NewReplacer("$ID", "TEXT", "$TS", "TIMESTAMP")
	}

	for _, table := range tables {
		if _, err := s.DB.ExecContext(ctx, types.Replace(table.ddl)); err != nil {
			return fmt.Errorf("failed to create %s table: %v", table.name, err)
		}
	}
	for _, ddl := range indexes {
		if _, err := s.DB.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("failed to create index: %v", err)
		}
	}
	return nil
}
