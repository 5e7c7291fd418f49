package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/easeaico/ai-post-agent/internal/article"
)

// SQLiteStore implements the Store interface using SQLite.
// Posts are ordered by an autoincrement sequence; the highest sequence is the newest post.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLiteStore connected to the given database path.
// The path should be a file path (e.g., "./data/posts.db") or ":memory:".
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// InitSchema creates the posts table if it doesn't exist.
func (s *SQLiteStore) InitSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS posts (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL,
			scraped_at TEXT NOT NULL,
			post_text TEXT NOT NULL,
			generated_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_posts_source ON posts(source);
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

const sqliteSelect = `
	SELECT id, title, url, description, source, scraped_at, post_text, generated_at
	FROM posts
`

func (s *SQLiteStore) List(ctx context.Context) ([]article.Post, error) {
	rows, err := s.db.QueryContext(ctx, sqliteSelect+` ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	posts := []article.Post{}
	for rows.Next() {
		p, err := scanSQLitePost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}
	return posts, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (article.Post, error) {
	row := s.db.QueryRowContext(ctx, sqliteSelect+` WHERE id = ?`, id)
	p, err := scanSQLitePost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return article.Post{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p, err
}

// Add inserts the batch in reverse so posts[0] receives the highest sequence.
func (s *SQLiteStore) Add(ctx context.Context, posts ...article.Post) error {
	if len(posts) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO posts (id, title, url, description, source, scraped_at, post_text, generated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	for i := len(posts) - 1; i >= 0; i-- {
		p := posts[i]
		_, err := tx.ExecContext(ctx, query,
			p.ID, p.Article.Title, p.Article.URL, p.Article.Description, p.Article.Source,
			formatTimestamp(p.Article.ScrapedAt), p.Text, formatTimestamp(p.GeneratedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to save post %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit posts: %w", err)
	}
	return nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLitePost(row rowScanner) (article.Post, error) {
	var (
		p                     article.Post
		scrapedAt, generateAt string
	)
	err := row.Scan(
		&p.ID,
		&p.Article.Title,
		&p.Article.URL,
		&p.Article.Description,
		&p.Article.Source,
		&scrapedAt,
		&p.Text,
		&generateAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return p, err
	}
	if err != nil {
		return p, fmt.Errorf("failed to scan post: %w", err)
	}

	// Unparseable timestamps leave the zero time; the text is still useful.
	p.Article.ScrapedAt, _ = parseTimestamp(scrapedAt)
	p.GeneratedAt, _ = parseTimestamp(generateAt)
	return p, nil
}

func formatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

// parseTimestamp parses a SQLite timestamp string to time.Time.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05.999999999",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse timestamp: %s", s)
}
