package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"

	"bazaar/internal/domain"
)

const (
	// MaxQueryLength is the longest query text accepted, in runes
	MaxQueryLength = 200
	// DefaultSearchLimit applies when the caller passes a non-positive limit
	DefaultSearchLimit = 50
	// MaxSearchLimit caps a single result page
	MaxSearchLimit = 200
)

var (
	ErrQueryTooLong   = fmt.Errorf("query exceeds maximum length of %d characters", MaxQueryLength)
	ErrNotFound       = errors.New("listing not found")
	ErrInvalidListing = errors.New("invalid listing")
)

const listingColumns = `l.id, l.title, l.description, l.category, l.seller, l.price_cents, l.currency, l.posted_at`

// Insert adds listings in one transaction. Listings without an ID get a new ULID.
func (s *Store) Insert(ctx context.Context, listings ...domain.Listing) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO listings (id, title, description, category, seller, price_cents, currency, posted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, l := range listings {
		if strings.TrimSpace(l.Title) == "" {
			return fmt.Errorf("%w: title is required", ErrInvalidListing)
		}
		if l.ID == "" {
			l.ID = ulid.Make().String()
		}
		if l.Currency == "" {
			l.Currency = "USD"
		}
		if l.PostedAt.IsZero() {
			l.PostedAt = time.Now()
		}
		if _, err := stmt.ExecContext(ctx,
			l.ID, l.Title, l.Description, l.Category, l.Seller,
			l.PriceCents, l.Currency, l.PostedAt.UnixMilli(),
		); err != nil {
			return fmt.Errorf("failed to insert listing %s: %w", l.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit listings: %w", err)
	}
	return nil
}

// Count returns the number of listings
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM listings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	return n, nil
}

// Get returns one listing by id
func (s *Store) Get(ctx context.Context, id string) (domain.Listing, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+listingColumns+` FROM listings l WHERE l.id = ?`, id)
	l, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Listing{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return domain.Listing{}, fmt.Errorf("failed to get listing %s: %w", id, err)
	}
	return l, nil
}

// Search returns listings matching every word of text, each word treated as
// a prefix. Results are ranked by BM25 with title matches weighted 5x and
// category matches 2x over the description.
func (s *Store) Search(ctx context.Context, text string, limit int) ([]domain.Listing, error) {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) > MaxQueryLength {
		return nil, ErrQueryTooLong
	}

	match := ftsQuery(text)
	if match == "" {
		return nil, nil
	}

	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	limit = min(limit, MaxSearchLimit)

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+listingColumns+`
		FROM listings_fts
		JOIN listings l ON l.seq = listings_fts.rowid
		WHERE listings_fts MATCH ?
		ORDER BY bm25(listings_fts, 5.0, 1.0, 2.0), l.posted_at DESC
		LIMIT ?`, match, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search listings: %w", err)
	}
	defer rows.Close()

	var out []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to search listings: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanListing(row scanner) (domain.Listing, error) {
	var l domain.Listing
	var postedAt int64
	if err := row.Scan(&l.ID, &l.Title, &l.Description, &l.Category, &l.Seller,
		&l.PriceCents, &l.Currency, &postedAt); err != nil {
		return domain.Listing{}, err
	}
	l.PostedAt = time.UnixMilli(postedAt)
	return l, nil
}

// ftsQuery turns free text into an FTS5 expression of quoted prefix terms.
// Punctuation separates words and never reaches FTS5 syntax.
func ftsQuery(text string) string {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	terms := make([]string, 0, len(words))
	for _, w := range words {
		terms = append(terms, `"`+w+`"*`)
	}
	return strings.Join(terms, " ")
}
