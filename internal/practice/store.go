package practice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned when a set or sentence does not exist.
var ErrNotFound = errors.New("not found")

// Set is a named practice set.
type Set struct {
	ID        int64
	Name      string
	Profile   string
	Sentences int
	CreatedAt time.Time
}

// Sentence is one annotated reference sentence of a set. Positions start at 1.
type Sentence struct {
	ID       int64
	SetName  string
	Position int
	Text     string
}

// Store reads and writes practice sets.
type Store struct {
	db *sql.DB
}

// NewStore wraps an already migrated database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ImportSet stores sentences under name, replacing any set of the same name.
// The whole import happens in one transaction.
func (s *Store) ImportSet(ctx context.Context, name, profile string, sentences []string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("set name must be non-empty")
	}
	if len(sentences) == 0 {
		return 0, fmt.Errorf("set %q has no sentences", name)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sentences WHERE set_id IN (SELECT id FROM sets WHERE name = ?)`, name); err != nil {
		return 0, fmt.Errorf("clear old sentences: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sets WHERE name = ?`, name); err != nil {
		return 0, fmt.Errorf("clear old set: %w", err)
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO sets (name, profile, created_at) VALUES (?, ?, ?)`,
		name, profile, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("insert set: %w", err)
	}
	setID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO sentences (set_id, position, text) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare sentence insert: %w", err)
	}
	defer stmt.Close()

	position := 0
	for _, text := range sentences {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		position++
		if _, err := stmt.ExecContext(ctx, setID, position, text); err != nil {
			return 0, fmt.Errorf("insert sentence %d: %w", position, err)
		}
	}
	if position == 0 {
		return 0, fmt.Errorf("set %q has no sentences", name)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return setID, nil
}

// ListSets returns every set ordered by name.
func (s *Store) ListSets(ctx context.Context) ([]Set, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.name, s.profile, s.created_at, COUNT(t.id)
		FROM sets s LEFT JOIN sentences t ON t.set_id = s.id
		GROUP BY s.id
		ORDER BY s.name`)
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}
	defer rows.Close()

	var sets []Set
	for rows.Next() {
		set, err := scanSet(rows)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}
	return sets, rows.Err()
}

// GetSet returns the set registered under name.
func (s *Store) GetSet(ctx context.Context, name string) (Set, error) {
	set, err := scanSet(s.db.QueryRowContext(ctx, `
		SELECT s.id, s.name, s.profile, s.created_at, COUNT(t.id)
		FROM sets s LEFT JOIN sentences t ON t.set_id = s.id
		WHERE s.name = ?
		GROUP BY s.id`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return Set{}, fmt.Errorf("set %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return Set{}, fmt.Errorf("get set: %w", err)
	}
	return set, nil
}

// Sentences returns the sentences of a set in position order.
func (s *Store) Sentences(ctx context.Context, name string) ([]Sentence, error) {
	if _, err := s.GetSet(ctx, name); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.position, t.text
		FROM sentences t JOIN sets s ON s.id = t.set_id
		WHERE s.name = ?
		ORDER BY t.position`, name)
	if err != nil {
		return nil, fmt.Errorf("list sentences: %w", err)
	}
	defer rows.Close()

	var out []Sentence
	for rows.Next() {
		sentence := Sentence{SetName: name}
		if err := rows.Scan(&sentence.ID, &sentence.Position, &sentence.Text); err != nil {
			return nil, err
		}
		out = append(out, sentence)
	}
	return out, rows.Err()
}

// Sentence returns one sentence of a set by its 1-based position.
func (s *Store) Sentence(ctx context.Context, name string, position int) (Sentence, error) {
	sentence := Sentence{SetName: name, Position: position}
	err := s.db.QueryRowContext(ctx, `
		SELECT t.id, t.text
		FROM sentences t JOIN sets s ON s.id = t.set_id
		WHERE s.name = ? AND t.position = ?`, name, position).
		Scan(&sentence.ID, &sentence.Text)
	if errors.Is(err, sql.ErrNoRows) {
		return Sentence{}, fmt.Errorf("sentence %d of set %q: %w", position, name, ErrNotFound)
	}
	if err != nil {
		return Sentence{}, fmt.Errorf("get sentence: %w", err)
	}
	return sentence, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSet(row scanner) (Set, error) {
	var set Set
	var created int64
	if err := row.Scan(&set.ID, &set.Name, &set.Profile, &created, &set.Sentences); err != nil {
		return Set{}, err
	}
	set.CreatedAt = time.Unix(created, 0)
	return set, nil
}
