// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/topic-explorer/pkg/types"
)

// TitleIndex is an in-memory full-text index over one variant's titles.
type TitleIndex struct {
	db      *sql.DB
	records []types.Record
}

// NewTitleIndex builds the index. The records slice is retained, not
// copied.
func NewTitleIndex(ctx context.Context, records []types.Record) (*TitleIndex, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening index: %w", err)
	}
	// Each connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	x := &TitleIndex{db: db, records: records}
	if err := x.build(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return x, nil
}

func (x *TitleIndex) build(ctx context.Context) error {
	if _, err := x.db.ExecContext(ctx,
		`CREATE VIRTUAL TABLE titles USING fts4(title, tokenize=unicode61)`); err != nil {
		return fmt.Errorf("creating index: %w", err)
	}

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO titles(docid, title) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range x.records {
		if _, err := stmt.ExecContext(ctx, i+1, r.Title); err != nil {
			return fmt.Errorf("indexing record %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// Close releases the index.
func (x *TitleIndex) Close() error {
	return x.db.Close()
}

// Search returns records whose titles contain every word of q (a trailing
// "*" makes a word a prefix), ranked like FilterByTopic. limit <= 0 means
// no limit. A query with no words matches nothing.
func (x *TitleIndex) Search(ctx context.Context, q string, limit int) ([]types.Record, error) {
	expr := matchExpr(q)
	if expr == "" {
		return nil, nil
	}

	rows, err := x.db.QueryContext(ctx, `SELECT docid FROM titles WHERE title MATCH ? ORDER BY docid`, expr)
	if err != nil {
		return nil, fmt.Errorf("searching titles: %w", err)
	}
	defer rows.Close()

	var out []types.Record
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		out = append(out, x.records[id-1])
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating results: %w", err)
	}

	sortByPopularity(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// matchExpr turns free text into an FTS4 expression of quoted terms, so
// user input cannot inject query syntax.
func matchExpr(q string) string {
	var terms []string
	for _, w := range strings.Fields(q) {
		prefix := strings.HasSuffix(w, "*")
		w = strings.Map(func(r rune) rune {
			if r == '"' || r == '*' {
				return -1
			}
			return r
		}, w)
		if w == "" {
			continue
		}
		if prefix {
			w += "*"
		}
		terms = append(terms, `"`+w+`"`)
	}
	return strings.Join(terms, " ")
}
