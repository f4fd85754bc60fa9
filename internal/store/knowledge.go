package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"augur/internal/connectors"
)

// Seed loads the topic excerpts and connector summary templates. Existing
// rows are replaced; the tables are immutable for the rest of the process
// lifetime.
func (s *Store) Seed(ctx context.Context, excerpts map[string][]string, templates map[connectors.ID]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM topic_excerpts`); err != nil {
		return fmt.Errorf("clear topic excerpts: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM summary_templates`); err != nil {
		return fmt.Errorf("clear summary templates: %w", err)
	}

	for topic, chunks := range excerpts {
		normalized := strings.ToLower(strings.TrimSpace(topic))
		if normalized == "" {
			continue
		}
		for position, excerpt := range chunks {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO topic_excerpts (topic, position, excerpt) VALUES (?, ?, ?)`,
				normalized, position, excerpt,
			); err != nil {
				return fmt.Errorf("seed excerpt for %s: %w", normalized, err)
			}
		}
	}
	for connector, template := range templates {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO summary_templates (connector, template) VALUES (?, ?)`,
			string(connector), template,
		); err != nil {
			return fmt.Errorf("seed template for %s: %w", connector, err)
		}
	}
	return tx.Commit()
}

// TopicExcerpts returns the excerpts for a topic in seeded order. A missing
// topic returns an empty, non-nil slice so callers can distinguish "known
// empty" from a lookup error.
func (s *Store) TopicExcerpts(ctx context.Context, topic string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT excerpt FROM topic_excerpts WHERE topic = ? ORDER BY position ASC`,
		strings.ToLower(strings.TrimSpace(topic)),
	)
	if err != nil {
		return nil, fmt.Errorf("query topic excerpts: %w", err)
	}
	defer rows.Close()

	excerpts := []string{}
	for rows.Next() {
		var excerpt string
		if err := rows.Scan(&excerpt); err != nil {
			return nil, fmt.Errorf("scan topic excerpt: %w", err)
		}
		excerpts = append(excerpts, excerpt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate topic excerpts: %w", err)
	}
	return excerpts, nil
}

func (s *Store) SummaryTemplate(ctx context.Context, connector connectors.ID) (string, bool, error) {
	var template string
	err := s.db.QueryRowContext(ctx,
		`SELECT template FROM summary_templates WHERE connector = ?`,
		string(connector),
	).Scan(&template)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query summary template: %w", err)
	}
	return template, true, nil
}
