package library

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	dbutil "github.com/cantor-app/cantor/internal/db"
	"github.com/cantor-app/cantor/internal/hymn"
)

// GetHymn returns the hymn with its ordered blocks, or nil if unknown.
func (s *Store) GetHymn(id string) (*hymn.Hymn, error) {
	row := s.db.QueryRow(`SELECT id, title FROM hymns WHERE id = ?`, id)

	var h hymn.Hymn
	err := row.Scan(&h.ID, &h.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // unknown id is not an error for callers
	}
	if err != nil {
		return nil, err
	}

	blocks, err := s.hymnBlocks(id)
	if err != nil {
		return nil, err
	}
	h.Blocks = blocks
	return &h, nil
}

// GetHymns returns the hymns for the given ids, skipping unknown ones.
func (s *Store) GetHymns(ids []string) ([]hymn.Hymn, error) {
	result := make([]hymn.Hymn, 0, len(ids))
	for _, id := range ids {
		h, err := s.GetHymn(id)
		if err != nil {
			return nil, err
		}
		if h != nil {
			result = append(result, *h)
		}
	}
	return result, nil
}

func (s *Store) hymnBlocks(hymnID string) ([]hymn.Block, error) {
	rows, err := s.db.Query(`
		SELECT label, body FROM hymn_blocks
		WHERE hymn_id = ?
		ORDER BY position
	`, hymnID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []hymn.Block
	for rows.Next() {
		var label sql.NullString
		var body string
		if err := rows.Scan(&label, &body); err != nil {
			return nil, err
		}
		blocks = append(blocks, hymn.Block{
			Label: dbutil.NullStringValue(label),
			Lines: strings.Split(body, "\n"),
		})
	}
	return blocks, rows.Err()
}

// ListHymns returns all hymns ordered by title, blocks included.
func (s *Store) ListHymns() ([]hymn.Hymn, error) {
	rows, err := s.db.Query(`SELECT id FROM hymns ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return s.GetHymns(ids)
}

// SaveHymn upserts a hymn and replaces its blocks.
func (s *Store) SaveHymn(h hymn.Hymn) error {
	now := time.Now().Unix()
	return dbutil.WithTx(s.db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO hymns (id, title, created_at, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				title = excluded.title,
				updated_at = excluded.updated_at
		`, h.ID, h.Title, now, now)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(`DELETE FROM hymn_blocks WHERE hymn_id = ?`, h.ID); err != nil {
			return err
		}

		stmt, err := tx.Prepare(`
			INSERT INTO hymn_blocks (hymn_id, position, label, body)
			VALUES (?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, b := range h.Blocks {
			var label any
			if b.Label != "" {
				label = b.Label
			}
			if _, err := stmt.Exec(h.ID, i, label, strings.Join(b.Lines, "\n")); err != nil {
				return err
			}
		}
		return nil
	})
}

// CreateService creates a named service order.
func (s *Store) CreateService(name string) error {
	_, err := s.db.Exec(`
		INSERT INTO services (name, active, created_at) VALUES (?, 0, ?)
		ON CONFLICT(name) DO NOTHING
	`, name, time.Now().Unix())
	return err
}

// SetActiveService marks one service as active, clearing any other.
func (s *Store) SetActiveService(name string) error {
	return dbutil.WithTx(s.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`UPDATE services SET active = 0`); err != nil {
			return err
		}
		res, err := tx.Exec(`UPDATE services SET active = 1 WHERE name = ?`, name)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return errors.New("unknown service: " + name)
		}
		return nil
	})
}

func (s *Store) activeServiceID() (int64, bool, error) {
	row := s.db.QueryRow(`SELECT id FROM services WHERE active = 1`)
	var id int64
	err := row.Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// ActiveServiceHymnCount returns the number of hymns in the active
// service. The boolean reports whether an active service exists at all.
func (s *Store) ActiveServiceHymnCount() (int, bool, error) {
	id, ok, err := s.activeServiceID()
	if err != nil || !ok {
		return 0, ok, err
	}
	row := s.db.QueryRow(`SELECT COUNT(*) FROM service_hymns WHERE service_id = ?`, id)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, true, err
	}
	return count, true, nil
}

// ListActiveServiceHymns returns the active service's hymns in order.
func (s *Store) ListActiveServiceHymns() ([]hymn.Hymn, error) {
	id, ok, err := s.activeServiceID()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	rows, err := s.db.Query(`
		SELECT hymn_id FROM service_hymns
		WHERE service_id = ?
		ORDER BY position
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var hid string
		if err := rows.Scan(&hid); err != nil {
			return nil, err
		}
		ids = append(ids, hid)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return s.GetHymns(ids)
}

// AppendToActiveService adds a hymn at the end of the active service.
func (s *Store) AppendToActiveService(hymnID string) error {
	id, ok, err := s.activeServiceID()
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("no active service")
	}
	_, err = s.db.Exec(`
		INSERT INTO service_hymns (service_id, position, hymn_id)
		VALUES (?, (SELECT COALESCE(MAX(position), -1) + 1 FROM service_hymns WHERE service_id = ?), ?)
	`, id, id, hymnID)
	return err
}
