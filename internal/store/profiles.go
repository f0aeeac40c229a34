package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/soultek101/ocarina/internal/canon"
	"github.com/soultek101/ocarina/internal/repertoire"
)

// ProfileInfo summarizes a stored profile without decoding it.
type ProfileInfo struct {
	Participant uuid.UUID
	Digest      string
	Revision    int64
}

// SaveProfile writes a participant's record.
//
// Records are stored as canonical JSON keyed by their digest. When the
// stored digest already matches, nothing is written and SaveProfile reports
// false. Otherwise the row is inserted or replaced and its revision bumped.
func (s *Store) SaveProfile(ctx context.Context, participant uuid.UUID, rec repertoire.Record) (bool, error) {
	data, err := repertoire.MarshalRecord(rec)
	if err != nil {
		return false, fmt.Errorf("save profile %s: %w", participant, err)
	}
	digest := canon.Digest(canon.DomainRecord, data)

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (participant, record, digest, revision)
		VALUES (?, ?, ?, 1)
		ON CONFLICT(participant) DO UPDATE SET
			record = excluded.record,
			digest = excluded.digest,
			revision = profiles.revision + 1
		WHERE profiles.digest != excluded.digest
	`, participant.String(), string(data), digest)
	if err != nil {
		return false, fmt.Errorf("save profile %s: %w", participant, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("save profile %s: %w", participant, err)
	}
	return n > 0, nil
}

// LoadProfile reads a participant's record. The bool is false when no
// profile is stored.
func (s *Store) LoadProfile(ctx context.Context, participant uuid.UUID) (repertoire.Record, bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `
		SELECT record FROM profiles WHERE participant = ?
	`, participant.String()).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return repertoire.Record{}, false, nil
	}
	if err != nil {
		return repertoire.Record{}, false, fmt.Errorf("load profile %s: %w", participant, err)
	}

	rec, err := repertoire.UnmarshalRecord([]byte(data))
	if err != nil {
		return repertoire.Record{}, false, fmt.Errorf("load profile %s: %w", participant, err)
	}
	return rec, true, nil
}

// ListProfiles returns every stored profile ordered by participant.
//
// Returns an empty slice (not nil) if no profiles exist.
func (s *Store) ListProfiles(ctx context.Context) ([]ProfileInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT participant, digest, revision
		FROM profiles
		ORDER BY participant COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	profiles := []ProfileInfo{}
	for rows.Next() {
		var (
			id   string
			info ProfileInfo
		)
		if err := rows.Scan(&id, &info.Digest, &info.Revision); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		info.Participant, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("scan profile: participant %q: %w", id, err)
		}
		profiles = append(profiles, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}
	return profiles, nil
}

// DeleteProfile removes a participant's profile and reports whether one
// existed.
func (s *Store) DeleteProfile(ctx context.Context, participant uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM profiles WHERE participant = ?
	`, participant.String())
	if err != nil {
		return false, fmt.Errorf("delete profile %s: %w", participant, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete profile %s: %w", participant, err)
	}
	return n > 0, nil
}
