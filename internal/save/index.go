package save

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Index is a SQLite catalog of slot metadata, kept beside the slot files
// so listings never need to decrypt every save. The files remain the
// source of truth; the index can always be rebuilt from them.
type Index struct {
	db *sql.DB
}

// OpenIndex creates or opens the slot index database.
func OpenIndex(dbPath string) (*Index, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("save: cannot open slot index: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("save: cannot connect to slot index: %w", err)
	}

	idx := &Index{db: db}
	if err := idx.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("save: slot index migration failed: %w", err)
	}
	return idx, nil
}

// migrate creates the schema if it doesn't exist.
func (idx *Index) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS save_slots (
			slot INTEGER PRIMARY KEY,
			version INTEGER NOT NULL,
			timestamp INTEGER NOT NULL,
			player_name TEXT NOT NULL,
			player_level INTEGER NOT NULL,
			location TEXT NOT NULL,
			playtime_secs REAL NOT NULL DEFAULT 0,
			last_save INTEGER,
			checksum TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_save_slots_recency ON save_slots(timestamp DESC);
	`
	_, err := idx.db.Exec(schema)
	return err
}

// Close closes the index database.
func (idx *Index) Close() error {
	if idx.db != nil {
		return idx.db.Close()
	}
	return nil
}

// Put inserts or replaces a slot's metadata row.
func (idx *Index) Put(slot int, meta SaveMetadata) error {
	var lastSave any
	if !meta.LastSave.IsZero() {
		lastSave = meta.LastSave.UnixNano()
	}
	_, err := idx.db.Exec(
		`INSERT OR REPLACE INTO save_slots
		 (slot, version, timestamp, player_name, player_level, location, playtime_secs, last_save, checksum)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		slot,
		meta.Version,
		meta.Timestamp.UnixNano(),
		meta.PlayerName,
		meta.PlayerLevel,
		meta.Location,
		meta.Playtime,
		lastSave,
		meta.Checksum,
	)
	if err != nil {
		return fmt.Errorf("save: cannot index slot %d: %w", slot, err)
	}
	return nil
}

// Get retrieves one slot's metadata.
func (idx *Index) Get(slot int) (SaveMetadata, error) {
	row := idx.db.QueryRow(
		`SELECT version, timestamp, player_name, player_level, location, playtime_secs, last_save, checksum
		 FROM save_slots WHERE slot = ?`, slot)
	meta, err := scanMetadata(row)
	if err == sql.ErrNoRows {
		return SaveMetadata{}, ErrSlotNotFound
	}
	if err != nil {
		return SaveMetadata{}, fmt.Errorf("save: cannot query slot %d: %w", slot, err)
	}
	return meta, nil
}

// Remove deletes a slot's row.
func (idx *Index) Remove(slot int) error {
	if _, err := idx.db.Exec("DELETE FROM save_slots WHERE slot = ?", slot); err != nil {
		return fmt.Errorf("save: cannot remove slot %d from index: %w", slot, err)
	}
	return nil
}

// Clear empties the index, ahead of a rebuild.
func (idx *Index) Clear() error {
	if _, err := idx.db.Exec("DELETE FROM save_slots"); err != nil {
		return fmt.Errorf("save: cannot clear index: %w", err)
	}
	return nil
}

// List returns every indexed slot, newest first.
func (idx *Index) List() ([]SlotInfo, error) {
	rows, err := idx.db.Query(
		`SELECT slot, version, timestamp, player_name, player_level, location, playtime_secs, last_save, checksum
		 FROM save_slots ORDER BY timestamp DESC`)
	if err != nil {
		return nil, fmt.Errorf("save: cannot list slots: %w", err)
	}
	defer rows.Close()

	var infos []SlotInfo
	for rows.Next() {
		var info SlotInfo
		var ts int64
		var lastSave sql.NullInt64
		if err := rows.Scan(
			&info.Slot,
			&info.Meta.Version,
			&ts,
			&info.Meta.PlayerName,
			&info.Meta.PlayerLevel,
			&info.Meta.Location,
			&info.Meta.Playtime,
			&lastSave,
			&info.Meta.Checksum,
		); err != nil {
			return nil, fmt.Errorf("save: cannot scan slot row: %w", err)
		}
		info.Meta.Timestamp = time.Unix(0, ts)
		if lastSave.Valid {
			info.Meta.LastSave = time.Unix(0, lastSave.Int64)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("save: slot row iteration: %w", err)
	}
	return infos, nil
}

// TotalPlaytime sums the recorded playtime across every slot.
func (idx *Index) TotalPlaytime() (time.Duration, error) {
	var secs sql.NullFloat64
	err := idx.db.QueryRow("SELECT SUM(playtime_secs) FROM save_slots").Scan(&secs)
	if err != nil {
		return 0, fmt.Errorf("save: cannot sum playtime: %w", err)
	}
	if !secs.Valid {
		return 0, nil
	}
	return time.Duration(secs.Float64 * float64(time.Second)), nil
}

func scanMetadata(row *sql.Row) (SaveMetadata, error) {
	var meta SaveMetadata
	var ts int64
	var lastSave sql.NullInt64
	err := row.Scan(
		&meta.Version,
		&ts,
		&meta.PlayerName,
		&meta.PlayerLevel,
		&meta.Location,
		&meta.Playtime,
		&lastSave,
		&meta.Checksum,
	)
	if err != nil {
		return meta, err
	}
	meta.Timestamp = time.Unix(0, ts)
	if lastSave.Valid {
		meta.LastSave = time.Unix(0, lastSave.Int64)
	}
	return meta, nil
}
