package db

import (
	"database/sql"
	"fmt"
	"strconv"
)

const currentSchemaVersion = 2

// schemaDDL contains the CREATE TABLE statements for the current schema.
const schemaDDL = coreDDL + changeLogDDL

// coreDDL is the version 1 schema.
const coreDDL = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT
);

CREATE TABLE IF NOT EXISTS lookup_sexes (
	code        TEXT PRIMARY KEY,
	description TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS lookup_event_types (
	code        TEXT PRIMARY KEY,
	description TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS lookup_media_types (
	code        TEXT PRIMARY KEY,
	description TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS lookup_family_member_roles (
	code        TEXT PRIMARY KEY,
	description TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS main_individuals (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	gedcom_id         TEXT NOT NULL UNIQUE,
	sex_code          TEXT,
	birth_date        TEXT,
	birth_date_approx TEXT,
	birth_place       TEXT,
	death_date        TEXT,
	death_date_approx TEXT,
	death_place       TEXT,
	notes             TEXT
);

CREATE TABLE IF NOT EXISTS main_individual_names (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	individual_id INTEGER NOT NULL REFERENCES main_individuals(id) ON DELETE CASCADE,
	name_type     TEXT,
	given_name    TEXT,
	family_name   TEXT,
	prefix        TEXT,
	suffix        TEXT,
	name_order    INTEGER
);

CREATE TABLE IF NOT EXISTS main_families (
	id                   INTEGER PRIMARY KEY AUTOINCREMENT,
	gedcom_id            TEXT NOT NULL UNIQUE,
	marriage_date        TEXT,
	marriage_date_approx TEXT,
	marriage_place       TEXT,
	divorce_date         TEXT,
	divorce_date_approx  TEXT,
	family_type          TEXT NOT NULL DEFAULT 'marriage',
	notes                TEXT
);

CREATE TABLE IF NOT EXISTS main_family_members (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	family_id     INTEGER NOT NULL REFERENCES main_families(id) ON DELETE CASCADE,
	individual_id INTEGER NOT NULL REFERENCES main_individuals(id) ON DELETE CASCADE,
	role          TEXT
);

CREATE TABLE IF NOT EXISTS main_family_children (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	family_id INTEGER NOT NULL REFERENCES main_families(id) ON DELETE CASCADE,
	child_id  INTEGER NOT NULL REFERENCES main_individuals(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS main_events (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	individual_id     INTEGER REFERENCES main_individuals(id) ON DELETE CASCADE,
	family_id         INTEGER REFERENCES main_families(id) ON DELETE CASCADE,
	event_type_code   TEXT NOT NULL,
	event_date        TEXT,
	event_date_approx TEXT,
	event_place       TEXT,
	description       TEXT
);

CREATE TABLE IF NOT EXISTS main_media (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	individual_id   INTEGER REFERENCES main_individuals(id) ON DELETE CASCADE,
	family_id       INTEGER REFERENCES main_families(id) ON DELETE CASCADE,
	file_path       TEXT,
	media_type_code TEXT,
	media_date      TEXT,
	description     TEXT
);

CREATE TABLE IF NOT EXISTS meta_header (
	id                 INTEGER PRIMARY KEY CHECK (id = 1),
	source_system_id   TEXT,
	source_system_name TEXT,
	source_version     TEXT,
	source_corporation TEXT,
	destination        TEXT,
	file_name          TEXT,
	creation_date      TEXT,
	creation_time      TEXT,
	gedcom_version     TEXT,
	gedcom_form        TEXT,
	charset            TEXT,
	language           TEXT,
	copyright          TEXT,
	note               TEXT,
	submitter_id       TEXT,
	submitter_name     TEXT,
	submitter_address  TEXT,
	submitter_city     TEXT,
	submitter_state    TEXT,
	submitter_postal   TEXT,
	submitter_country  TEXT,
	submitter_phone    TEXT,
	submitter_email    TEXT,
	submitter_fax      TEXT,
	submitter_www      TEXT,
	imported_at        TEXT,
	last_modified      TEXT
);

CREATE INDEX IF NOT EXISTS idx_names_individual ON main_individual_names(individual_id);
CREATE INDEX IF NOT EXISTS idx_members_family ON main_family_members(family_id);
CREATE INDEX IF NOT EXISTS idx_members_individual ON main_family_members(individual_id);
CREATE INDEX IF NOT EXISTS idx_children_family ON main_family_children(family_id);
CREATE INDEX IF NOT EXISTS idx_children_child ON main_family_children(child_id);
CREATE INDEX IF NOT EXISTS idx_events_individual ON main_events(individual_id);
CREATE INDEX IF NOT EXISTS idx_events_family ON main_events(family_id);
CREATE INDEX IF NOT EXISTS idx_media_individual ON main_media(individual_id);
CREATE INDEX IF NOT EXISTS idx_media_family ON main_media(family_id);
`

// changeLogDDL was added in schema version 2.
const changeLogDDL = `
CREATE TABLE IF NOT EXISTS meta_change_log (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	entity     TEXT NOT NULL,
	entity_id  INTEGER NOT NULL,
	field      TEXT NOT NULL,
	old_value  TEXT,
	new_value  TEXT,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_change_log_entity ON meta_change_log(entity, entity_id);
`

// lookupSeeds holds the rows inserted into each lookup table.
var lookupSeeds = map[string][][2]string{
	"lookup_sexes": {
		{"M", "Male"},
		{"F", "Female"},
		{"U", "Unknown"},
	},
	"lookup_event_types": {
		{"BIRT", "Birth"},
		{"DEAT", "Death"},
		{"BURI", "Burial"},
		{"CREM", "Cremation"},
		{"BAPM", "Baptism"},
		{"BARM", "Bar Mitzvah"},
		{"BASM", "Bas Mitzvah"},
		{"BLES", "Blessing"},
		{"CHR", "Christening"},
		{"CHRA", "Adult Christening"},
		{"CONF", "Confirmation"},
		{"FCOM", "First Communion"},
		{"ORDN", "Ordination"},
		{"NATU", "Naturalization"},
		{"EMIG", "Emigration"},
		{"IMMI", "Immigration"},
		{"CENS", "Census"},
		{"PROB", "Probate"},
		{"WILL", "Will"},
		{"GRAD", "Graduation"},
		{"RETI", "Retirement"},
		{"OCCU", "Occupation"},
		{"EDUC", "Education"},
		{"RESI", "Residence"},
		{"MARR", "Marriage"},
		{"MARB", "Marriage Bann"},
		{"MARC", "Marriage Contract"},
		{"MARL", "Marriage License"},
		{"MARS", "Marriage Settlement"},
		{"DIV", "Divorce"},
		{"DIVF", "Divorce Filed"},
		{"ANUL", "Annulment"},
		{"ENGA", "Engagement"},
		{"EVEN", "Other Event"},
	},
	"lookup_media_types": {
		{"bmp", "Bitmap image"},
		{"gif", "GIF image"},
		{"jpg", "JPEG image"},
		{"png", "PNG image"},
		{"tif", "TIFF image"},
		{"pdf", "PDF document"},
		{"wav", "WAV audio"},
		{"mp3", "MP3 audio"},
		{"mp4", "MP4 video"},
	},
	"lookup_family_member_roles": {
		{"husband", "Husband"},
		{"wife", "Wife"},
		{"partner", "Partner"},
	},
}

// Initialize creates all tables if they don't exist, seeds the lookup tables
// and sets the schema version.
func Initialize(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(schemaDDL); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	if err := seedLookups(tx); err != nil {
		return err
	}

	// Set schema version only if not already set.
	_, err = tx.Exec(
		`INSERT OR IGNORE INTO meta (key, value) VALUES ('schema_version', ?)`,
		strconv.Itoa(currentSchemaVersion),
	)
	if err != nil {
		return fmt.Errorf("setting schema version: %w", err)
	}

	return tx.Commit()
}

func seedLookups(tx *sql.Tx) error {
	for _, table := range lookupTables {
		for _, row := range lookupSeeds[table] {
			if _, err := tx.Exec(
				"INSERT OR IGNORE INTO "+table+" (code, description) VALUES (?, ?)",
				row[0], row[1],
			); err != nil {
				return fmt.Errorf("seeding %s: %w", table, err)
			}
		}
	}
	return nil
}

// SchemaVersion returns the current schema version from the meta table.
func SchemaVersion(db *sql.DB) (int, error) {
	var val string
	err := db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&val)
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}

	v, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("parsing schema version %q: %w", val, err)
	}

	return v, nil
}

// migrations is a list of migration functions keyed by the version they migrate TO.
// For example, migrations[2] migrates from version 1 to version 2.
var migrations = map[int]func(tx *sql.Tx) error{
	2: func(tx *sql.Tx) error {
		_, err := tx.Exec(changeLogDDL)
		return err
	},
}

// Migrate checks the current schema version and applies any pending migrations
// sequentially. It is a no-op when already at the latest version.
func Migrate(db *sql.DB) error {
	version, err := SchemaVersion(db)
	if err != nil {
		return err
	}

	if version == currentSchemaVersion {
		return nil
	}

	for v := version + 1; v <= currentSchemaVersion; v++ {
		migrateFn, ok := migrations[v]
		if !ok {
			return fmt.Errorf("missing migration for version %d", v)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %d transaction: %w", v, err)
		}

		if err := migrateFn(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", v, err)
		}

		if _, err := tx.Exec(
			`UPDATE meta SET value = ? WHERE key = 'schema_version'`,
			strconv.Itoa(v),
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("updating schema version to %d: %w", v, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", v, err)
		}
	}

	return nil
}
