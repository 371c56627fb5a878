package db

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ALT-F4-LLC/pedigree/internal/model"
)

// safeIdentifier matches valid SQL identifiers (lowercase letters and underscores only).
var safeIdentifier = regexp.MustCompile(`^[a-z_]+$`)

var (
	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateID is returned when an explicit gedcom_id is already taken.
	ErrDuplicateID = errors.New("duplicate gedcom_id")
	// ErrInvalid is returned for values the store refuses to write.
	ErrInvalid = errors.New("invalid value")
)

// scanner abstracts *sql.Row and *sql.Rows for scanning a single row.
type scanner interface {
	Scan(dest ...any) error
}

// execer abstracts *sql.DB and *sql.Tx for executing statements.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// querier abstracts *sql.DB and *sql.Tx for reads and writes, so bulk
// operations like import can share one transaction.
type querier interface {
	execer
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// ListOptions holds pagination for list queries. A zero Limit means no limit.
type ListOptions struct {
	Offset int
	Limit  int
}

func (o ListOptions) clause() string {
	if o.Limit <= 0 && o.Offset <= 0 {
		return ""
	}
	limit := o.Limit
	if limit <= 0 {
		limit = -1
	}
	return fmt.Sprintf(" LIMIT %d OFFSET %d", limit, o.Offset)
}

// Tables holding genealogy data, in the order they are cleared so child rows
// go before their parents.
var dataTables = []string{
	"main_family_children",
	"main_family_members",
	"main_events",
	"main_media",
	"main_families",
	"main_individual_names",
	"main_individuals",
	"meta_header",
}

// ClearAllData deletes every genealogy row and the header. Lookup tables,
// the change log and the meta table are preserved.
func ClearAllData(q querier) error {
	for _, table := range dataTables {
		if _, err := q.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}

// Counts holds row totals for the main entity tables.
type Counts struct {
	Individuals int `json:"individuals"`
	Families    int `json:"families"`
	Events      int `json:"events"`
	Media       int `json:"media"`
}

// CountAll returns row totals for the main entity tables.
func CountAll(q querier) (Counts, error) {
	var c Counts
	targets := []struct {
		table string
		dst   *int
	}{
		{"main_individuals", &c.Individuals},
		{"main_families", &c.Families},
		{"main_events", &c.Events},
		{"main_media", &c.Media},
	}
	for _, t := range targets {
		if err := q.QueryRow("SELECT COUNT(*) FROM " + t.table).Scan(t.dst); err != nil {
			return c, fmt.Errorf("counting %s: %w", t.table, err)
		}
	}
	return c, nil
}

// NextGedcomID returns the next free ID for table: prefix followed by the
// highest numeric suffix among letter+digits IDs plus one, zero-padded to
// five digits. IDs of any other shape are ignored.
func NextGedcomID(q querier, table, prefix string) (string, error) {
	if !safeIdentifier.MatchString(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}

	rows, err := q.Query("SELECT gedcom_id FROM " + table)
	if err != nil {
		return "", fmt.Errorf("querying %s ids: %w", table, err)
	}
	defer rows.Close()

	highest := 0
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scanning gedcom_id: %w", err)
		}
		if n, ok := model.GedcomIDNumber(id); ok && n > highest {
			highest = n
		}
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	return model.FormatGedcomID(prefix, highest+1), nil
}

// gedcomIDTaken reports whether id is used by a row other than exceptID.
func gedcomIDTaken(q querier, table, id string, exceptID int) (bool, error) {
	var n int
	err := q.QueryRow(
		"SELECT COUNT(*) FROM "+table+" WHERE gedcom_id = ? AND id != ?", id, exceptID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking gedcom_id: %w", err)
	}
	return n > 0, nil
}

// assignGedcomID validates an explicit ID or generates the next one.
func assignGedcomID(q querier, table, prefix, id string) (string, error) {
	if id == "" {
		return NextGedcomID(q, table, prefix)
	}
	if err := model.ValidateGedcomID(id); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	taken, err := gedcomIDTaken(q, table, id, 0)
	if err != nil {
		return "", err
	}
	if taken {
		return "", fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	return id, nil
}

// Lookup table names.
const (
	LookupSexes       = "lookup_sexes"
	LookupEventTypes  = "lookup_event_types"
	LookupMediaTypes  = "lookup_media_types"
	LookupFamilyRoles = "lookup_family_member_roles"
)

var lookupTables = []string{LookupSexes, LookupEventTypes, LookupMediaTypes, LookupFamilyRoles}

// ListLookup returns the rows of a lookup table ordered by code.
func ListLookup(q querier, table string) ([]model.LookupType, error) {
	known := false
	for _, t := range lookupTables {
		if t == table {
			known = true
		}
	}
	if !known {
		return nil, fmt.Errorf("unknown lookup table %q", table)
	}

	rows, err := q.Query("SELECT code, description FROM " + table + " ORDER BY code")
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", table, err)
	}
	defer rows.Close()

	var out []model.LookupType
	for rows.Next() {
		var lt model.LookupType
		if err := rows.Scan(&lt.Code, &lt.Description); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", table, err)
		}
		out = append(out, lt)
	}
	return out, rows.Err()
}

// --- helpers ---

// nullIfEmpty maps "" to SQL NULL.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nilIfZeroPtr returns nil if p is nil, otherwise returns *p (for sql parameter binding).
func nilIfZeroPtr(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

// maxInParams bounds the number of bound parameters in one IN (...) list.
const maxInParams = 500

// chunkIDs splits ids into slices of at most maxInParams.
func chunkIDs(ids []any) [][]any {
	var out [][]any
	for len(ids) > maxInParams {
		out = append(out, ids[:maxInParams])
		ids = ids[maxInParams:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}

// makePlaceholders returns "?, ?, ..." with n placeholders.
func makePlaceholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

func lastID(res sql.Result) (int, error) {
	id64, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}
	return int(id64), nil
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// validateISODate accepts "" or a YYYY-MM-DD calendar date.
func validateISODate(field, v string) error {
	if v == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", v); err != nil {
		return fmt.Errorf("%w: %s must be YYYY-MM-DD, got %q", ErrInvalid, field, v)
	}
	return nil
}

// validateDatePair enforces that at most one of an exact/approximate pair is set.
func validateDatePair(field, exact, approx string) error {
	if exact != "" && approx != "" {
		return fmt.Errorf("%w: %s and %s_approx are mutually exclusive", ErrInvalid, field, field)
	}
	return validateISODate(field, exact)
}
