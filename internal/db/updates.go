package db

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// updateSpec describes the columns of a table that partial updates may touch.
type updateSpec struct {
	table  string
	entity string // change log entity; empty disables logging
	fields map[string]bool
	// datePairs maps each exact-date column to its approximate twin.
	datePairs map[string]string
}

// applyUpdate sets the given columns on one row. Keys must be listed in
// spec.fields; values may be string, int, *int or nil, and "" is stored as
// NULL. Setting one side of an exact/approximate date pair clears the other.
// A change log entry is written for every column whose value changes.
func applyUpdate(tx *sql.Tx, spec updateSpec, id int, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}

	normalized, err := normalizeUpdates(spec, updates)
	if err != nil {
		return err
	}

	// Sort keys for deterministic query generation.
	fields := make([]string, 0, len(normalized))
	for field := range normalized {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	old, err := currentValues(tx, spec.table, id, fields)
	if err != nil {
		return err
	}

	setClauses := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	for _, field := range fields {
		setClauses = append(setClauses, field+" = ?")
		args = append(args, normalized[field])
	}
	args = append(args, id)

	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = ?",
		spec.table, strings.Join(setClauses, ", "),
	)
	res, err := tx.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("updating %s: %w", spec.table, err)
	}
	if err := checkAffected(res); err != nil {
		return err
	}

	if spec.entity == "" {
		return nil
	}
	for _, field := range fields {
		newVal := valueString(normalized[field])
		if old[field] != newVal {
			if err := RecordChange(tx, spec.entity, id, field, old[field], newVal); err != nil {
				return err
			}
		}
	}
	return nil
}

func normalizeUpdates(spec updateSpec, updates map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(updates)+2)
	for field, v := range updates {
		if !spec.fields[field] || !safeIdentifier.MatchString(field) {
			return nil, fmt.Errorf("%w: unknown update field %q", ErrInvalid, field)
		}
		switch val := v.(type) {
		case nil:
			out[field] = nil
		case string:
			out[field] = nullIfEmpty(val)
		case int:
			out[field] = val
		case *int:
			out[field] = nilIfZeroPtr(val)
		default:
			return nil, fmt.Errorf("%w: unsupported value type %T for %q", ErrInvalid, v, field)
		}
	}

	for exact, approx := range spec.datePairs {
		ev, hasExact := out[exact]
		av, hasApprox := out[approx]
		setExact := hasExact && ev != nil
		setApprox := hasApprox && av != nil
		if setExact && setApprox {
			return nil, fmt.Errorf("%w: %s and %s are mutually exclusive", ErrInvalid, exact, approx)
		}
		if setExact {
			if err := validateISODate(exact, ev.(string)); err != nil {
				return nil, err
			}
			out[approx] = nil
		}
		if setApprox {
			out[exact] = nil
		}
	}
	return out, nil
}

// currentValues reads the string form of fields for one row.
func currentValues(q querier, table string, id int, fields []string) (map[string]string, error) {
	dest := make([]sql.NullString, len(fields))
	ptrs := make([]any, len(fields))
	for i := range dest {
		ptrs[i] = &dest[i]
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", strings.Join(fields, ", "), table)
	if err := q.QueryRow(query, id).Scan(ptrs...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading %s: %w", table, err)
	}

	out := make(map[string]string, len(fields))
	for i, f := range fields {
		out[f] = dest[i].String
	}
	return out, nil
}

func valueString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	default:
		return fmt.Sprint(val)
	}
}
