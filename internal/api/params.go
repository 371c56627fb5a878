package api

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ALT-F4-LLC/pedigree/internal/db"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// pagination reads skip and limit query parameters.
func pagination(c *gin.Context) (db.ListOptions, error) {
	skip, err := intQuery(c, "skip", 0)
	if err != nil {
		return db.ListOptions{}, err
	}
	limit, err := intQuery(c, "limit", defaultLimit)
	if err != nil {
		return db.ListOptions{}, err
	}
	if skip < 0 || limit < 1 {
		return db.ListOptions{}, fmt.Errorf("%w: skip must be >= 0 and limit >= 1", errBadRequest)
	}
	return db.ListOptions{Offset: skip, Limit: min(limit, maxLimit)}, nil
}

func intQuery(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", errBadRequest, key)
	}
	return n, nil
}

// optionalIntQuery returns nil when key is absent.
func optionalIntQuery(c *gin.Context, key string) (*int, error) {
	if c.Query(key) == "" {
		return nil, nil
	}
	n, err := intQuery(c, key, 0)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func idParam(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: invalid id %q", errBadRequest, c.Param("id"))
	}
	return id, nil
}

// patch is a partial update body. Keys are column names; values are kept
// raw until the handler knows which keys carry lists.
type patch map[string]json.RawMessage

func bindPatch(c *gin.Context) (patch, error) {
	var p patch
	if err := c.ShouldBindJSON(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return p, nil
}

// take removes key from p and decodes it into dst. It reports whether the
// key was present.
func (p patch) take(key string, dst any) (bool, error) {
	raw, ok := p[key]
	if !ok {
		return false, nil
	}
	delete(p, key)
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf("%w: %s: %v", errBadRequest, key, err)
	}
	return true, nil
}

// updates converts the remaining keys to column values. intKeys are decoded
// as optional integers, everything else as optional strings; JSON null
// clears the column.
func (p patch) updates(intKeys ...string) (map[string]any, error) {
	isInt := make(map[string]bool, len(intKeys))
	for _, k := range intKeys {
		isInt[k] = true
	}

	out := make(map[string]any, len(p))
	for key, raw := range p {
		if isInt[key] {
			var v *int
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", errBadRequest, key, err)
			}
			out[key] = v
			continue
		}
		var v *string
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", errBadRequest, key, err)
		}
		if v == nil {
			out[key] = nil
		} else {
			out[key] = *v
		}
	}
	return out, nil
}
