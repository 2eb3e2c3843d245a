package record

import (
	"strconv"
	"time"

	"github.com/caldera-ops/opsync/internal/core/domain"
	"github.com/caldera-ops/opsync/internal/logger"
	"github.com/caldera-ops/opsync/internal/normalisers/dates"
)

// AliasTable maps each canonical field to an ordered list of acceptable
// source key names. The first alias present and non-empty in a raw row
// wins.
type AliasTable map[string][]string

// Defaults supplies the value used when no alias resolves for a field.
type Defaults map[string]string

// Normaliser converts raw source rows into fully populated canonical
// records. It is the only place loosely typed source data is touched.
type Normaliser struct {
	aliases  AliasTable
	defaults Defaults
	clock    func() time.Time
}

// New creates a normaliser for one collection's alias table and
// defaults.
func New(aliases AliasTable, defaults Defaults) *Normaliser {
	return &Normaliser{
		aliases:  aliases,
		defaults: defaults,
		clock:    time.Now,
	}
}

// WithClock overrides the clock used for date fallbacks. For tests.
func (n *Normaliser) WithClock(clock func() time.Time) *Normaliser {
	n.clock = clock
	return n
}

// Normalise maps one raw row onto the canonical schema. The second
// return value is false when the resolved natural key is empty; such
// rows must be dropped and tallied as skipped, never forwarded.
func (n *Normaliser) Normalise(raw domain.RawRecord) (domain.Record, bool) {
	var rec domain.Record

	for _, field := range domain.CanonicalFields {
		if field == domain.FieldTimestamp {
			continue
		}
		rec.SetField(field, n.resolve(raw, field))
	}
	rec.Timestamp = dates.NormaliseAt(n.resolve(raw, domain.FieldTimestamp), n.clock())

	if rec.Key() == "" {
		return domain.Record{}, false
	}
	return rec, true
}

// NormaliseAll maps a batch of raw rows, preserving source order, and
// returns the number of rows skipped for an empty natural key.
func (n *Normaliser) NormaliseAll(rows []domain.RawRecord) ([]domain.Record, int) {
	records := make([]domain.Record, 0, len(rows))
	skipped := 0

	for _, raw := range rows {
		rec, ok := n.Normalise(raw)
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}

	if skipped > 0 {
		logger.Debug("record: skipped %d rows with empty natural key", skipped)
	}
	return records, skipped
}

// resolve returns the first present, non-empty alias value for a
// canonical field, else the configured default.
func (n *Normaliser) resolve(raw domain.RawRecord, field string) string {
	for _, alias := range n.aliases[field] {
		v, ok := raw[alias]
		if !ok {
			continue
		}
		if s := asString(v); s != "" {
			return s
		}
	}
	return n.defaults[field]
}

// asString renders a scalar source value as a string. Non-scalar values
// render empty so they fall through to the default.
func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
