package domain

import (
	"strings"
	"time"
)

// Collection identifies an independent record collection. Each collection
// has its own source endpoint, alias table, and sync pipeline instance.
type Collection string

const (
	// CollectionTickets is the service-ticket collection.
	CollectionTickets Collection = "tickets"

	// CollectionIncidents is the incident collection.
	CollectionIncidents Collection = "incidents"
)

// RawRecord is one row as returned by the external source. Its shape is
// controlled entirely by the source and must not cross past the record
// normaliser.
type RawRecord map[string]any

// Canonical field names. These name both record fields and the keys of
// alias tables and compare whitelists in configuration.
const (
	FieldNaturalKey  = "naturalKey"
	FieldStatus      = "status"
	FieldType        = "type"
	FieldSeverity    = "severity"
	FieldCategory    = "category"
	FieldSubCategory = "subCategory"
	FieldSubject     = "subject"
	FieldAssignee    = "assignee"
	FieldAction      = "action"
	FieldResolution  = "resolution"
	FieldRemark      = "remark"
	FieldTimestamp   = "timestamp"
)

// CanonicalFields lists every canonical field in declaration order.
var CanonicalFields = []string{
	FieldNaturalKey,
	FieldStatus,
	FieldType,
	FieldSeverity,
	FieldCategory,
	FieldSubCategory,
	FieldSubject,
	FieldAssignee,
	FieldAction,
	FieldResolution,
	FieldRemark,
	FieldTimestamp,
}

// DefaultCompareFields is the compare whitelist applied when a collection
// does not configure its own. Fields outside the whitelist never cause a
// record to be classified as updated.
var DefaultCompareFields = []string{
	FieldStatus,
	FieldType,
	FieldSeverity,
	FieldCategory,
	FieldSubCategory,
	FieldSubject,
	FieldAssignee,
	FieldAction,
	FieldResolution,
	FieldRemark,
}

// Record is the canonical, fully populated record shape. After
// normalisation every string field holds either a source value or the
// configured default; none is ever absent.
type Record struct {
	// NaturalKey is the externally meaningful identifier (e.g. a ticket
	// number) used to correlate incoming and stored records.
	NaturalKey string

	Status      string
	Type        string
	Severity    string
	Category    string
	SubCategory string
	Subject     string
	Assignee    string
	Action      string
	Resolution  string
	Remark      string

	// Timestamp is the record's own event time, normalised to UTC.
	Timestamp time.Time

	// CreatedAt and UpdatedAt are store-managed audit timestamps. They
	// are zero on records that have not been persisted.
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Key returns the trimmed natural key used for matching.
func (r *Record) Key() string {
	return strings.TrimSpace(r.NaturalKey)
}

// Field returns the value of a canonical string field by name. Unknown
// field names and the timestamp return the empty string.
func (r *Record) Field(name string) string {
	switch name {
	case FieldNaturalKey:
		return r.NaturalKey
	case FieldStatus:
		return r.Status
	case FieldType:
		return r.Type
	case FieldSeverity:
		return r.Severity
	case FieldCategory:
		return r.Category
	case FieldSubCategory:
		return r.SubCategory
	case FieldSubject:
		return r.Subject
	case FieldAssignee:
		return r.Assignee
	case FieldAction:
		return r.Action
	case FieldResolution:
		return r.Resolution
	case FieldRemark:
		return r.Remark
	default:
		return ""
	}
}

// SetField sets the value of a canonical string field by name. Unknown
// field names and the timestamp are ignored.
func (r *Record) SetField(name, value string) {
	switch name {
	case FieldNaturalKey:
		r.NaturalKey = value
	case FieldStatus:
		r.Status = value
	case FieldType:
		r.Type = value
	case FieldSeverity:
		r.Severity = value
	case FieldCategory:
		r.Category = value
	case FieldSubCategory:
		r.SubCategory = value
	case FieldSubject:
		r.Subject = value
	case FieldAssignee:
		r.Assignee = value
	case FieldAction:
		r.Action = value
	case FieldResolution:
		r.Resolution = value
	case FieldRemark:
		r.Remark = value
	}
}
