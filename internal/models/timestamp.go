package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// isoLayout matches JavaScript's Date.prototype.toISOString, which is how
// existing documents store createdAt. Keeping one fixed-width layout makes
// lexical order equal to chronological order for the createdAt sort.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// Timestamp is stored as an ISO-8601 string but can be decoded from a BSON
// datetime as well, so documents written by other tools still load.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC().Truncate(time.Millisecond)}
}

func Now() Timestamp {
	return NewTimestamp(time.Now())
}

func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(isoLayout)
}

// MarshalBSONValue always writes the ISO string form.
func (t Timestamp) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(t.String())
}

// UnmarshalBSONValue accepts string, datetime and null values.
func (t *Timestamp) UnmarshalBSONValue(bt bsontype.Type, data []byte) error {
	switch bt {
	case bsontype.Null, bsontype.Undefined:
		*t = Timestamp{}
		return nil
	case bsontype.DateTime:
		var dt primitive.DateTime
		if err := bson.UnmarshalValue(bt, data, &dt); err != nil {
			return err
		}
		*t = NewTimestamp(dt.Time())
		return nil
	case bsontype.String:
		var value string
		if err := bson.UnmarshalValue(bt, data, &value); err != nil {
			return err
		}
		parsed, err := parseTimestamp(value)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	default:
		return fmt.Errorf("cannot decode %s into Timestamp", bt)
	}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.String() + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	value := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if value == "" || value == "null" {
		*t = Timestamp{}
		return nil
	}
	parsed, err := parseTimestamp(value)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func parseTimestamp(value string) (Timestamp, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return Timestamp{}, nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, trimmed)
	if err != nil {
		return Timestamp{}, fmt.Errorf("invalid timestamp %q: %w", value, err)
	}
	return NewTimestamp(parsed), nil
}
