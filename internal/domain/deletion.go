package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Deletion is the soft-delete state of a row: either active or deleted
// at a known instant. Modeled as a tagged value instead of a bare
// nullable timestamp so callers cannot read a zero time as "deleted".
type Deletion struct {
	At    time.Time
	Valid bool
}

func DeletedAt(at time.Time) Deletion {
	return Deletion{At: at, Valid: true}
}

func (d Deletion) IsDeleted() bool {
	return d.Valid
}

func (d Deletion) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}

	return json.Marshal(d.At)
}

func (d *Deletion) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Deletion{}
		return nil
	}

	var at time.Time
	if err := json.Unmarshal(data, &at); err != nil {
		return err
	}

	*d = DeletedAt(at)
	return nil
}

// Scan implements sql.Scanner for nullable timestamp columns.
func (d *Deletion) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Deletion{}
		return nil
	case time.Time:
		*d = DeletedAt(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into domain.Deletion", src)
	}
}

func (d Deletion) Value() (driver.Value, error) {
	if !d.Valid {
		return nil, nil
	}

	return d.At, nil
}
