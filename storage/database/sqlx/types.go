package sqlxrepos

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/pkg/errors"
)

// jsonMap maps a subject -> text column stored as JSONB.
type jsonMap map[string]string

func (m jsonMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (m *jsonMap) Scan(src interface{}) error {
	if src == nil {
		*m = make(jsonMap)
		return nil
	}
	data, ok := src.([]byte)
	if !ok {
		return errors.Errorf("jsonMap.Scan: unexpected type %T", src)
	}
	return json.Unmarshal(data, m)
}
