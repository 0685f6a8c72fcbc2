package sqlite

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// sqlTime scans DATETIME columns. The driver yields time.Time for values it
// wrote itself and text for values written by other tools.
type sqlTime struct {
	Time time.Time
}

func (t *sqlTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v.UTC()
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	case int64:
		t.Time = time.Unix(v, 0).UTC()
		return nil
	}
	return goerr.New("unsupported time value", goerr.V("value", src))
}

func (t *sqlTime) parse(s string) error {
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return goerr.New("invalid time format", goerr.V("value", s))
}
