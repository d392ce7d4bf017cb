package feed

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dotnetTime decodes the WCF-style "/Date(1702858800000-0800)/" timestamps
// the WSDOT API emits. The milliseconds are already UTC; the zone suffix is
// display-only and ignored. null and empty values decode to the zero time.
type dotnetTime struct {
	time.Time
}

func (t *dotnetTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		t.Time = time.Time{}
		return nil
	}
	s = strings.TrimPrefix(s, "/Date(")
	s = strings.TrimSuffix(s, ")/")
	if s == "" {
		return fmt.Errorf("parse .NET date %q: no milliseconds", string(b))
	}
	if i := strings.IndexAny(s[1:], "+-"); i >= 0 {
		s = s[:i+1]
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("parse .NET date %q: %w", string(b), err)
	}
	t.Time = time.UnixMilli(ms).UTC()
	return nil
}

func (t dotnetTime) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf(`"/Date(%d+0000)/"`, t.Time.UnixMilli())), nil
}
