package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dmitrymomot/stockdash/pkg/identity"
)

// The list endpoint answers in one of four shapes, depending on backend
// version: a bare array, {"list_of_users": [...]}, {"users": [...]}, or an
// arbitrary object whose values are user records. Decoding runs an ordered
// set of shape matchers over the payload rather than coercing types; the
// result is order-preserving in all four cases, including document order
// for the object-of-records shape.

const (
	defaultUsername = "unknown"
	defaultEmail    = "no-email"
)

// NormalizeUserList decodes any tolerated list payload into a uniform,
// field-complete slice. Records lacking both username and email are dropped;
// missing fields on the survivors are backfilled with safe defaults.
func NormalizeUserList(data []byte) ([]identity.User, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty user list payload", ErrTransport)
	}

	var records []json.RawMessage
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, &TransportError{Op: "decode user list", Err: err}
		}
	case '{':
		var err error
		records, err = matchObjectShape(trimmed)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unrecognized user list shape", ErrTransport)
	}

	users := make([]identity.User, 0, len(records))
	for _, raw := range records {
		var payload userPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			// Non-record values appear in the object shape; skip them.
			continue
		}
		if payload.Username == "" && payload.Email == "" {
			continue
		}
		users = append(users, withDefaults(payload.toUser()))
	}
	return users, nil
}

// matchObjectShape scans the top-level object in document order. A
// "list_of_users" or "users" array key wins; otherwise every value is
// treated as a candidate record.
func matchObjectShape(data []byte) ([]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	if _, err := dec.Token(); err != nil { // opening brace
		return nil, &TransportError{Op: "decode user list", Err: err}
	}

	type entry struct {
		key   string
		value json.RawMessage
	}
	var entries []entry

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, &TransportError{Op: "decode user list", Err: err}
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: malformed user list object", ErrTransport)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, &TransportError{Op: "decode user list", Err: err}
		}
		entries = append(entries, entry{key: key, value: value})
	}

	// Wrapper keys take precedence over the generic object scan.
	for _, wrapper := range []string{"list_of_users", "users"} {
		for _, e := range entries {
			if e.key != wrapper {
				continue
			}
			var records []json.RawMessage
			if err := json.Unmarshal(e.value, &records); err == nil {
				return records, nil
			}
		}
	}

	records := make([]json.RawMessage, 0, len(entries))
	for _, e := range entries {
		records = append(records, e.value)
	}
	return records, nil
}

func withDefaults(u identity.User) identity.User {
	if u.Username == "" {
		u.Username = defaultUsername
	}
	if u.Email == "" {
		u.Email = defaultEmail
	}
	if u.Role == "" {
		u.Role = identity.RoleStandard
	}
	return u
}
