package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ID identifies a package or a media item.
//
// An ID is either Local (a number assigned by the client before the item was
// ever stored remotely) or Remote (the uuid the catalog store assigned on
// insert). Only Remote ids are sent to the catalog store; Local ids always
// lead to an insert followed by a remap to the returned Remote id.
type ID struct {
	local  uint64
	remote string
}

func LocalID(n uint64) ID { return ID{local: n} }

// RemoteID wraps a server-assigned id. The value is normalized to the
// canonical uuid form when it parses as one.
func RemoteID(s string) ID {
	if u, err := uuid.Parse(s); err == nil {
		s = u.String()
	}
	return ID{remote: s}
}

// ParseID classifies a textual id: uuids are remote, unsigned integers are
// local, anything else is rejected.
func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ID{}, nil
	}
	if u, err := uuid.Parse(s); err == nil {
		return ID{remote: u.String()}, nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return ID{}, fmt.Errorf("invalid id %q", s)
	}
	return ID{local: n}, nil
}

func (id ID) IsRemote() bool { return id.remote != "" }

func (id ID) IsZero() bool { return id.remote == "" && id.local == 0 }

func (id ID) Remote() string { return id.remote }

func (id ID) Local() uint64 { return id.local }

func (id ID) String() string {
	if id.IsRemote() {
		return id.remote
	}
	return strconv.FormatUint(id.local, 10)
}

// MarshalJSON keeps the wire shape browsers already cache: numbers for local
// ids, strings for remote ones.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsRemote() {
		return json.Marshal(id.remote)
	}
	return []byte(strconv.FormatUint(id.local, 10)), nil
}

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ID{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		parsed, err := ParseID(s)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	}
	// Clients generate local ids with Date.now(), which can arrive as a float.
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("invalid id %s", b)
	}
	if f < 0 || f != float64(uint64(f)) {
		return fmt.Errorf("invalid local id %s", b)
	}
	*id = ID{local: uint64(f)}
	return nil
}
