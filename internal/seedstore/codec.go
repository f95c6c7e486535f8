package seedstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/atinyakov/seedkeeper/internal/models"
)

// legacySeparator joined the key list in releases that predate the JSON encoding.
const legacySeparator = ";"

// encodeKeys stores the list as a JSON array so that no key string can break
// the framing.
func encodeKeys(keys []string) ([]byte, error) {
	if keys == nil {
		keys = []string{}
	}
	raw, err := json.Marshal(keys)
	if err != nil {
		return nil, fmt.Errorf("encode key list: %w", err)
	}
	return raw, nil
}

// decodeKeys reads both the JSON array and the legacy ';'-joined format.
// Legacy values drop empty segments.
func decodeKeys(raw []byte) ([]string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var keys []string
		if err := json.Unmarshal(trimmed, &keys); err != nil {
			return nil, fmt.Errorf("%w: key list: %v", ErrCorrupt, err)
		}
		if keys == nil {
			keys = []string{}
		}
		return keys, nil
	}

	keys := []string{}
	for _, part := range strings.Split(string(raw), legacySeparator) {
		if part != "" {
			keys = append(keys, part)
		}
	}
	return keys, nil
}

func encodeHeight(h models.BlockHeight) []byte {
	return []byte(strconv.FormatUint(uint64(h), 10))
}

func decodeHeight(raw []byte) (models.BlockHeight, error) {
	h, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: block height %q: %v", ErrCorrupt, raw, err)
	}
	return models.BlockHeight(h), nil
}
