package binfile

import "encoding/json"

// Metadata is the per-compilation key/value annotation set attached to a
// binary file's header (e.g. source path, build timestamp), populated from
// the compiler's `-D key=value` flags. Unlike a generic JSON-value map,
// this format only ever stores the string values `-D` produces, so a plain
// map[string]string suffices here.
type Metadata map[string]string

// ToJSON encodes this metadata as a JSON object, used as the header's
// MetaData field.
func (m Metadata) ToJSON() ([]byte, error) {
	if len(m) == 0 {
		return nil, nil
	}

	return json.Marshal(map[string]string(m))
}

// MetadataFromJSON parses a header's MetaData bytes back into a Metadata
// map. Empty input yields an empty, non-nil map.
func MetadataFromJSON(data []byte) (Metadata, error) {
	if len(data) == 0 {
		return Metadata{}, nil
	}

	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	return Metadata(m), nil
}
