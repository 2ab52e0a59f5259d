package provider

import "github.com/tidwall/sjson"

// MergeExtra shallow-merges extra's keys into the top level of a
// marshaled JSON request body. Adapters call this last, after building
// their own typed body, so that a caller can pass through
// provider-specific fields (a Cerebras-only sampling knob, a Gemini
// safety setting) without every adapter needing a field for it.
//
// When the same key also appears in extra, extra's value replaces the
// typed field: sjson.SetBytes overwrites an existing key. Callers
// owning Extra are responsible for not colliding with fields the
// adapter already set.
func MergeExtra(body []byte, extra map[string]any) ([]byte, error) {
	if len(extra) == 0 {
		return body, nil
	}
	var err error
	for k, v := range extra {
		body, err = sjson.SetBytes(body, k, v)
		if err != nil {
			return nil, err
		}
	}
	return body, nil
}
