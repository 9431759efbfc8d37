package action

import (
	"encoding/json"
	"fmt"
	"sort"
)

// MarshalJSON emits the action's canonical wire form: sorted keys, NFC
// strings, no HTML escaping. Marshaling a record that fails validation is
// an error; the codec never produces bytes the parser would reject.
func (a Action) MarshalJSON() ([]byte, error) {
	if err := (&a).verify("MarshalJSON"); err != nil {
		return nil, err
	}
	return MarshalCanonical(a.wire())
}

// wire converts the action to its canonical Object form. Only called on
// verified records, so sync actions cannot smuggle phase or progress.
func (a *Action) wire() Object {
	meta := Object{
		"sign":  String(a.Meta.Sign),
		"id":    String(a.Meta.ID),
		"ctime": String(a.Meta.CTime),
		"async": Bool(a.Meta.Async),
		"uniq":  Bool(a.Meta.Uniq),
	}
	if a.Meta.PID != "" {
		meta["pid"] = String(a.Meta.PID)
	}
	if a.Meta.UTime != "" {
		meta["utime"] = String(a.Meta.UTime)
	}
	if a.Meta.Async {
		meta["phase"] = String(a.Meta.Phase)
		meta["progress"] = Int(a.Meta.Progress)
	}

	obj := Object{
		"type":  String(a.Type),
		"error": Bool(a.Error),
		"meta":  meta,
	}
	if a.Payload != nil {
		obj["payload"] = a.Payload
	}
	return obj
}

// UnmarshalJSON decodes wire bytes via Parse, with the same strictness.
func (a *Action) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*a = *parsed
	return nil
}

// Parse decodes wire bytes into an Action under the closed schema: exact
// top-level and metadata key sets, typed fields, matching sign. Any
// violation is a usage error with code MALFORMED. Parse accepts exactly
// what MarshalJSON produces plus reordered keys and arbitrary number/
// string formatting - JSON-level equivalence, nothing looser.
func Parse(data []byte) (*Action, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, newMalformedError("Parse", "not a JSON object", err)
	}
	if raw == nil {
		return nil, newMalformedError("Parse", "null is not an action", nil)
	}

	for _, k := range requiredActionKeys {
		if _, present := raw[k]; !present {
			return nil, newMalformedError("Parse", fmt.Sprintf("missing key %q", k), nil)
		}
	}
	for _, k := range sortedRawKeys(raw) {
		if !allowedActionKeys[k] {
			return nil, newMalformedError("Parse", fmt.Sprintf("unexpected key %q", k), nil)
		}
	}

	var a Action
	if err := json.Unmarshal(raw["type"], &a.Type); err != nil {
		return nil, newMalformedError("Parse", "type: want a string", err)
	}
	if err := json.Unmarshal(raw["error"], &a.Error); err != nil {
		return nil, newMalformedError("Parse", "error: want a boolean", err)
	}
	if rawPayload, present := raw["payload"]; present {
		payload, err := ParseValue(rawPayload)
		if err != nil {
			return nil, newMalformedError("Parse", "payload: not a plain value", err)
		}
		a.Payload = payload
	}
	if err := parseMeta(raw["meta"], &a.Meta); err != nil {
		return nil, err
	}

	if a.Meta.Sign != Sign {
		return nil, newMalformedError("Parse", fmt.Sprintf("meta.sign: want %q, got %q", Sign, a.Meta.Sign), nil)
	}
	return &a, nil
}

func parseMeta(data json.RawMessage, m *Meta) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return newMalformedError("Parse", "meta: not a JSON object", err)
	}
	if raw == nil {
		return newMalformedError("Parse", "meta: null is not a metadata record", nil)
	}

	for _, k := range requiredMetaKeys {
		if _, present := raw[k]; !present {
			return newMalformedError("Parse", fmt.Sprintf("meta: missing key %q", k), nil)
		}
	}
	if err := json.Unmarshal(raw["async"], &m.Async); err != nil {
		return newMalformedError("Parse", "meta.async: want a boolean", err)
	}
	for _, k := range sortedRawKeys(raw) {
		if allowedMetaKeys[k] || (m.Async && asyncOnlyKeys[k]) {
			continue
		}
		return newMalformedError("Parse", fmt.Sprintf("meta: unexpected key %q", k), nil)
	}

	fields := []struct {
		key string
		dst *string
	}{
		{"sign", &m.Sign},
		{"id", &m.ID},
		{"pid", &m.PID},
		{"ctime", &m.CTime},
		{"utime", &m.UTime},
	}
	for _, f := range fields {
		rawField, present := raw[f.key]
		if !present {
			continue
		}
		if err := json.Unmarshal(rawField, f.dst); err != nil {
			return newMalformedError("Parse", fmt.Sprintf("meta.%s: want a string", f.key), err)
		}
	}
	if err := json.Unmarshal(raw["uniq"], &m.Uniq); err != nil {
		return newMalformedError("Parse", "meta.uniq: want a boolean", err)
	}

	if rawPhase, present := raw["phase"]; present {
		var s string
		if err := json.Unmarshal(rawPhase, &s); err != nil {
			return newMalformedError("Parse", "meta.phase: want a string", err)
		}
		m.Phase = Phase(s)
	}
	if rawProgress, present := raw["progress"]; present {
		if err := json.Unmarshal(rawProgress, &m.Progress); err != nil {
			return newMalformedError("Parse", "meta.progress: want an integer", err)
		}
	}
	return nil
}

func sortedRawKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
