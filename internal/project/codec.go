package project

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"sync"

	"scenecraft/internal/services"
)

// Decode parses a document. Unparseable input is reported as ErrCorrupt.
func Decode(data []byte) (*Project, error) {
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, services.Wrap(services.ErrCorrupt, "project", "decode", "document is not a JSON object", nil)
	}
	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, services.Wrap(services.ErrCorrupt, "project", "decode", "parse document", err)
	}
	if p.Assets == nil {
		p.Assets = map[string]Asset{}
	}
	return &p, nil
}

// Encode serializes the document. The version marker is raised to
// SchemaVersion when the loaded marker is older and kept otherwise.
func (p *Project) Encode() ([]byte, error) {
	out := *p
	out.Version = EffectiveVersion(p.Version)
	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "project", "encode", "serialize document", err)
	}
	return data, nil
}

func (p *Project) UnmarshalJSON(data []byte) error {
	type plain Project
	var decoded plain
	extras, err := decodeObject(data, &decoded)
	if err != nil {
		return err
	}
	*p = Project(decoded)
	p.Extras = extras
	return nil
}

func (p Project) MarshalJSON() ([]byte, error) {
	type plain Project
	return withUnknownFields(plain(p), p.Extras)
}

func (c *Canvas) UnmarshalJSON(data []byte) error {
	type plain Canvas
	var decoded plain
	extras, err := decodeObject(data, &decoded)
	if err != nil {
		return err
	}
	*c = Canvas(decoded)
	c.Extras = extras
	return nil
}

func (c Canvas) MarshalJSON() ([]byte, error) {
	type plain Canvas
	return withUnknownFields(plain(c), c.Extras)
}

func (f *FileEntry) UnmarshalJSON(data []byte) error {
	type plain FileEntry
	var decoded plain
	extras, err := decodeObject(data, &decoded)
	if err != nil {
		return err
	}
	*f = FileEntry(decoded)
	f.Extras = extras
	return nil
}

func (f FileEntry) MarshalJSON() ([]byte, error) {
	type plain FileEntry
	return withUnknownFields(plain(f), f.Extras)
}

func (m *MediaMetadata) UnmarshalJSON(data []byte) error {
	type plain MediaMetadata
	var decoded plain
	extras, err := decodeObject(data, &decoded)
	if err != nil {
		return err
	}
	*m = MediaMetadata(decoded)
	m.Extras = extras
	return nil
}

func (m MediaMetadata) MarshalJSON() ([]byte, error) {
	type plain MediaMetadata
	return withUnknownFields(plain(m), m.Extras)
}

func (s *Scene) UnmarshalJSON(data []byte) error {
	type plain Scene
	var decoded plain
	extras, err := decodeObject(data, &decoded)
	if err != nil {
		return err
	}
	*s = Scene(decoded)
	s.Extras = extras
	return nil
}

func (s Scene) MarshalJSON() ([]byte, error) {
	type plain Scene
	return withUnknownFields(plain(s), s.Extras)
}

func (c *Clip) UnmarshalJSON(data []byte) error {
	type plain Clip
	var decoded plain
	extras, err := decodeObject(data, &decoded)
	if err != nil {
		return err
	}
	*c = Clip(decoded)
	c.Extras = extras
	return nil
}

func (c Clip) MarshalJSON() ([]byte, error) {
	type plain Clip
	return withUnknownFields(plain(c), c.Extras)
}

func (r *AudioRange) UnmarshalJSON(data []byte) error {
	type plain AudioRange
	var decoded plain
	extras, err := decodeObject(data, &decoded)
	if err != nil {
		return err
	}
	*r = AudioRange(decoded)
	r.Extras = extras
	return nil
}

func (r AudioRange) MarshalJSON() ([]byte, error) {
	type plain AudioRange
	return withUnknownFields(plain(r), r.Extras)
}

func (w *Word) UnmarshalJSON(data []byte) error {
	type plain Word
	var decoded plain
	extras, err := decodeObject(data, &decoded)
	if err != nil {
		return err
	}
	*w = Word(decoded)
	w.Extras = extras
	return nil
}

func (w Word) MarshalJSON() ([]byte, error) {
	type plain Word
	return withUnknownFields(plain(w), w.Extras)
}

func (pt *Point) UnmarshalJSON(data []byte) error {
	type plain Point
	var decoded plain
	extras, err := decodeObject(data, &decoded)
	if err != nil {
		return err
	}
	*pt = Point(decoded)
	pt.Extras = extras
	return nil
}

func (pt Point) MarshalJSON() ([]byte, error) {
	type plain Point
	return withUnknownFields(plain(pt), pt.Extras)
}

func (sz *Size) UnmarshalJSON(data []byte) error {
	type plain Size
	var decoded plain
	extras, err := decodeObject(data, &decoded)
	if err != nil {
		return err
	}
	*sz = Size(decoded)
	sz.Extras = extras
	return nil
}

func (sz Size) MarshalJSON() ([]byte, error) {
	type plain Size
	return withUnknownFields(plain(sz), sz.Extras)
}

func (a *Asset) UnmarshalJSON(data []byte) error {
	type plain Asset
	var decoded plain
	extras, err := decodeObject(data, &decoded)
	if err != nil {
		return err
	}
	*a = Asset(decoded)
	a.Extras = extras
	return nil
}

func (a Asset) MarshalJSON() ([]byte, error) {
	type plain Asset
	return withUnknownFields(plain(a), a.Extras)
}

func (st *Style) UnmarshalJSON(data []byte) error {
	type plain Style
	var decoded plain
	extras, err := decodeObject(data, &decoded)
	if err != nil {
		return err
	}
	*st = Style(decoded)
	st.Extras = extras
	return nil
}

func (st Style) MarshalJSON() ([]byte, error) {
	type plain Style
	return withUnknownFields(plain(st), st.Extras)
}

func (b *Bookkeeping) UnmarshalJSON(data []byte) error {
	type plain Bookkeeping
	var decoded plain
	extras, err := decodeObject(data, &decoded)
	if err != nil {
		return err
	}
	*b = Bookkeeping(decoded)
	b.Extras = extras
	return nil
}

func (b Bookkeeping) MarshalJSON() ([]byte, error) {
	type plain Bookkeeping
	return withUnknownFields(plain(b), b.Extras)
}

var knownKeyCache sync.Map // reflect.Type -> map[string]struct{}

// knownKeys returns the JSON names of t's exported, non-skipped fields.
func knownKeys(t reflect.Type) map[string]struct{} {
	if cached, ok := knownKeyCache.Load(t); ok {
		return cached.(map[string]struct{})
	}
	keys := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "" {
			name = field.Name
		}
		keys[name] = struct{}{}
	}
	knownKeyCache.Store(t, keys)
	return keys
}

// decodeObject unmarshals data into v, a pointer to a struct, and returns the
// members of data that struct does not declare.
func decodeObject(data []byte, v any) (map[string]json.RawMessage, error) {
	if err := json.Unmarshal(data, v); err != nil {
		return nil, err
	}
	return unknownFields(data, reflect.TypeOf(v).Elem())
}

// unknownFields returns the members of the JSON object data that t does not
// declare. nil is returned when there are none.
func unknownFields(data []byte, t reflect.Type) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	known := knownKeys(t)
	var extras map[string]json.RawMessage
	for key, value := range raw {
		if _, ok := known[key]; ok {
			continue
		}
		if extras == nil {
			extras = make(map[string]json.RawMessage)
		}
		extras[key] = value
	}
	return extras, nil
}

// withUnknownFields marshals v and merges extras into the resulting object.
// Modeled fields win over extras with the same name.
func withUnknownFields(v any, extras map[string]json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(extras) == 0 {
		return data, nil
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for key, value := range extras {
		if _, exists := merged[key]; !exists {
			merged[key] = value
		}
	}
	return json.Marshal(merged)
}
