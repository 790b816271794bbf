package transcript

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"scenecraft/internal/services"
)

// Format selects the decoder for timestamp data.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath infers the format from a file extension, defaulting to JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ParseFile reads and normalizes a timestamp file.
func ParseFile(path string) ([]WordTimestamp, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrInput, "transcript", "read", path, err)
	}
	words, err := Parse(data, FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return words, nil
}

// Parse decodes data and normalizes every recognized item.
func Parse(data []byte, format Format) ([]WordTimestamp, error) {
	var root any
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &root)
	default:
		err = json.Unmarshal(data, &root)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrInput, "transcript", "decode", string(format), err)
	}

	items, err := collectItems(root)
	if err != nil {
		return nil, err
	}
	words := make([]WordTimestamp, 0, len(items))
	for i, item := range items {
		word, err := normalizeItem(item)
		if err != nil {
			return nil, services.Wrap(services.ErrInput, "transcript", "normalize", fmt.Sprintf("item %d", i), err)
		}
		words = append(words, word)
	}
	return words, nil
}

// collectItems flattens the supported container layouts into a list of item maps.
func collectItems(root any) ([]map[string]any, error) {
	switch v := root.(type) {
	case []any:
		return asMaps(v)
	case map[string]any:
		for _, key := range []string{"words", "timestamps"} {
			if list, ok := v[key].([]any); ok {
				return asMaps(list)
			}
		}
		if segments, ok := v["segments"].([]any); ok {
			var items []map[string]any
			for i, seg := range segments {
				segMap, ok := seg.(map[string]any)
				if !ok {
					return nil, services.Wrap(services.ErrInput, "transcript", "decode", fmt.Sprintf("segment %d is not an object", i), nil)
				}
				list, _ := segMap["words"].([]any)
				more, err := asMaps(list)
				if err != nil {
					return nil, err
				}
				items = append(items, more...)
			}
			return items, nil
		}
	case nil:
		return nil, nil
	}
	return nil, services.Wrap(services.ErrInput, "transcript", "decode", "unrecognized timestamp layout", nil)
}

func asMaps(list []any) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(list))
	for i, entry := range list {
		m, ok := entry.(map[string]any)
		if !ok {
			return nil, services.Wrap(services.ErrInput, "transcript", "decode", fmt.Sprintf("item %d is not an object", i), nil)
		}
		out = append(out, m)
	}
	return out, nil
}

type shape int

const (
	shapeUnknown shape = iota
	shapeMillis
	shapeSeconds
	shapeStartDuration
)

func detectShape(item map[string]any) shape {
	switch {
	case has(item, "start_ms") || has(item, "end_ms"):
		return shapeMillis
	case has(item, "startTime"):
		return shapeStartDuration
	case has(item, "start") || has(item, "end"):
		return shapeSeconds
	default:
		return shapeUnknown
	}
}

func normalizeItem(item map[string]any) (WordTimestamp, error) {
	word := WordTimestamp{Text: itemText(item)}
	var err error
	switch detectShape(item) {
	case shapeMillis:
		var start, end float64
		if start, err = number(item, "start_ms"); err != nil {
			return word, err
		}
		if end, err = number(item, "end_ms"); err != nil {
			return word, err
		}
		word.StartMS, word.EndMS = roundMS(start), roundMS(end)
	case shapeSeconds:
		var start, end float64
		if start, err = number(item, "start"); err != nil {
			return word, err
		}
		if end, err = number(item, "end"); err != nil {
			return word, err
		}
		word.StartMS, word.EndMS = roundMS(start*1000), roundMS(end*1000)
	case shapeStartDuration:
		var start, dur float64
		if start, err = number(item, "startTime"); err != nil {
			return word, err
		}
		if has(item, "endTime") {
			var end float64
			if end, err = number(item, "endTime"); err != nil {
				return word, err
			}
			dur = end - start
		} else if dur, err = number(item, "duration"); err != nil {
			return word, err
		}
		word.StartMS, word.EndMS = roundMS(start), roundMS(start+dur)
	default:
		return word, fmt.Errorf("no recognizable timing fields")
	}
	if word.StartMS < 0 {
		word.StartMS = 0
	}
	if word.EndMS < word.StartMS {
		word.EndMS = word.StartMS
	}
	return word, nil
}

func itemText(item map[string]any) string {
	for _, key := range []string{"text", "word", "value"} {
		if s, ok := item[key].(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func has(item map[string]any, key string) bool {
	v, ok := item[key]
	return ok && v != nil
}

func number(item map[string]any, key string) (float64, error) {
	raw, ok := item[key]
	if !ok || raw == nil {
		return 0, nil
	}
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint64:
		f = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("%s: unsupported value %v", key, raw)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s: not a finite number", key)
	}
	return f, nil
}

func roundMS(v float64) int64 {
	return int64(math.Round(v))
}
