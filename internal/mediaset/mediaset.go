package mediaset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"scenecraft/internal/services"
	"scenecraft/internal/textutil"
)

// MediaSet is the group of files that share one ordinal.
type MediaSet struct {
	Index         int
	AudioPath     string
	TimestampPath string
	VisualPath    string
}

// HasTimestamps reports whether a timestamp file was matched.
func (m MediaSet) HasTimestamps() bool { return m.TimestampPath != "" }

// Result carries matched sets in ascending index order plus per-file warnings.
type Result struct {
	Sets     []MediaSet
	Warnings []services.Warning
}

// Ordinal returns the first run of ASCII digits in the file name stem.
func Ordinal(path string) (int, bool) {
	stem := textutil.Stem(path)
	start := strings.IndexFunc(stem, isDigit)
	if start < 0 {
		return 0, false
	}
	end := start
	for end < len(stem) && isDigit(rune(stem[end])) {
		end++
	}
	value, err := strconv.Atoi(stem[start:end])
	if err != nil {
		return 0, false
	}
	return value, true
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// Match groups files by ordinal. A nil timestamps slice means no timestamp
// folder was supplied and every audio ordinal qualifies; a non-nil slice
// restricts the result to ordinals present in both. Visual files attach when
// their ordinal is present.
func Match(audio, timestamps, visuals []string) Result {
	var result Result
	audioByKey := index("audio", audio, &result.Warnings)
	if len(audioByKey) == 0 {
		return result
	}
	var timestampByKey map[int]string
	if timestamps != nil {
		timestampByKey = index("timestamps", timestamps, &result.Warnings)
	}
	visualByKey := index("visual", visuals, &result.Warnings)

	keys := make([]int, 0, len(audioByKey))
	for key := range audioByKey {
		if timestamps != nil {
			if _, ok := timestampByKey[key]; !ok {
				result.Warnings = append(result.Warnings, services.Warnf(audioByKey[key], "no timestamp file with ordinal %d", key))
				continue
			}
		}
		keys = append(keys, key)
	}
	sort.Ints(keys)

	result.Sets = make([]MediaSet, 0, len(keys))
	for _, key := range keys {
		result.Sets = append(result.Sets, MediaSet{
			Index:         key,
			AudioPath:     audioByKey[key],
			TimestampPath: timestampByKey[key],
			VisualPath:    visualByKey[key],
		})
	}
	sortWarnings(result.Warnings)
	return result
}

// ByOrdinal maps the ordinal of each path to the path, applying the same
// collision and no-ordinal rules as Match.
func ByOrdinal(folder string, paths []string) (map[int]string, []services.Warning) {
	var warnings []services.Warning
	byKey := index(folder, paths, &warnings)
	sortWarnings(warnings)
	return byKey, warnings
}

// index maps ordinal to path for one folder. On collision the path with the
// lexicographically smallest base name wins, full path breaking ties.
func index(folder string, paths []string, warnings *[]services.Warning) map[int]string {
	candidates := make(map[int][]string, len(paths))
	for _, path := range paths {
		key, ok := Ordinal(path)
		if !ok {
			*warnings = append(*warnings, services.Warnf(path, "%s file has no ordinal in its name; skipped", folder))
			continue
		}
		candidates[key] = append(candidates[key], path)
	}
	out := make(map[int]string, len(candidates))
	for key, group := range candidates {
		sort.Slice(group, func(i, j int) bool { return preferred(group[i], group[j]) })
		out[key] = group[0]
		for _, dropped := range group[1:] {
			*warnings = append(*warnings, services.Warnf(dropped, "%s ordinal %d already taken by %s; skipped", folder, key, filepath.Base(group[0])))
		}
	}
	return out
}

func preferred(a, b string) bool {
	baseA, baseB := filepath.Base(a), filepath.Base(b)
	if baseA != baseB {
		return baseA < baseB
	}
	return a < b
}

func sortWarnings(warnings []services.Warning) {
	sort.SliceStable(warnings, func(i, j int) bool {
		if warnings[i].Subject != warnings[j].Subject {
			return warnings[i].Subject < warnings[j].Subject
		}
		return warnings[i].Message < warnings[j].Message
	})
}

// ListDir returns the regular, non-hidden files in dir whose extension is in
// extensions, sorted by name. A missing directory yields nil without error so
// optional folders can be passed through unchanged.
func ListDir(dir string, extensions []string) ([]string, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, services.Wrap(services.ErrResource, "mediaset", "list", fmt.Sprintf("read %s", dir), err)
	}
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if !entry.Type().IsRegular() {
			continue
		}
		if len(extensions) > 0 && !hasExtension(extensions, strings.ToLower(filepath.Ext(name))) {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

// MatchDirs lists the three folders and matches their contents. Missing
// timestamp and visual folders are treated as not supplied.
func MatchDirs(audioDir, timestampDir, visualDir string) (Result, error) {
	audio, err := ListDir(audioDir, AudioExtensions)
	if err != nil {
		return Result{}, err
	}
	timestamps, err := ListDir(timestampDir, TimestampExtensions)
	if err != nil {
		return Result{}, err
	}
	visuals, err := ListDir(visualDir, VisualExtensions())
	if err != nil {
		return Result{}, err
	}
	return Match(audio, timestamps, visuals), nil
}
