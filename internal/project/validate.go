package project

import (
	"fmt"
	"strings"

	"scenecraft/internal/services"
)

// Validate checks referential integrity: ids are unique, every asset points
// at a file, every clip asset and audio reference resolves, and every clip's
// word list is ordered and closed by a single scene_end marker.
func (p *Project) Validate() error {
	var problems []string
	report := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	files := make(map[string]struct{}, len(p.Files))
	for _, f := range p.Files {
		if f.ID == "" {
			report("file %q has an empty id", f.Name)
			continue
		}
		if _, dup := files[f.ID]; dup {
			report("duplicate file id %s", f.ID)
		}
		files[f.ID] = struct{}{}
		if f.Storage == StorageEmbedded && f.Path == "" {
			report("embedded file %s has no archive path", f.ID)
		}
	}

	for key, asset := range p.Assets {
		if asset.ID != key {
			report("asset key %s holds asset %s", key, asset.ID)
		}
		if _, ok := files[asset.MediaID]; !ok {
			report("asset %s references missing media %s", key, asset.MediaID)
		}
	}

	sceneIDs := make(map[string]struct{}, len(p.Scenes))
	clipIDs := make(map[string]struct{})
	for _, scene := range p.Scenes {
		if _, dup := sceneIDs[scene.ID]; dup {
			report("duplicate scene id %s", scene.ID)
		}
		sceneIDs[scene.ID] = struct{}{}
		for _, clip := range scene.Clips {
			if _, dup := clipIDs[clip.ID]; dup {
				report("duplicate clip id %s", clip.ID)
			}
			clipIDs[clip.ID] = struct{}{}
			for _, assetID := range clip.AssetIDs {
				if _, ok := p.Assets[assetID]; !ok {
					report("clip %s references missing asset %s", clip.ID, assetID)
				}
			}
			if clip.Audio != nil {
				if _, ok := files[clip.Audio.MediaID]; !ok {
					report("clip %s references missing audio %s", clip.ID, clip.Audio.MediaID)
				}
			}
			if msg := checkWords(clip.Words); msg != "" {
				report("clip %s: %s", clip.ID, msg)
			}
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return services.Wrap(services.ErrValidation, "project", "validate", strings.Join(problems, "; "), nil)
}

func checkWords(words []Word) string {
	if len(words) == 0 {
		return ""
	}
	last := words[len(words)-1]
	if last.Kind != WordSceneEnd || last.DurationMS != 0 {
		return "word list must end with a zero-duration scene_end"
	}
	for i, w := range words {
		if w.Kind == WordSceneEnd && i != len(words)-1 {
			return "scene_end before the last word"
		}
		if w.DurationMS < 0 {
			return fmt.Sprintf("word %s has negative duration", w.ID)
		}
		if i > 0 && w.StartMS < words[i-1].EndMS() {
			return fmt.Sprintf("word %s overlaps its predecessor", w.ID)
		}
	}
	return ""
}
