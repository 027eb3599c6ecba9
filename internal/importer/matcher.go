package importer

import (
	"github.com/jgivc/eduvance/internal/entity"
)

// MatchSubtitles pairs every video of one folder with at most one subtitle.
//
// files must already be in folder order. Videos are visited in that order and
// each one takes the first unconsumed subtitle whose name without extension
// equals its own, or failing that, the first one sharing its leading number.
// The whole folder is the candidate set, so a subtitle listed before its video
// still matches. matches is keyed by video path; leftovers are the subtitles
// no video claimed.
func MatchSubtitles(files []*entity.RemoteEntry) (map[string]*entity.RemoteEntry, []*entity.RemoteEntry) {
	var subtitles []*entity.RemoteEntry
	for _, f := range files {
		if Classify(f.Name) == entity.KindSubtitle {
			subtitles = append(subtitles, f)
		}
	}

	matches := make(map[string]*entity.RemoteEntry)
	consumed := make(map[string]struct{})

	find := func(pred func(sub *entity.RemoteEntry) bool) *entity.RemoteEntry {
		for _, sub := range subtitles {
			if _, used := consumed[sub.Path]; used {
				continue
			}
			if pred(sub) {
				return sub
			}
		}

		return nil
	}

	for _, f := range files {
		if Classify(f.Name) != entity.KindVideo {
			continue
		}

		base := StripExt(f.Name)
		sub := find(func(sub *entity.RemoteEntry) bool {
			return StripExt(sub.Name) == base
		})

		if prefix := NumericPrefix(f.Name); sub == nil && prefix != "" {
			sub = find(func(sub *entity.RemoteEntry) bool {
				return NumericPrefix(sub.Name) == prefix
			})
		}

		if sub != nil {
			consumed[sub.Path] = struct{}{}
			matches[f.Path] = sub
		}
	}

	var leftovers []*entity.RemoteEntry
	for _, sub := range subtitles {
		if _, used := consumed[sub.Path]; !used {
			leftovers = append(leftovers, sub)
		}
	}

	return matches, leftovers
}
