package importer

import (
	"regexp"
	"strings"

	"github.com/jgivc/eduvance/internal/entity"
)

var (
	orderPrefixRegexp   = regexp.MustCompile(`^\d+[.)\-\s]+\s*`)
	numericPrefixRegexp = regexp.MustCompile(`^\d+`)
	extRegexp           = regexp.MustCompile(`\.[^.]+$`)

	kindByExt = map[string]entity.ContentKind{
		"mp4": entity.KindVideo, "webm": entity.KindVideo, "mkv": entity.KindVideo,
		"avi": entity.KindVideo, "mov": entity.KindVideo, "m4v": entity.KindVideo,

		"vtt": entity.KindSubtitle, "srt": entity.KindSubtitle,
		"ass": entity.KindSubtitle, "ssa": entity.KindSubtitle,

		"pdf": entity.KindDocument,

		"jpg": entity.KindImage, "jpeg": entity.KindImage, "png": entity.KindImage,
		"gif": entity.KindImage, "webp": entity.KindImage, "svg": entity.KindImage,
		"bmp": entity.KindImage,
	}
)

// Classify derives the content kind from the file extension.
// Unknown extensions and names without one are plain files.
func Classify(name string) entity.ContentKind {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return entity.KindFile
	}

	if kind, ok := kindByExt[strings.ToLower(name[idx+1:])]; ok {
		return kind
	}

	return entity.KindFile
}

// DisplayName strips a leading ordering token such as "01. ", "3) " or
// "12 - " and, if asked, the extension. It never returns an empty string.
func DisplayName(name string, stripExt bool) string {
	parsed := orderPrefixRegexp.ReplaceAllString(name, "")
	if stripExt {
		parsed = StripExt(parsed)
	}

	if parsed = strings.TrimSpace(parsed); parsed == "" {
		return name
	}

	return parsed
}

// StripExt removes the last extension.
func StripExt(name string) string {
	return extRegexp.ReplaceAllString(name, "")
}

// NumericPrefix returns the leading digit run of name, or "".
func NumericPrefix(name string) string {
	return numericPrefixRegexp.FindString(name)
}
