package resolve

import (
	"regexp"
	"strings"
)

// knownExtensions are the release artifact suffixes the synthesizer
// understands. Compound archive suffixes come first so ".tar.gz" is not
// split at the final dot.
var knownExtensions = []string{
	".tar.gz", ".tar.xz", ".tar.bz2",
	".appimage", ".tgz", ".exe", ".msi", ".zip", ".dmg", ".pkg",
	".deb", ".rpm", ".sh", ".7z", ".gz", ".xz",
}

var (
	// letters, possibly preceded by digits, cut off where a version digit
	// begins: "7z2501" yields "7z".
	leadingNamePattern = regexp.MustCompile(`^(\d*[a-zA-Z]+)\d`)
	// a letter run separated from a version-looking suffix: "tool-v2",
	// "tool_2024", "tool-windows".
	versionSuffixPattern = regexp.MustCompile(`(?i)^([a-zA-Z]+)[-_](v\d|\d{4}|windows|linux)`)
	letterRunPattern     = regexp.MustCompile(`^[a-zA-Z]+`)
)

// splitKnownExtension separates a filename into stem and recognized
// extension. The extension is empty when the suffix is not a known
// artifact type.
func splitKnownExtension(name string) (stem, ext string) {
	lower := strings.ToLower(name)
	for _, candidate := range knownExtensions {
		if strings.HasSuffix(lower, candidate) {
			return name[:len(name)-len(candidate)], name[len(name)-len(candidate):]
		}
	}
	return name, ""
}

// ExecutablePattern collapses the version-specific tokens of an asset
// filename into a stable identifier plus the original extension, so one
// pattern covers successive releases of the same artifact. Rules apply as
// a cascade and the first that fits wins; when nothing fits the name is
// returned unchanged.
func ExecutablePattern(filename string) string {
	stem, ext := splitKnownExtension(filename)
	if ext == "" {
		return filename
	}
	if m := leadingNamePattern.FindStringSubmatch(stem); m != nil {
		return m[1] + ext
	}
	if m := versionSuffixPattern.FindStringSubmatch(stem); m != nil {
		return strings.TrimRight(m[1], "-_") + ext
	}
	if m := letterRunPattern.FindString(stem); m != "" {
		return m + ext
	}
	return filename
}
