package resolve

import "regexp"

// versioned download links look like
// https://host/owner/repo/releases/download/<tag>/<file>.
var downloadURLPattern = regexp.MustCompile(`^(https?://[^/]+/[^/]+/[^/]+)/releases/download/[^/]+/.+$`)

// CanonicalURL rewrites a version-pinned release download URL into the
// stable latest-release URL for the same repository. URLs of any other
// shape pass through unchanged, which makes the rewrite idempotent.
func CanonicalURL(rawURL string) string {
	if m := downloadURLPattern.FindStringSubmatch(rawURL); m != nil {
		return m[1] + "/releases/latest"
	}
	return rawURL
}
