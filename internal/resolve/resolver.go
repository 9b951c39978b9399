package resolve

// Asset is one downloadable file attached to a release.
type Asset struct {
	Name        string
	DownloadURL string
	SizeBytes   int64
}

// Match binds one release asset to the platform it best serves.
type Match struct {
	Platform          Platform
	Asset             Asset
	Priority          int
	Install           InstallType
	ExecutablePattern string
	CanonicalURL      string
}

// ResolveAssets scans a release's asset list and selects at most one asset
// per platform. A later asset replaces the current best only on strictly
// greater priority, so the earliest asset wins ties. An empty map means no
// asset matched any platform; callers fall back to single-asset mode.
func ResolveAssets(assets []Asset) map[Platform]Match {
	matches := make(map[Platform]Match)
	for _, platform := range Platforms {
		for _, asset := range assets {
			rule, ok := MatchPlatform(asset.Name, platform)
			if !ok {
				continue
			}
			if cur, exists := matches[platform]; exists && rule.Priority <= cur.Priority {
				continue
			}
			matches[platform] = Match{
				Platform:          platform,
				Asset:             asset,
				Priority:          rule.Priority,
				Install:           rule.Install,
				ExecutablePattern: ExecutablePattern(asset.Name),
				CanonicalURL:      CanonicalURL(asset.DownloadURL),
			}
		}
	}
	return matches
}
