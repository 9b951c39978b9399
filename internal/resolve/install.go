package resolve

import (
	"encoding/json"
	"strings"
)

// InstallSpec is the installation record for a single platform, or the
// whole tool when no platform-specific asset was resolved.
type InstallSpec struct {
	Type        InstallType `json:"type"`
	URL         string      `json:"url"`
	Executable  string      `json:"executable"`
	Args        []string    `json:"args"`
	PostInstall string      `json:"postInstall"`
	Checksum    string      `json:"checksum"`
	Silent      bool        `json:"silent"`
}

// InstallConfig is the synthesized installation section of a manifest. It
// carries either a per-platform mapping or one flat spec, never both; the
// shape is decided by whether the resolver found any platform match.
type InstallConfig struct {
	Platforms map[Platform]InstallSpec
	Single    InstallSpec
}

// MarshalJSON emits the platforms-keyed object when platform matches
// exist and the flat record otherwise.
func (c InstallConfig) MarshalJSON() ([]byte, error) {
	if len(c.Platforms) > 0 {
		return json.Marshal(struct {
			Platforms map[Platform]InstallSpec `json:"platforms"`
		}{c.Platforms})
	}
	return json.Marshal(c.Single)
}

// defaultArgs holds the fixed unattended-install arguments per platform
// and install type. Anything not listed installs without arguments.
var defaultArgs = map[Platform]map[InstallType][]string{
	PlatformWindows: {
		InstallMSI:        {"/quiet", "/norestart"},
		InstallExecutable: {"/S"},
	},
	PlatformLinux: {
		InstallPackageManager: {"-y"},
		InstallScript:         {"-y"},
	},
}

// silentByPlatform: macOS installers commonly require interactive
// confirmation, so only windows and linux default to silent installs.
var silentByPlatform = map[Platform]bool{
	PlatformWindows: true,
	PlatformLinux:   true,
	PlatformMacOS:   false,
}

func argsFor(platform Platform, install InstallType) []string {
	if args, ok := defaultArgs[platform][install]; ok {
		out := make([]string, len(args))
		copy(out, args)
		return out
	}
	return []string{}
}

// BuildInstallConfig assembles the platforms-shaped installation section
// from the resolver's matches.
func BuildInstallConfig(matches map[Platform]Match) InstallConfig {
	specs := make(map[Platform]InstallSpec, len(matches))
	for platform, match := range matches {
		specs[platform] = InstallSpec{
			Type:       match.Install,
			URL:        match.CanonicalURL,
			Executable: match.ExecutablePattern,
			Args:       argsFor(platform, match.Install),
			Silent:     silentByPlatform[platform],
		}
	}
	return InstallConfig{Platforms: specs}
}

// BuildSingleInstall assembles the flat installation section from the one
// asset available when no platform-specific match exists.
func BuildSingleInstall(asset Asset) InstallConfig {
	return InstallConfig{Single: InstallSpec{
		Type:       classifyExtension(asset.Name),
		URL:        CanonicalURL(asset.DownloadURL),
		Executable: ExecutablePattern(asset.Name),
		Args:       []string{},
	}}
}

// StubInstall is the all-defaults installation section used when a
// repository publishes no release data at all.
func StubInstall() InstallConfig {
	return InstallConfig{Single: InstallSpec{
		Type: InstallExecutable,
		Args: []string{},
	}}
}

func classifyExtension(filename string) InstallType {
	name := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(name, ".msi"):
		return InstallMSI
	case strings.HasSuffix(name, ".exe"):
		return InstallExecutable
	case strings.HasSuffix(name, ".appimage"):
		return InstallPortable
	case strings.HasSuffix(name, ".deb"), strings.HasSuffix(name, ".rpm"), strings.HasSuffix(name, ".pkg"):
		return InstallPackageManager
	case strings.HasSuffix(name, ".sh"):
		return InstallScript
	case strings.HasSuffix(name, ".zip"), strings.HasSuffix(name, ".tar.gz"),
		strings.HasSuffix(name, ".tgz"), strings.HasSuffix(name, ".tar.xz"),
		strings.HasSuffix(name, ".tar.bz2"):
		return InstallZip
	default:
		return InstallExecutable
	}
}
