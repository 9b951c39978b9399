package resolve

import (
	"regexp"
	"strings"
)

// Platform identifies an operating-system family a release asset targets.
type Platform string

const (
	PlatformWindows Platform = "windows"
	PlatformLinux   Platform = "linux"
	PlatformMacOS   Platform = "macos"
)

// Platforms lists every platform the matcher knows about, in evaluation order.
var Platforms = []Platform{PlatformWindows, PlatformLinux, PlatformMacOS}

// InstallType classifies how a resolved asset is expected to be installed.
type InstallType string

const (
	InstallExecutable     InstallType = "executable"
	InstallMSI            InstallType = "msi"
	InstallZip            InstallType = "zip"
	InstallPackageManager InstallType = "package-manager"
	InstallScript         InstallType = "script"
	InstallPortable       InstallType = "portable"
)

// assetRule pairs a filename pattern with the priority it wins at and the
// install type it implies. Rules within a platform are evaluated in table
// order and ties on priority go to the earlier rule, so ordering is part of
// the table's contract.
type assetRule struct {
	re       *regexp.Regexp
	priority int
	install  InstallType
}

// winToken is anchored so that "darwin" and words like "unwind" never
// read as a windows marker; macToken likewise keeps "emacs" out.
const (
	winToken = `(^|[^a-z])win(dows)?`
	macToken = `(^|[^a-z])(mac(os)?|osx|darwin)`
)

var platformRules = map[Platform][]assetRule{
	PlatformWindows: {
		{regexp.MustCompile(winToken + `.*\.exe$`), 100, InstallExecutable},
		{regexp.MustCompile(`\.msi$`), 90, InstallMSI},
		{regexp.MustCompile(winToken + `.*\.msi$`), 90, InstallMSI},
		{regexp.MustCompile(`setup.*\.exe$`), 80, InstallExecutable},
		{regexp.MustCompile(`install(er)?.*\.exe$`), 80, InstallExecutable},
		{regexp.MustCompile(`\.exe$`), 70, InstallExecutable},
		{regexp.MustCompile(winToken + `.*(x64|x86|amd64|arm64).*\.zip$`), 60, InstallZip},
		{regexp.MustCompile(winToken + `.*\.zip$`), 50, InstallZip},
		{regexp.MustCompile(`(x64|x86_64|amd64).*\.zip$`), 30, InstallZip},
		{regexp.MustCompile(`\.zip$`), 20, InstallZip},
	},
	PlatformLinux: {
		{regexp.MustCompile(`linux.*\.appimage$`), 100, InstallPortable},
		{regexp.MustCompile(`\.appimage$`), 90, InstallPortable},
		{regexp.MustCompile(`linux.*\.deb$`), 85, InstallPackageManager},
		{regexp.MustCompile(`(amd64|x86_64|arm64)\.deb$`), 80, InstallPackageManager},
		{regexp.MustCompile(`\.deb$`), 75, InstallPackageManager},
		{regexp.MustCompile(`\.rpm$`), 65, InstallPackageManager},
		{regexp.MustCompile(`linux.*\.(tar\.gz|tgz|tar\.xz)$`), 55, InstallZip},
		{regexp.MustCompile(`linux.*\.sh$`), 45, InstallScript},
		{regexp.MustCompile(`\.(tar\.gz|tgz|tar\.xz)$`), 30, InstallZip},
		{regexp.MustCompile(`\.sh$`), 20, InstallScript},
	},
	PlatformMacOS: {
		{regexp.MustCompile(macToken + `.*\.dmg$`), 100, InstallExecutable},
		{regexp.MustCompile(`\.dmg$`), 90, InstallExecutable},
		{regexp.MustCompile(macToken + `.*\.pkg$`), 85, InstallPackageManager},
		{regexp.MustCompile(`\.pkg$`), 75, InstallPackageManager},
		{regexp.MustCompile(`(^|[^a-z])(mac(os)?|osx|darwin|universal|arm64|aarch64).*\.zip$`), 55, InstallZip},
		{regexp.MustCompile(macToken + `.*\.(tar\.gz|tgz)$`), 45, InstallZip},
	},
}

// excludeMarkers flag debug and development artifacts. A filename containing
// any of these never matches, for any platform.
var excludeMarkers = []string{"debug", "pdb", "symbols", "dev", "source", "src"}

// foreignMarkers keep an asset that names another platform from falling
// through to this platform's generic extension rules (a darwin zip must
// not resolve as the windows zip).
var foreignMarkers = map[Platform]*regexp.Regexp{
	PlatformWindows: regexp.MustCompile(`(^|[^a-z])(mac(os)?|osx|darwin|linux)`),
	PlatformLinux:   regexp.MustCompile(`(^|[^a-z])(win(dows)?|mac(os)?|osx|darwin)`),
	PlatformMacOS:   regexp.MustCompile(`(^|[^a-z])(win(dows)?|linux)`),
}

// RuleMatch reports how a filename satisfied a platform's rule table.
type RuleMatch struct {
	Priority int
	Install  InstallType
}

// Excluded reports whether the filename carries a debug or development
// marker and must not be bound to any platform.
func Excluded(filename string) bool {
	name := strings.ToLower(filename)
	for _, marker := range excludeMarkers {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}

// MatchPlatform classifies filename against one platform's rule table and
// returns the highest-priority rule it satisfies. The boolean is false when
// no rule matches or the filename is excluded outright.
func MatchPlatform(filename string, platform Platform) (RuleMatch, bool) {
	if Excluded(filename) {
		return RuleMatch{}, false
	}
	name := strings.ToLower(filename)
	if foreignMarkers[platform].MatchString(name) {
		return RuleMatch{}, false
	}
	var best RuleMatch
	found := false
	for _, rule := range platformRules[platform] {
		if !rule.re.MatchString(name) {
			continue
		}
		if !found || rule.priority > best.Priority {
			best = RuleMatch{Priority: rule.priority, Install: rule.install}
			found = true
		}
	}
	return best, found
}
