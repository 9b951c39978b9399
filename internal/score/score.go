// Package score computes the quality and health heuristics for catalog
// tools. Both scorers are pure functions of their inputs plus an explicit
// clock, so they are safe to run concurrently and trivial to test.
package score

import "time"

// Weights scales each quality sub-score. DefaultWeights leaves every
// component at parity.
type Weights struct {
	Stars          float64 `yaml:"stars"`
	Forks          float64 `yaml:"forks"`
	RecentActivity float64 `yaml:"recent_activity"`
	Documentation  float64 `yaml:"documentation"`
	License        float64 `yaml:"license"`
	Community      float64 `yaml:"community"`
}

// DefaultWeights returns the neutral weighting.
func DefaultWeights() Weights {
	return Weights{
		Stars:          1,
		Forks:          1,
		RecentActivity: 1,
		Documentation:  1,
		License:        1,
		Community:      1,
	}
}

// QualityInput collects the manifest and repository facts the quality
// scorer looks at.
type QualityInput struct {
	Stars                int
	Forks                int
	LastCommit           time.Time // zero when unknown
	HasDocumentation     bool
	DescriptionLength    int
	HasLicense           bool
	HasMaintainerContact bool
	HasTags              bool
}

// Quality rates how complete and alive a catalog entry looks, on a 0-100
// scale. Sub-scores are capped, weighted, summed and clamped.
func Quality(in QualityInput, w Weights, now time.Time) int {
	total := 0.0

	stars := float64(in.Stars) * 0.5
	if stars > 30 {
		stars = 30
	}
	total += stars * w.Stars

	forks := float64(in.Forks) * 2
	if forks > 20 {
		forks = 20
	}
	total += forks * w.Forks

	total += recencyTier(in.LastCommit, now) * w.RecentActivity

	docs := 0.0
	if in.HasDocumentation {
		docs += 10
	}
	if in.DescriptionLength > 50 {
		docs += 5
	}
	total += docs * w.Documentation

	if in.HasLicense {
		total += 10 * w.License
	}

	community := 0.0
	if in.HasMaintainerContact {
		community += 2.5
	}
	if in.HasTags {
		community += 2.5
	}
	total += community * w.Community

	return clamp(total)
}

func recencyTier(last time.Time, now time.Time) float64 {
	if last.IsZero() {
		return 0
	}
	days := int(now.Sub(last).Hours() / 24)
	switch {
	case days <= 30:
		return 20
	case days <= 90:
		return 15
	case days <= 365:
		return 10
	default:
		return 5
	}
}

// HealthInput collects the live repository facts the health scorer looks
// at. Zero PushedAt means the push date could not be determined.
type HealthInput struct {
	Archived      bool
	Disabled      bool
	Private       bool
	PushedAt      time.Time
	HasReadme     bool
	HasCI         bool
	Stars         int
	Contributors  int
	RecentCommits int // commits over the trailing four weeks
}

// Health rates repository vitality on a 0-100 scale. Bonuses and the
// activity tier are folded in first and clamped; the archived, disabled
// and private deductions then come off the clamped value so each flag
// always costs its full 50 points.
func Health(in HealthInput, now time.Time) int {
	score := 100.0
	if in.PushedAt.IsZero() {
		score *= 0.8
	} else {
		score = score*0.75 + activityTier(in.PushedAt, now)
	}

	if in.HasReadme {
		score += 5
	}
	if in.HasCI {
		score += 5
	}
	switch {
	case in.Stars >= 100:
		score += 10
	case in.Stars >= 50:
		score += 5
	case in.Stars >= 10:
		score += 2
	}
	switch {
	case in.Contributors >= 10:
		score += 5
	case in.Contributors >= 5:
		score += 3
	case in.Contributors >= 2:
		score += 1
	}
	switch {
	case in.RecentCommits >= 10:
		score += 5
	case in.RecentCommits >= 5:
		score += 3
	case in.RecentCommits >= 1:
		score += 1
	}

	result := clamp(score)
	for _, critical := range []bool{in.Archived, in.Disabled, in.Private} {
		if critical {
			result -= 50
		}
	}
	if result < 0 {
		result = 0
	}
	return result
}

func activityTier(pushed time.Time, now time.Time) float64 {
	days := int(now.Sub(pushed).Hours() / 24)
	switch {
	case days <= 30:
		return 25
	case days <= 90:
		return 20
	case days <= 180:
		return 15
	case days <= 365:
		return 10
	default:
		return 5
	}
}

// DocumentationBonus adjusts an overall verification score for the state
// of the documentation link: reachable or absent is fine, a dead link is
// penalized.
func DocumentationBonus(hasURL, accessible bool) int {
	if !hasURL {
		return 10
	}
	if accessible {
		return 10
	}
	return -5
}

// Overall combines the repository health score with the documentation
// bonus into the verification score.
func Overall(health int, docBonus int) int {
	total := health + docBonus
	if total > 100 {
		total = 100
	}
	if total < 0 {
		total = 0
	}
	return total
}

// Status maps an overall verification score onto the manifest
// verification vocabulary.
func Status(overall int, accessible bool) string {
	if !accessible {
		return "failed"
	}
	switch {
	case overall >= 80:
		return "verified"
	case overall >= 60:
		return "conditional"
	default:
		return "needs_review"
	}
}

func clamp(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v)
}
