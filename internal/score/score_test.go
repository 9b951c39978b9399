package score

import (
	"testing"
	"time"
)

var now = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

func TestQuality(t *testing.T) {
	tests := []struct {
		name string
		in   QualityInput
		want int
	}{
		{"empty input", QualityInput{}, 0},
		{
			"stars and forks capped",
			QualityInput{Stars: 1000, Forks: 500},
			50, // 30 + 20
		},
		{
			"fully equipped recent repo",
			QualityInput{
				Stars:                100,
				Forks:                20,
				LastCommit:           now.AddDate(0, 0, -7),
				HasDocumentation:     true,
				DescriptionLength:    80,
				HasLicense:           true,
				HasMaintainerContact: true,
				HasTags:              true,
			},
			100, // 30+20+20+15+10+5 clamps
		},
		{
			"stale repo gets low recency tier",
			QualityInput{LastCommit: now.AddDate(-2, 0, 0)},
			5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Quality(tt.in, DefaultWeights(), now); got != tt.want {
				t.Fatalf("Quality = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestQualityMonotonicInStarsAndForks(t *testing.T) {
	base := QualityInput{LastCommit: now.AddDate(0, 0, -10), HasLicense: true}
	prev := -1
	for stars := 0; stars <= 200; stars += 10 {
		in := base
		in.Stars = stars
		got := Quality(in, DefaultWeights(), now)
		if got < prev {
			t.Fatalf("quality decreased at stars=%d: %d -> %d", stars, prev, got)
		}
		if got < 0 || got > 100 {
			t.Fatalf("quality out of range at stars=%d: %d", stars, got)
		}
		prev = got
	}
	prev = -1
	for forks := 0; forks <= 50; forks += 5 {
		in := base
		in.Forks = forks
		got := Quality(in, DefaultWeights(), now)
		if got < prev {
			t.Fatalf("quality decreased at forks=%d: %d -> %d", forks, prev, got)
		}
		prev = got
	}
}

func TestQualityWeights(t *testing.T) {
	in := QualityInput{Stars: 60, HasLicense: true}
	doubledStars := DefaultWeights()
	doubledStars.Stars = 2
	if got := Quality(in, doubledStars, now); got != 70 {
		t.Fatalf("weighted quality = %d, want 70", got) // 30*2 + 10
	}
	noLicense := DefaultWeights()
	noLicense.License = 0
	if got := Quality(in, noLicense, now); got != 30 {
		t.Fatalf("weighted quality = %d, want 30", got)
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name string
		in   HealthInput
		want int
	}{
		{
			"active well-kept repo clamps at 100",
			HealthInput{
				PushedAt:      now.AddDate(0, 0, -3),
				HasReadme:     true,
				HasCI:         true,
				Stars:         500,
				Contributors:  20,
				RecentCommits: 15,
			},
			100,
		},
		{
			"no push date known",
			HealthInput{},
			80, // 100 * 0.8
		},
		{
			"dormant repo",
			HealthInput{PushedAt: now.AddDate(-3, 0, 0)},
			80, // 75 + 5
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Health(tt.in, now); got != tt.want {
				t.Fatalf("Health = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHealthArchivedCostsFifty(t *testing.T) {
	inputs := []HealthInput{
		{},
		{PushedAt: now.AddDate(0, 0, -3), HasReadme: true, HasCI: true, Stars: 500, Contributors: 20, RecentCommits: 15},
		{PushedAt: now.AddDate(0, -6, 0), Stars: 30},
	}
	for i, in := range inputs {
		healthy := Health(in, now)
		in.Archived = true
		archived := Health(in, now)
		if healthy-archived < 50 {
			t.Errorf("case %d: archived drop = %d, want >= 50", i, healthy-archived)
		}
		if archived < 0 || archived > 100 {
			t.Errorf("case %d: archived health out of range: %d", i, archived)
		}
	}
}

func TestHealthAllCriticalFlagsFloorAtZero(t *testing.T) {
	in := HealthInput{Archived: true, Disabled: true, Private: true}
	if got := Health(in, now); got != 0 {
		t.Fatalf("Health = %d, want 0", got)
	}
}

func TestStatusThresholds(t *testing.T) {
	tests := []struct {
		overall    int
		accessible bool
		want       string
	}{
		{95, true, "verified"},
		{80, true, "verified"},
		{79, true, "conditional"},
		{60, true, "conditional"},
		{59, true, "needs_review"},
		{0, true, "needs_review"},
		{95, false, "failed"},
	}
	for _, tt := range tests {
		if got := Status(tt.overall, tt.accessible); got != tt.want {
			t.Errorf("Status(%d, %v) = %q, want %q", tt.overall, tt.accessible, got, tt.want)
		}
	}
}

func TestDocumentationBonus(t *testing.T) {
	if got := DocumentationBonus(false, false); got != 10 {
		t.Errorf("no url bonus = %d, want 10", got)
	}
	if got := DocumentationBonus(true, true); got != 10 {
		t.Errorf("reachable bonus = %d, want 10", got)
	}
	if got := DocumentationBonus(true, false); got != -5 {
		t.Errorf("dead link bonus = %d, want -5", got)
	}
}
