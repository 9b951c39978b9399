package verify

import (
	"context"
	"fmt"
	"time"

	"toolshelf/internal/github"
	"toolshelf/internal/manifest"
	"toolshelf/internal/score"
)

// ValidationResult is the outcome of validating one manifest. Errors make
// the manifest invalid; warnings are advisory.
type ValidationResult struct {
	Path     string
	Name     string
	Valid    bool
	Score    int
	Errors   []string
	Warnings []string
}

// Validator checks manifests for schema conformance, content safety and
// quality.
type Validator struct {
	client          *github.Client
	weights         score.Weights
	reviewThreshold int
	forbiddenWords  []string
	logger          Logger
	now             func() time.Time
}

// NewValidator builds a Validator. A nil logger is replaced with a no-op
// one.
func NewValidator(client *github.Client, weights score.Weights, reviewThreshold int, forbiddenWords []string, logger Logger) *Validator {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Validator{
		client:          client,
		weights:         weights,
		reviewThreshold: reviewThreshold,
		forbiddenWords:  forbiddenWords,
		logger:          logger,
		now:             time.Now,
	}
}

// ValidateFile loads and validates one manifest. Schema violations and
// unreadable files make it invalid; remote failures and content findings
// surface as warnings and degrade the quality score's inputs instead.
func (v *Validator) ValidateFile(ctx context.Context, path string) ValidationResult {
	result := ValidationResult{Path: path}

	doc, err := manifest.Load(path)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	result.Name = doc.String("name")

	violations, err := doc.ValidateSchema()
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	result.Errors = append(result.Errors, violations...)
	result.Warnings = append(result.Warnings, doc.ContentIssues(v.forbiddenWords)...)

	var repo *github.Repo
	if repoURL := doc.String("repository"); repoURL == "" {
		result.Warnings = append(result.Warnings, "no repository url")
	} else if owner, name, err := github.ParseRepoURL(repoURL); err != nil {
		result.Warnings = append(result.Warnings, err.Error())
	} else if repo, err = v.client.Repo(ctx, owner, name); err != nil {
		repo = nil
		result.Warnings = append(result.Warnings, fmt.Sprintf("repository not accessible: %v", err))
	}

	result.Score = v.qualityScore(doc, repo)
	if result.Score < v.reviewThreshold {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("quality score %d below review threshold %d", result.Score, v.reviewThreshold))
	}

	result.Valid = len(result.Errors) == 0
	v.logger.Printf("validate %s: valid=%v score=%d errors=%d warnings=%d",
		path, result.Valid, result.Score, len(result.Errors), len(result.Warnings))
	return result
}

func (v *Validator) qualityScore(doc manifest.Document, repo *github.Repo) int {
	in := score.QualityInput{
		HasDocumentation:  doc.String("documentation") != "",
		DescriptionLength: len(doc.String("description")),
		HasLicense:        doc.String("license") != "",
		HasTags:           len(doc.Strings("tags")) > 0,
	}
	if maintainer, ok := doc["maintainer"].(map[string]any); ok {
		if contact, _ := maintainer["contact"].(string); contact != "" {
			in.HasMaintainerContact = true
		}
	}
	if repo != nil {
		in.Stars = repo.Stars
		in.Forks = repo.Forks
		in.LastCommit = repo.PushedAt
		if !in.HasLicense && repo.License != nil {
			in.HasLicense = true
		}
	}
	return score.Quality(in, v.weights, v.now())
}
