// Package moderation classifies outgoing room messages against the content
// policy. Classification is pure: no I/O, no store access, never an error.
// Malformed or empty text simply yields no violations.
package moderation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"chatsphere/domain"
)

type Classifier struct {
	keywords *keywordMatcher
	now      func() time.Time
}

// NewClassifier builds the keyword automatons from the embedded severity
// lists. The pattern tables are package data compiled at init.
func NewClassifier() (*Classifier, error) {
	keywords, err := newKeywordMatcher()
	if err != nil {
		return nil, err
	}
	return &Classifier{keywords: keywords, now: time.Now}, nil
}

// Classify runs the suppression/escalation pipeline over one message:
//
//  1. whitelist short-circuit: confirmed benign expressions end
//     classification regardless of any other signal,
//  2. story and direct-address context detection,
//  3. per-category pattern tables, severity keyword lookup, context
//     adjustments, then the reporting threshold.
//
// Spam and scam are always reported on a match; every other category is
// reported only at high or critical severity. A message can yield at most
// one violation per category and can match several categories at once.
func (c *Classifier) Classify(text string, settings domain.ModerationSettings) []domain.Violation {
	if !settings.Enabled {
		return nil
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	lower := strings.ToLower(text)

	if matchAny(whitelistPatterns, lower) {
		return nil
	}

	storyContext := matchAny(storyPatterns, lower)
	directAddress := matchAny(directAddressPatterns, lower)

	var violations []domain.Violation
	for _, cat := range categories {
		if !settings.CategoryEnabled(cat.violationType) {
			continue
		}
		detected, ok := findFirst(cat.patterns, lower)
		if !ok {
			continue
		}
		// Harassment requires direct-address evidence; a pattern hit in
		// narrated or quoted speech is not a violation.
		if cat.violationType == domain.ViolationHarassment && !directAddress {
			continue
		}

		severity := c.severityOf(lower, cat.violationType, directAddress, storyContext)

		alwaysReported := cat.violationType == domain.ViolationSpam ||
			cat.violationType == domain.ViolationScam
		if !alwaysReported && severity.Rank() < domain.SeverityHigh.Rank() {
			continue
		}

		violations = append(violations, domain.Violation{
			ID:           "violation-" + uuid.NewString(),
			Type:         cat.violationType,
			Severity:     severity,
			DetectedText: detected,
			Reason:       fmt.Sprintf("detected %s content: %q", cat.violationType, detected),
			At:           c.now().UTC(),
			ActionTaken:  domain.ActionNone,
			ReviewedBy:   domain.ReviewedAutomated,
		})
	}
	return violations
}

// severityOf resolves the severity of a category match. A keyword hit wins
// over the category default. The direct-address bump is applied before the
// story downgrade; both can fire on the same text.
func (c *Classifier) severityOf(lower string, t domain.ViolationType, directAddress, storyContext bool) domain.Severity {
	severity, found := c.keywords.lookup(lower)
	if !found {
		severity = defaultSeverity(t, directAddress)
	}
	if found && directAddress && severity == domain.SeverityLow {
		severity = domain.SeverityMedium
	}
	if storyContext {
		severity = severity.Downgrade()
	}
	return severity
}

// defaultSeverity is the per-category fallback when no severity keyword
// matched.
func defaultSeverity(t domain.ViolationType, directAddress bool) domain.Severity {
	switch t {
	case domain.ViolationSpam:
		return domain.SeverityMedium
	case domain.ViolationHateSpeech:
		return domain.SeverityHigh
	case domain.ViolationHarassment:
		if directAddress {
			return domain.SeverityHigh
		}
		return domain.SeverityLow
	case domain.ViolationInappropriate:
		return domain.SeverityMedium
	case domain.ViolationAdvertising:
		return domain.SeverityLow
	case domain.ViolationScam:
		return domain.SeverityCritical
	default:
		return domain.SeverityLow
	}
}
