package triage

import (
	"context"
	"strconv"
	"time"

	"github.com/campuspulse/campuspulse/internal/clock"
	"github.com/campuspulse/campuspulse/internal/models"
	"log/slog"
)

// UrgencySignals are the contextual inputs to SOS urgency scoring.
type UrgencySignals struct {
	// RepeatCount is how many other active alerts the same user currently
	// has. It is a best-effort snapshot, not a correctness-critical count.
	RepeatCount int
	HasLocation bool
}

// FallbackObserver receives a counter event each time a degraded scoring
// path runs. Kind is "call_failure" or "parse_failure".
type FallbackObserver interface {
	ObserveFallback(kind string)
}

// UrgencyResolver computes SOS urgency scores. Resolve never fails: any
// classifier problem degrades to a local heuristic so the submission always
// gets a usable score.
type UrgencyResolver struct {
	classifier Classifier
	clock      clock.Clock
	logger     *slog.Logger
	observer   FallbackObserver
}

// NewUrgencyResolver creates a resolver backed by the given classifier.
func NewUrgencyResolver(classifier Classifier, clk clock.Clock, logger *slog.Logger) *UrgencyResolver {
	return &UrgencyResolver{classifier: classifier, clock: clk, logger: logger}
}

// SetObserver attaches a fallback counter. Nil is fine.
func (r *UrgencyResolver) SetObserver(observer FallbackObserver) {
	r.observer = observer
}

func (r *UrgencyResolver) observeFallback(kind string) {
	if r.observer != nil {
		r.observer.ObserveFallback(kind)
	}
}

// Resolve produces an urgency score in [1,10].
//
// The two failure modes fall back differently and the difference is part of
// the contract: an unparseable answer means the service is up but confused,
// so the coarse nighttime rule applies; a failed call means the service is
// down, so the detailed signal heuristic takes over.
func (r *UrgencyResolver) Resolve(ctx context.Context, signals UrgencySignals) int {
	now := r.clock.Now()
	hour := now.Hour()
	night := IsNighttime(hour)

	prompt := BuildUrgencyPrompt(now.Format(time.Kitchen), night, signals.RepeatCount, signals.HasLocation)

	answer, err := r.classifier.Classify(ctx, prompt, urgencySystemPrompt)
	if err != nil {
		score := EstimateUrgency(hour, signals.RepeatCount, signals.HasLocation)
		r.logger.Warn("classifier unavailable, using heuristic urgency",
			"score", score,
			"error", err)
		r.observeFallback("call_failure")
		return score
	}

	score, err := strconv.Atoi(answer)
	if err != nil {
		score = CoarseUrgency(night)
		r.logger.Warn("unparseable classifier urgency, using coarse fallback",
			"answer", answer,
			"score", score)
		r.observeFallback("parse_failure")
		return score
	}

	return ClampScore(score)
}

// SeverityResolver computes incident severity. Like the urgency path it never
// fails the submission: both classifier errors and invalid answers fall back
// to the reporter's own severity estimate.
type SeverityResolver struct {
	classifier Classifier
	logger     *slog.Logger
}

// NewSeverityResolver creates a resolver backed by the given classifier.
func NewSeverityResolver(classifier Classifier, logger *slog.Logger) *SeverityResolver {
	return &SeverityResolver{classifier: classifier, logger: logger}
}

// Resolve returns the classifier's severity when it is one of the four valid
// values, otherwise the caller-supplied fallback unchanged.
func (r *SeverityResolver) Resolve(ctx context.Context, incidentType, description string, fallback models.Severity) models.Severity {
	prompt := BuildSeverityPrompt(incidentType, description)

	answer, err := r.classifier.Classify(ctx, prompt, severitySystemPrompt)
	if err != nil {
		r.logger.Warn("classifier unavailable, keeping reporter severity",
			"severity", fallback,
			"error", err)
		return fallback
	}

	severity, err := models.ParseSeverity(answer)
	if err != nil {
		r.logger.Warn("invalid classifier severity, keeping reporter severity",
			"answer", answer,
			"severity", fallback)
		return fallback
	}

	return severity
}
