// Package assistant provides the conversational passthroughs: campus Q&A,
// wellbeing support, health information, summarization, and the AI-backed
// monitoring reports for the admin dashboard.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/campuspulse/campuspulse/internal/analytics"
	"github.com/campuspulse/campuspulse/internal/triage"
	"log/slog"
)

// HealthDisclaimer is prepended to every health information answer.
const HealthDisclaimer = "This is general information, not medical advice. For emergencies contact campus security or emergency services."

// Assistant wraps a classifier gateway with fixed personas per endpoint.
type Assistant struct {
	classifier triage.Classifier
	logger     *slog.Logger
}

// New creates an Assistant. The classifier should be configured with a
// generous token budget; these are full-text answers, not single labels.
func New(classifier triage.Classifier, logger *slog.Logger) *Assistant {
	return &Assistant{classifier: classifier, logger: logger}
}

// CampusChat answers general campus questions. Mode adjusts the register:
// "eli10" simplifies, "bullets" forces list output, anything else is plain.
// A non-empty language asks for the answer in that language.
func (a *Assistant) CampusChat(ctx context.Context, message, mode, language string) (string, error) {
	system := "You are a friendly campus assistant for university students. Answer questions about campus life, facilities, and services. Keep answers short and practical."
	switch mode {
	case "eli10":
		system += " Explain everything like the reader is ten years old."
	case "bullets":
		system += " Answer only in short bullet points."
	}
	if language != "" && language != "en" {
		system += fmt.Sprintf(" Answer in the language with ISO code %q.", language)
	}
	return a.classifier.Classify(ctx, message, system)
}

// WellbeingChat is the supportive listener persona.
func (a *Assistant) WellbeingChat(ctx context.Context, message string) (string, error) {
	system := "You are a supportive wellbeing companion for university students. Listen, validate feelings, and suggest small practical steps. Never diagnose. If the student seems in crisis, tell them to use the SOS button or contact campus counselling."
	return a.classifier.Classify(ctx, message, system)
}

// HealthInfo answers general health questions, always prefixed with the
// disclaimer regardless of what the model returned.
func (a *Assistant) HealthInfo(ctx context.Context, question string) (string, error) {
	system := "You provide general health and first-aid information for students. Be factual and brief. Never diagnose or prescribe."
	answer, err := a.classifier.Classify(ctx, question, system)
	if err != nil {
		return "", err
	}
	return HealthDisclaimer + "\n\n" + answer, nil
}

// Summarize condenses text into a few sentences.
func (a *Assistant) Summarize(ctx context.Context, text string) (string, error) {
	system := "Summarize the given text in at most three sentences. Keep key facts, drop filler."
	return a.classifier.Classify(ctx, text, system)
}

// Explain rewrites text in simpler terms.
func (a *Assistant) Explain(ctx context.Context, text string) (string, error) {
	system := "Rewrite the given text in plain, simple language a first-year student would understand."
	return a.classifier.Classify(ctx, text, system)
}

// MoodAnalysis is the structured result of the weekly mood anomaly check.
type MoodAnalysis struct {
	Anomaly         bool     `json:"anomaly"`
	Summary         string   `json:"summary"`
	Recommendations []string `json:"recommendations"`
}

// ActivityReport is the structured result of the campus activity monitor.
type ActivityReport struct {
	Status  string `json:"status"` // normal|elevated|critical
	Summary string `json:"summary"`
}

// AnalyzeMoodTrend asks the model whether the weekly mood trend looks
// anomalous. A malformed model answer degrades to a plain-text summary with
// no anomaly flag rather than failing the request.
func (a *Assistant) AnalyzeMoodTrend(ctx context.Context, points []analytics.TrendPoint) (MoodAnalysis, error) {
	payload, err := json.Marshal(points)
	if err != nil {
		return MoodAnalysis{}, fmt.Errorf("failed to encode trend points: %w", err)
	}

	system := `You analyze campus-wide student mood trends. Given daily mood averages (scale 1-5, 0 means no data), respond with ONLY a JSON object: {"anomaly": bool, "summary": string, "recommendations": [string]}. Flag an anomaly when the trend drops sharply or stays low for days.`
	prompt := fmt.Sprintf("Daily mood averages for the past week: %s", payload)

	answer, err := a.classifier.Classify(ctx, prompt, system)
	if err != nil {
		return MoodAnalysis{}, fmt.Errorf("mood analysis failed: %w", err)
	}

	var analysis MoodAnalysis
	if err := json.Unmarshal([]byte(extractJSON(answer)), &analysis); err != nil {
		a.logger.Warn("unparseable mood analysis, returning raw summary", "error", err)
		return MoodAnalysis{Summary: strings.TrimSpace(answer)}, nil
	}
	return analysis, nil
}

// MonitorActivity asks the model to rate the last day's activity volume.
// Like the mood check, bad model output degrades instead of erroring.
func (a *Assistant) MonitorActivity(ctx context.Context, snapshot analytics.ActivitySnapshot) (ActivityReport, error) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return ActivityReport{}, fmt.Errorf("failed to encode activity snapshot: %w", err)
	}

	system := `You monitor campus safety activity. Given counts of SOS alerts, incident reports, and mood check-ins over a trailing window, respond with ONLY a JSON object: {"status": "normal"|"elevated"|"critical", "summary": string}.`
	prompt := fmt.Sprintf("Activity over the last %d hours: %s", snapshot.WindowHours, payload)

	answer, err := a.classifier.Classify(ctx, prompt, system)
	if err != nil {
		return ActivityReport{}, fmt.Errorf("activity monitor failed: %w", err)
	}

	var report ActivityReport
	if err := json.Unmarshal([]byte(extractJSON(answer)), &report); err != nil {
		a.logger.Warn("unparseable activity report, returning raw summary", "error", err)
		return ActivityReport{Status: "normal", Summary: strings.TrimSpace(answer)}, nil
	}

	switch report.Status {
	case "normal", "elevated", "critical":
	default:
		report.Status = "normal"
	}
	return report, nil
}

var jsonFenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*({.+})\\s*```")

// extractJSON pulls a JSON object out of a model answer that may wrap it in
// markdown code fences.
func extractJSON(answer string) string {
	if matches := jsonFenceRe.FindStringSubmatch(answer); len(matches) > 1 {
		return matches[1]
	}
	return strings.TrimSpace(answer)
}
