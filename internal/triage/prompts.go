package triage

import "fmt"

// System instructions pin the answer format so parsing stays trivial.
const (
	urgencySystemPrompt  = "You are a campus safety AI. Return only a single integer urgency score."
	severitySystemPrompt = "You are a crisis dispatcher. Categorize incidents strictly by urgency."
)

// BuildUrgencyPrompt embeds the contextual signals for an SOS trigger into a
// natural-language prompt constrained to a single 1-10 integer answer.
func BuildUrgencyPrompt(localTime string, nighttime bool, repeatCount int, hasLocation bool) string {
	location := "No"
	if hasLocation {
		location = "Yes"
	}
	return fmt.Sprintf(`An SOS emergency alert has been triggered on a university campus. Determine the urgency score (1-10, where 10 is maximum emergency).

Factors:
- Time: %s (Is nighttime: %t)
- Repeat alerts from same user: %d
- Has GPS location: %s

Return ONLY a single number between 1 and 10.`, localTime, nighttime, repeatCount, location)
}

// BuildSeverityPrompt asks the classifier to grade an incident report with
// exactly one of the four severity words.
func BuildSeverityPrompt(incidentType, description string) string {
	return fmt.Sprintf(`Analyze this incident report and categorize its severity as 'low', 'medium', 'high', or 'critical'.
Incident Type: %s
Description: %s

Return ONLY the severity word.`, incidentType, description)
}
