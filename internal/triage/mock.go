package triage

import (
	"context"
	"fmt"
)

// MockClassifier is a canned-response Classifier for tests and for booting
// the service without an API key.
type MockClassifier struct {
	// Response is returned verbatim when Err is nil.
	Response string
	// Err, when set, makes every call fail.
	Err error
	// Calls records the prompts seen, in order.
	Calls []string
}

// NewMockClassifier returns a classifier that always answers with response.
func NewMockClassifier(response string) *MockClassifier {
	return &MockClassifier{Response: response}
}

// NewFailingClassifier returns a classifier whose calls always fail. Useful
// for exercising heuristic fallback paths.
func NewFailingClassifier(msg string) *MockClassifier {
	return &MockClassifier{Err: fmt.Errorf("%s", msg)}
}

// Classify implements Classifier.
func (m *MockClassifier) Classify(_ context.Context, prompt, _ string) (string, error) {
	m.Calls = append(m.Calls, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}
