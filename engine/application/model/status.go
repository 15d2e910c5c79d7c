package model

import (
	"errors"
	"fmt"
	"strings"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

var (
	ErrUnknownStatus   = errors.New("unknown application status")
	ErrUnknownDecision = errors.New("decision must be APPROVED or REJECTED")
	ErrUnknownSeverity = errors.New("unknown severity")
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanTransitionTo encodes PENDING -> {APPROVED, REJECTED}. Terminal states
// have no successors.
func (s Status) CanTransitionTo(next Status) bool {
	return s == StatusPending && next.IsTerminal()
}

// Decision is the reviewer's verdict: a terminal status.
type Decision = Status

func ParseDecision(s string) (Decision, error) {
	st, err := ParseStatus(s)
	if err != nil || !st.IsTerminal() {
		return "", fmt.Errorf("%w: %q", ErrUnknownDecision, s)
	}
	return st, nil
}

type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
)

func ParseSeverity(s string) (Severity, error) {
	switch sv := Severity(strings.ToUpper(strings.TrimSpace(s))); sv {
	case SeverityHigh, SeverityMedium, SeverityLow:
		return sv, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSeverity, s)
	}
}

func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
