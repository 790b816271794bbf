package services

import "fmt"

// Warning reports a per-item failure that was isolated from the rest of a batch.
type Warning struct {
	// Subject identifies the offending input, usually a file path.
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Warnf formats a warning for subject.
func Warnf(subject, format string, args ...any) Warning {
	return Warning{Subject: subject, Message: fmt.Sprintf(format, args...)}
}

func (w Warning) String() string {
	if w.Subject == "" {
		return w.Message
	}
	return w.Subject + ": " + w.Message
}
