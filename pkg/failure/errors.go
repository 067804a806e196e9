package failure

import "errors"

type Severity int

// Recoverable errors are absorbed by the caller (a skipped page, a transport
// error row, an analyzer failure row). Fatal errors end the command.
const (
	SeverityFatal Severity = iota
	SeverityRecoverable
)

func (s Severity) String() string {
	if s == SeverityRecoverable {
		return "recoverable"
	}
	return "fatal"
}

type ClassifiedError interface {
	error
	Severity() Severity
}

// IsRecoverable reports whether err is classified as recoverable.
// Unclassified errors are treated as fatal.
func IsRecoverable(err error) bool {
	var ce ClassifiedError
	return errors.As(err, &ce) && ce.Severity() == SeverityRecoverable
}
