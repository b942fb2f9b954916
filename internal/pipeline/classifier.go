package pipeline

import "strings"

// ErrorKind is the classification a converter failure is mapped to.
type ErrorKind int

const (
	ErrorKindInternal ErrorKind = iota
	ErrorKindInvalidGeometry
)

// ErrorClassifier maps a failed converter invocation to an ErrorKind. The
// default implementation is a string/exit-code table per converter, kept
// behind this interface per spec §9 so it can be swapped per converter once
// converters adopt a cooperative exit-code contract (2 = bad geometry,
// 3 = unreadable input, 1 = internal).
type ErrorClassifier interface {
	Classify(converter string, exitCode int, stderr string) ErrorKind
}

// tableClassifier is the default ErrorClassifier: known exit codes take
// priority, falling back to a closed set of stderr substrings; anything
// unmatched classifies as internal.
type tableClassifier struct{}

// DefaultClassifier is the classifier used by the pipeline unless overridden
// in tests.
var DefaultClassifier ErrorClassifier = tableClassifier{}

var knownGeometryHints = []string{
	"empty scene",
	"open polygon",
	"unreadable image",
	"failed to mesh",
	"no closed contour",
	"degenerate mesh",
}

func (tableClassifier) Classify(converter string, exitCode int, stderr string) ErrorKind {
	switch exitCode {
	case 2, 3:
		return ErrorKindInvalidGeometry
	case 1:
		return ErrorKindInternal
	}

	lower := strings.ToLower(stderr)
	for _, hint := range knownGeometryHints {
		if strings.Contains(lower, hint) {
			return ErrorKindInvalidGeometry
		}
	}

	return ErrorKindInternal
}
