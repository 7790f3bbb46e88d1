package convert

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnreadableSource   = errors.New("unreadable source")
	ErrUnsupportedContent = errors.New("unsupported content")
	ErrWriteFailure       = errors.New("write failure")
	ErrDirectory          = errors.New("directory error")
	ErrConfiguration      = errors.New("configuration error")
)

// Reason is the stable failure label recorded in batch summaries.
type Reason string

const (
	ReasonUnreadableSource   Reason = "unreadable_source"
	ReasonUnsupportedContent Reason = "unsupported_content"
	ReasonWriteFailure       Reason = "write_failure"
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrWriteFailure
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ReasonFor maps a classified conversion error to its summary reason. Errors
// without a marker are attributed to the write path; that is the only stage
// allowed to surface untagged I/O errors.
func ReasonFor(err error) Reason {
	switch {
	case errors.Is(err, ErrUnreadableSource):
		return ReasonUnreadableSource
	case errors.Is(err, ErrUnsupportedContent):
		return ReasonUnsupportedContent
	default:
		return ReasonWriteFailure
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "conversion failure"
	}
	return strings.Join(parts, ": ")
}
