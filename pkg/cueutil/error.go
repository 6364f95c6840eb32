// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue/errors"
)

// ValidationError describes why a document was rejected.
type ValidationError struct {
	// FilePath is the document name given through WithFilename.
	FilePath string

	// CUEPath is the dotted path to the invalid value (e.g., "devShells.x86_64-linux").
	// Empty when the error is not attached to a field.
	CUEPath string

	// Message is the validation error message. Multiple CUE errors are
	// joined by newlines.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.CUEPath != "" {
		return fmt.Sprintf("%s: %s: %s", e.FilePath, e.CUEPath, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
}

// FormatError converts a CUE error into a *ValidationError whose message
// lists every underlying CUE error with its path.
func FormatError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	cueErrors := errors.Errors(err)
	if len(cueErrors) == 0 {
		return &ValidationError{FilePath: filePath, Message: err.Error()}
	}

	var (
		lines     []string
		firstPath string
	)
	for _, e := range cueErrors {
		pathStr := formatPath(errors.Path(e))
		msg := e.Error()

		// CUE sometimes repeats the path at the start of the message.
		if pathStr != "" && strings.HasPrefix(msg, pathStr) {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, pathStr), ":"))
		}

		if firstPath == "" {
			firstPath = pathStr
		}
		if pathStr != "" && len(cueErrors) > 1 {
			msg = pathStr + ": " + msg
		}
		lines = append(lines, msg)
	}

	if len(lines) == 1 {
		return &ValidationError{FilePath: filePath, CUEPath: firstPath, Message: lines[0]}
	}
	return &ValidationError{FilePath: filePath, Message: "validation failed:\n  " + strings.Join(lines, "\n  ")}
}

// formatPath renders a CUE error path in JSON-path notation: numeric
// elements become indices ("shells[0].name").
func formatPath(path []string) string {
	var b strings.Builder
	for i, part := range path {
		if i > 0 && isIndex(part) {
			b.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// CheckFileSize verifies that data does not exceed maxSize.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return &ValidationError{
			FilePath: filename,
			Message:  fmt.Sprintf("size %d bytes exceeds maximum %d bytes", len(data), maxSize),
		}
	}
	return nil
}
