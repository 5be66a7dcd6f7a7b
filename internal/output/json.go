// Package output renders command results as a JSON envelope.
// Commands handle any human-readable formatting themselves.
package output

import (
	"encoding/json"
	"errors"
	"io"
	"os"
)

// SchemaVersion of the envelope.
const SchemaVersion = "v1"

// Response represents a standard JSON response
type Response struct {
	SchemaVersion   string            `json:"schema_version"`
	Success         bool              `json:"success"`
	Data            any               `json:"data,omitempty"`
	Error           string            `json:"error,omitempty"`
	Description     string            `json:"description,omitempty"`
	ErrorCode       string            `json:"error_code,omitempty"`
	ErrorContext    map[string]string `json:"context,omitempty"`
	SuggestedAction string            `json:"suggested_action,omitempty"`
}

// descriptiveError and recoverableError mirror the models interfaces so this
// package stays free of domain imports.
type descriptiveError interface {
	error
	Description() string
}

type recoverableError interface {
	error
	ErrorCode() string
	Context() map[string]string
	SuggestedAction() string
}

// Success wraps a successful response with data
func Success(data any) Response {
	return Response{
		SchemaVersion: SchemaVersion,
		Success:       true,
		Data:          data,
	}
}

// Error wraps an error in a response. Classified errors add their description
// and, when recoverable, a code, context and suggested action.
func Error(err error) Response {
	resp := Response{
		SchemaVersion: SchemaVersion,
		Success:       false,
		Error:         err.Error(),
	}

	var de descriptiveError
	if errors.As(err, &de) {
		resp.Description = de.Description()
	}

	var re recoverableError
	if errors.As(err, &re) {
		resp.ErrorCode = re.ErrorCode()
		resp.ErrorContext = re.Context()
		resp.SuggestedAction = re.SuggestedAction()
	}
	return resp
}

// Config controls where and how JSON is written.
type Config struct {
	Writer io.Writer
	Pretty bool
}

// DefaultConfig writes to stdout; COINWATCH_PRETTY_JSON=1 (or true) indents.
func DefaultConfig() Config {
	v := os.Getenv("COINWATCH_PRETTY_JSON")
	return Config{
		Writer: os.Stdout,
		Pretty: v == "1" || v == "true",
	}
}

// PrintWith encodes v as one JSON document followed by a newline.
func PrintWith(cfg Config, v any) error {
	enc := json.NewEncoder(cfg.Writer)
	if cfg.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// Print prints a value as JSON to stdout
func Print(v any) error {
	return PrintWith(DefaultConfig(), v)
}

// PrintSuccess prints a success response
func PrintSuccess(data any) error {
	return Print(Success(data))
}

// PrintError prints an error response
func PrintError(err error) error {
	return Print(Error(err))
}
