package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"cassa/internal/catalog"
	"cassa/internal/core"
	"cassa/internal/services"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Rejected operation (validation, stock, missing item or sale)
	ExitCommandError = 2 // Command error (bad flags, configuration, storage unavailable)
)

// Error codes reported in CLI output. They match the HTTP API's codes.
const (
	CodeValidation         = "validation_error"
	CodeInsufficientStock  = "insufficient_stock"
	CodeEmptyCart          = "empty_cart"
	CodeItemNotFound       = "item_not_found"
	CodeSaleNotFound       = "sale_not_found"
	CodeUnknownView        = "unknown_view"
	CodeInvalidSeed        = "invalid_seed"
	CodeConfig             = "config_error"
	CodeStorageUnavailable = "storage_unavailable"
	CodeInternal           = "internal_error"
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// classify maps a domain error to its output code and exit code.
func classify(err error) (string, int) {
	switch {
	case errors.Is(err, core.ErrValidation):
		return CodeValidation, ExitFailure
	case errors.Is(err, core.ErrInsufficientStock):
		return CodeInsufficientStock, ExitFailure
	case errors.Is(err, catalog.ErrInvalidSeed):
		return CodeInvalidSeed, ExitFailure
	case errors.Is(err, core.ErrEmptyCart):
		return CodeEmptyCart, ExitFailure
	case errors.Is(err, core.ErrItemNotFound):
		return CodeItemNotFound, ExitFailure
	case errors.Is(err, core.ErrSaleNotFound):
		return CodeSaleNotFound, ExitFailure
	case errors.Is(err, services.ErrUnknownView):
		return CodeUnknownView, ExitFailure
	case errors.Is(err, ErrConfig):
		return CodeConfig, ExitCommandError
	case errors.Is(err, core.ErrStorageInit):
		return CodeStorageUnavailable, ExitCommandError
	}
	return CodeInternal, ExitCommandError
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for warnings and diagnostics (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status  string    `json:"status"`            // "ok" or "error"
	Data    any       `json:"data,omitempty"`    // success payload
	Warning string    `json:"warning,omitempty"` // degraded read, data may be incomplete
	Error   *CLIError `json:"error,omitempty"`   // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Success outputs data in the configured format. In text mode text renders it;
// a nil text prints data with fmt.
func (f *OutputFormatter) Success(data any, text func(io.Writer) error) error {
	return f.SuccessWithWarning(data, "", text)
}

// SuccessWithWarning is Success for reads that fell back to empty data. The
// warning goes to ErrWriter in text mode so piped output stays clean.
func (f *OutputFormatter) SuccessWithWarning(data any, warning string, text func(io.Writer) error) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status:  "ok",
			Data:    data,
			Warning: warning,
		})
	}

	if warning != "" {
		fmt.Fprintf(f.GetErrWriter(), "Warning: %s\n", warning)
	}
	if text == nil {
		_, err := fmt.Fprintln(f.Writer, data)
		return err
	}
	return text(f.Writer)
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	w := f.GetErrWriter()
	fmt.Fprintf(w, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(w, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err and returns the ExitError the command should return.
func (f *OutputFormatter) Fail(message string, err error) error {
	code, exit := classify(err)
	_ = f.Error(code, err.Error(), nil)
	return WrapExitError(exit, message, err)
}

// VerboseLog outputs a message only if verbose mode is enabled.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

func warningText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
