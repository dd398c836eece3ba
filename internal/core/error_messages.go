package core

// error_messages.go maps technical errors to messages shown in the dashboard.
//
// Users can quote the code to whoever runs the server; the original error is
// logged alongside it.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large
//	FILE002 - Invalid CSV (parse error or a row longer than the header)
//	FILE003 - Encoding error
//	FILE004 - No file selected
//	FILE005 - Empty file
//	FILE006 - Too many rows
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Selected column does not exist or is not eligible
//	VAL002 - Column has the wrong kind for the operation
//	VAL003 - Parameter out of range
//
// # Chart Errors (CHART001-CHART099)
//
//	CHART001 - Unknown chart kind
//	CHART002 - Chart unavailable for this dataset
//	CHART003 - Selected columns hold no plottable values
//	CHART004 - Unsupported image format
//
// # Session Errors (SES001-SES099)
//
//	SES001 - No dataset uploaded in this session (or it expired)
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL001 - Too many concurrent uploads
//	UPL002 - Request cancelled
//	UPL003 - Request timed out
//
// # History Errors (HIS001-HIS099)
//
//	HIS001 - Upload history is disabled
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests
//
// # Fallback (ERR000)
//
//	ERR000 - Unexpected error; check server logs.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/vizboard/internal/charts"
	"github.com/JonMunkholm/vizboard/internal/dataset"
	"github.com/JonMunkholm/vizboard/internal/history"
	"github.com/JonMunkholm/vizboard/internal/store"
)

// UserMessage provides user-friendly error information.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern  string
	sentinel error
	msg      UserMessage
}

// errorPatterns is searched in order; the first match wins, so specific
// patterns come before the generic context errors. Sentinels are checked
// with errors.Is before any pattern is matched against the error text.
var errorPatterns = []errorPattern{
	// File errors
	{
		pattern:  "file too large",
		sentinel: ErrFileTooLarge,
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Upload a smaller CSV or remove unused columns",
			Code:    "FILE001",
		},
	},
	{
		pattern:  "invalid csv",
		sentinel: dataset.ErrInvalidCSV,
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Check that every row has no more fields than the header",
			Code:    "FILE002",
		},
	},
	{
		pattern:  "encoding error",
		sentinel: dataset.ErrEncoding,
		msg: UserMessage{
			Message: "File contains characters that could not be decoded",
			Action:  "Save the file as UTF-8 or Latin-1",
			Code:    "FILE003",
		},
	},
	{
		pattern:  "no file provided",
		sentinel: ErrNoFile,
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Choose a CSV file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern:  "empty file",
		sentinel: dataset.ErrEmptyFile,
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Upload a CSV file with a header row",
			Code:    "FILE005",
		},
	},
	{
		pattern:  "too many rows",
		sentinel: dataset.ErrTooManyRows,
		msg: UserMessage{
			Message: "File has more rows than the dashboard accepts",
			Action:  "Upload a sample of the data",
			Code:    "FILE006",
		},
	},

	// Validation errors
	{
		pattern:  "column not found",
		sentinel: dataset.ErrColumnNotFound,
		msg: UserMessage{
			Message: "Selected column is not available for this chart",
			Action:  "Pick one of the listed columns",
			Code:    "VAL001",
		},
	},
	{
		pattern:  "wrong column kind",
		sentinel: dataset.ErrWrongKind,
		msg: UserMessage{
			Message: "Column has the wrong type for this operation",
			Action:  "Pick a numeric column",
			Code:    "VAL002",
		},
	},
	{
		pattern:  "invalid parameter",
		sentinel: charts.ErrInvalidParam,
		msg: UserMessage{
			Message: "Chart setting is out of range",
			Action:  "Adjust the setting and try again",
			Code:    "VAL003",
		},
	},

	// Chart errors
	{
		pattern:  "unknown chart",
		sentinel: charts.ErrUnknownChart,
		msg: UserMessage{
			Message: "Chart does not exist",
			Action:  "Return to the dashboard",
			Code:    "CHART001",
		},
	},
	{
		pattern:  "chart unavailable",
		sentinel: charts.ErrUnavailable,
		msg: UserMessage{
			Message: "This chart needs columns the dataset does not have",
			Action:  "Upload a dataset with the required column types",
			Code:    "CHART002",
		},
	},
	{
		pattern:  "no plottable values",
		sentinel: charts.ErrNoData,
		msg: UserMessage{
			Message: "Selected columns contain no values to plot",
			Action:  "Pick columns with data",
			Code:    "CHART003",
		},
	},
	{
		pattern:  "unsupported image format",
		sentinel: charts.ErrUnsupportedFormat,
		msg: UserMessage{
			Message: "Image format is not supported",
			Action:  "Use png or svg",
			Code:    "CHART004",
		},
	},

	// Session errors
	{
		pattern:  "no dataset uploaded",
		sentinel: ErrNoDataset,
		msg: UserMessage{
			Message: "No dataset has been uploaded",
			Action:  "Upload a CSV file to begin",
			Code:    "SES001",
		},
	},
	{
		pattern:  "session has no upload",
		sentinel: store.ErrNotFound,
		msg: UserMessage{
			Message: "No dataset has been uploaded",
			Action:  "Upload a CSV file to begin",
			Code:    "SES001",
		},
	},

	// Upload errors
	{
		pattern:  "too many concurrent uploads",
		sentinel: ErrTooManyUploads,
		msg: UserMessage{
			Message: "Too many uploads in progress",
			Action:  "Please wait a moment and try again",
			Code:    "UPL001",
		},
	},
	{
		pattern:  "context canceled",
		sentinel: context.Canceled,
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL002",
		},
	},
	{
		pattern:  "context deadline exceeded",
		sentinel: context.DeadlineExceeded,
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or fewer categories",
			Code:    "UPL003",
		},
	},

	// History
	{
		pattern:  "upload history is disabled",
		sentinel: history.ErrDisabled,
		msg: UserMessage{
			Message: "Upload history is not enabled on this server",
			Action:  "Set DATABASE_URL to record uploads",
			Code:    "HIS001",
		},
	},

	// Rate limiting
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. Known
// sentinel errors in the chain win; otherwise patterns are matched
// case-insensitively against the full error chain text.
//
//	msg := MapError(fmt.Errorf("load: %w", dataset.ErrEmptyFile))
//	// msg.Code == "FILE005"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, ep := range errorPatterns {
		if ep.sentinel != nil && errors.Is(err, ep.sentinel) {
			return ep.msg
		}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display:
// "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
