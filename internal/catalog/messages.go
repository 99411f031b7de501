package catalog

// messages.go maps technical errors to coded messages shown to visitors.
//
// Codes are grouped by category:
//
//	CAT001 - Catalog not found: the catalog document is missing
//	CAT002 - Catalog unreadable: the document is not valid JSON or breaks an invariant
//	CAT003 - Catalog unreachable: a remote catalog could not be fetched
//	CAT004 - Catalog read failed: a local catalog file could not be read
//	PRJ001 - Project not found: no visible project has this id
//	VID001 - Unknown video type: the video tag is not youtube, vimeo or local
//	VID002 - Incomplete video: the video is missing its id or src
//	ERR001 - Timeout: the request ran past its deadline
//	NAV001 - Page not found: no page or language at this address
//	SES001 - Session expired: the browsing session is gone
//	RATE001 - Rate limited: too many requests
//	ERR000 - Unknown error: anything else; check the server log
//
// Sentinel errors are matched with errors.Is first. Plain-text patterns are
// a second pass, matched case-insensitively with strings.Contains, for
// errors that come from outside this module.

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrProjectNotFound is returned when a project id does not resolve to a visible project.
var ErrProjectNotFound = errors.New("project not found")

// UserMessage is a visitor-facing explanation of an error.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Reference code for the log
}

type errorKind struct {
	target error
	msg    UserMessage
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorKinds is checked in order, first match wins.
var errorKinds = []errorKind{
	{
		target: ErrNotFound,
		msg: UserMessage{
			Message: "The portfolio catalog could not be found",
			Action:  "Run the sync tool to regenerate the catalog",
			Code:    "CAT001",
		},
	},
	{
		target: ErrParse,
		msg: UserMessage{
			Message: "The portfolio catalog could not be read",
			Action:  "Check the spreadsheet and run the sync tool again",
			Code:    "CAT002",
		},
	},
	{
		target: ErrNetwork,
		msg: UserMessage{
			Message: "The portfolio catalog could not be fetched",
			Action:  "Please try again in a few moments",
			Code:    "CAT003",
		},
	},
	{
		target: ErrRead,
		msg: UserMessage{
			Message: "The portfolio catalog file could not be read",
			Action:  "Check the file permissions and the disk, then restart the server",
			Code:    "CAT004",
		},
	},
	{
		target: ErrProjectNotFound,
		msg: UserMessage{
			Message: "This project does not exist",
			Action:  "Go back to the portfolio",
			Code:    "PRJ001",
		},
	},
	{
		target: ErrUnknownVideoType,
		msg: UserMessage{
			Message: "This video cannot be played",
			Action:  "Use youtube, vimeo or local as video_type",
			Code:    "VID001",
		},
	},
	{
		target: ErrInvalidVideo,
		msg: UserMessage{
			Message: "This video is incomplete",
			Action:  "Fill video_id or video_src in the spreadsheet",
			Code:    "VID002",
		},
	},
	{
		target: context.DeadlineExceeded,
		msg: UserMessage{
			Message: "The request timed out",
			Action:  "Please try again",
			Code:    "ERR001",
		},
	},
}

var errorPatterns = []errorPattern{
	{
		pattern: "page not found",
		msg: UserMessage{
			Message: "This page does not exist",
			Action:  "Go back to the portfolio",
			Code:    "NAV001",
		},
	},
	{
		pattern: "session expired",
		msg: UserMessage{
			Message: "Your browsing session has expired",
			Action:  "Reload the page",
			Code:    "SES001",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again later",
	Code:    "ERR000",
}

// MapError converts err to a visitor-facing message. A nil error maps to the
// zero UserMessage; unmatched errors map to ERR000.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, k := range errorKinds {
		if errors.Is(err, k.target) {
			return k.msg
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

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
