package domain

import "errors"

// Authorization.
var (
	ErrNotAuthenticated = errors.New("must be logged in")
	ErrAccessDenied     = errors.New("access not allowed")
	ErrGroupLookup      = errors.New("group lookup failed")
	ErrGroupNotFound    = errors.New("group not found")
)

// Identity provider.
var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrIdentityUnavailable = errors.New("identity provider unavailable")
	ErrIdentityRejected    = errors.New("identity provider rejected the request")
	ErrAccountExists       = errors.New("account already exists")
)

// Email.
var (
	ErrIncompleteEmail     = errors.New("must have email & template set to send an email")
	ErrInvalidTemplateName = errors.New("invalid template name")
	ErrTemplateLoad        = errors.New("template load failed")
	ErrTemplateInline      = errors.New("template css inlining failed")
	ErrTemplateCompile     = errors.New("template compile failed")
	ErrProviderDispatch    = errors.New("email provider dispatch failed")
)

// Password change.
var (
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrResetKeyInvalid  = errors.New("change password key is invalid or expired")
)
