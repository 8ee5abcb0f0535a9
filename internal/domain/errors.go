package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// User errors
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")

	// Quest errors
	ErrQuestNotFound     = errors.New("quest not found")
	ErrQuestExists       = errors.New("quest already exists")
	ErrEmptyCondition    = errors.New("quest condition must not be empty")
	ErrNegativeReward    = errors.New("quest reward must not be negative")
	ErrQuestTitleMissing = errors.New("quest title must not be empty")

	// Activity errors
	ErrUnknownActivityType = errors.New("unknown activity type")
	ErrNegativeValue       = errors.New("activity value must not be negative")
)
