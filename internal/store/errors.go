package store

import (
	"errors"

	"github.com/dotcommander/coinwatch/internal/models"
)

// ErrNotFound matches every *NotFoundError via errors.Is.
var ErrNotFound = errors.New("not found")

// NotFoundError reports a lookup that matched no row. It is not a persistence
// failure: the database answered, the record just is not there.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}
	return e.Entity + " not found: " + e.ID
}

// Description satisfies models.DescriptiveError.
func (e *NotFoundError) Description() string {
	if e.ID == "" {
		return "No " + e.Entity + " found"
	}
	return "No " + e.Entity + " found with id " + e.ID
}

func (e *NotFoundError) ErrorCode() string { return "NOT_FOUND" }

func (e *NotFoundError) Context() map[string]string {
	ctx := map[string]string{"entity": e.Entity}
	if e.ID != "" {
		ctx["id"] = e.ID
	}
	return ctx
}

func (e *NotFoundError) SuggestedAction() string {
	switch e.Entity {
	case "account":
		return "coinwatch account login --username <name>"
	case "coin":
		return "coinwatch coin refresh --ids " + e.ID
	case "alert":
		return "coinwatch alert list --all"
	case "favorite":
		return "coinwatch favorite list"
	default:
		return ""
	}
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

var (
	_ models.DescriptiveError = (*NotFoundError)(nil)
	_ models.RecoverableError = (*NotFoundError)(nil)
)
