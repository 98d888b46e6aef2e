package common

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const userIDKey contextKey = "user_id"

// WithUserID records the acting user for attribution of writes.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDKey).(uuid.UUID)
	return userID, ok
}

// ValidateUUID parses an identifier taken from a path or query parameter.
// The nil UUID is rejected because no stored document carries it.
func ValidateUUID(raw string, fieldName string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return uuid.Nil, fmt.Errorf("%s is required", fieldName)
	case len(raw) != 36:
		return uuid.Nil, fmt.Errorf("%s must be a 36 character UUID", fieldName)
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s is not a valid UUID: %w", fieldName, err)
	}
	if id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%s must not be the nil UUID", fieldName)
	}
	return id, nil
}
