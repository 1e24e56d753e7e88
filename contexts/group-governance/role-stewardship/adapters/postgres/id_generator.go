package postgresadapter

import (
	"context"

	"github.com/google/uuid"
)

// UUIDGenerator hands out UUID v4 ids for groups, roles and events.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
