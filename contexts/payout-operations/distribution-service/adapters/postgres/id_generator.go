package postgresadapter

import "github.com/google/uuid"

// UUIDGenerator mints audit record ids.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}
