package storage

import "fmt"

// ErrInvalidLimits indicates a store was configured with unusable bounds
type ErrInvalidLimits struct {
	Field string
	Value int
}

func (e *ErrInvalidLimits) Error() string {
	return fmt.Sprintf("invalid store limit %s: %d", e.Field, e.Value)
}

// ErrContainerNotInStore indicates a container was expected in a store but is not there
type ErrContainerNotInStore struct {
	Code  string
	Store string
}

func (e *ErrContainerNotInStore) Error() string {
	return fmt.Sprintf("container %s is not in %s", e.Code, e.Store)
}
