package shared

import "fmt"

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Capacity errors

// CapacityError reports a bound that refused an operation: a full store, a full
// ship, an export store sitting at its floor or a registry at its safety floor.
type CapacityError struct {
	*DomainError
	Holder string
	Limit  int
	Size   int
}

func NewCapacityError(holder string, size, limit int) *CapacityError {
	return &CapacityError{
		DomainError: &DomainError{Message: fmt.Sprintf("%s refused operation: size %d, limit %d", holder, size, limit)},
		Holder:      holder,
		Limit:       limit,
		Size:        size,
	}
}

// Precondition errors

// PreconditionError reports an operation attempted in the wrong state.
type PreconditionError struct {
	*DomainError
	Operation string
	State     string
}

func NewPreconditionError(operation, state, reason string) *PreconditionError {
	return &PreconditionError{
		DomainError: &DomainError{Message: fmt.Sprintf("cannot %s in state %s: %s", operation, state, reason)},
		Operation:   operation,
		State:       state,
	}
}

// Consistency errors

type ConsistencyKind string

const (
	DuplicateEntity ConsistencyKind = "DUPLICATE_ENTITY"
	EntityNotFound  ConsistencyKind = "NOT_FOUND"
)

// ConsistencyError is raised when an operation would break the registry's
// membership contract. The operation that raised it has not mutated anything.
type ConsistencyError struct {
	*DomainError
	Kind ConsistencyKind
	Code string
}

func NewDuplicateEntityError(code string) *ConsistencyError {
	return &ConsistencyError{
		DomainError: &DomainError{Message: fmt.Sprintf("container %s already exists", code)},
		Kind:        DuplicateEntity,
		Code:        code,
	}
}

func NewEntityNotFoundError(code string) *ConsistencyError {
	return &ConsistencyError{
		DomainError: &DomainError{Message: fmt.Sprintf("container %s not found", code)},
		Kind:        EntityNotFound,
		Code:        code,
	}
}

// Deletion errors

// DeletionDeniedError names the removal guard that refused a global deletion.
type DeletionDeniedError struct {
	*DomainError
	Code  string
	Guard string
}

func NewDeletionDeniedError(code, guard string) *DeletionDeniedError {
	return &DeletionDeniedError{
		DomainError: &DomainError{Message: fmt.Sprintf("cannot remove container %s: %s", code, guard)},
		Code:        code,
		Guard:       guard,
	}
}
