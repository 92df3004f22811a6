package domain

import "fmt"

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// AuthenticationError is returned when a mutation has no acting user.
type AuthenticationError struct{}

func (e AuthenticationError) Error() string {
	return "authentication required"
}

func (e AuthenticationError) Is(target error) bool {
	_, ok := target.(AuthenticationError)
	if ok {
		return true
	}
	_, ok = target.(*AuthenticationError)
	return ok
}

var ErrAuthentication = AuthenticationError{}

// PermissionError is returned when the acting user is not an admin of the project.
type PermissionError struct {
	ProjectID string
}

func (e PermissionError) Error() string {
	if e.ProjectID == "" {
		return "permission denied"
	}
	return fmt.Sprintf("permission denied on project %s", e.ProjectID)
}

func (e PermissionError) Is(target error) bool {
	_, ok := target.(PermissionError)
	if ok {
		return true
	}
	_, ok = target.(*PermissionError)
	return ok
}

var ErrPermission = PermissionError{}

// ArgumentError is returned for a missing or unresolvable input, such as an
// unknown project.
type ArgumentError struct {
	Field string
}

func (e ArgumentError) Error() string {
	if e.Field == "" {
		return "invalid argument"
	}
	return fmt.Sprintf("invalid argument: %s", e.Field)
}

func (e ArgumentError) Is(target error) bool {
	_, ok := target.(ArgumentError)
	if ok {
		return true
	}
	_, ok = target.(*ArgumentError)
	return ok
}

var ErrArgument = ArgumentError{}

// DispatchError wraps a failed call to a remote collaborator
// (manifest generator or migration target).
type DispatchError struct {
	Target string
	Err    error
}

func (e DispatchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("dispatch to %s failed", e.Target)
	}
	return fmt.Sprintf("dispatch to %s failed: %v", e.Target, e.Err)
}

func (e DispatchError) Unwrap() error {
	return e.Err
}

func (e DispatchError) Is(target error) bool {
	_, ok := target.(DispatchError)
	if ok {
		return true
	}
	_, ok = target.(*DispatchError)
	return ok
}

var ErrDispatch = DispatchError{}
