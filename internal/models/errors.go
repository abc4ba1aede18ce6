package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for the audit pipeline. Wrap them with fmt.Errorf("...: %w")
// and test with errors.Is.
var (
	ErrWorkspaceNotFound = errors.New("workspace not found")

	// Project-level: the descriptor is skipped.
	ErrMalformedDescriptor = errors.New("malformed descriptor")
	ErrMissingField        = errors.New("missing required field")
	ErrUnresolvedGroup     = errors.New("unresolved groupId")
	ErrUnresolvedVersion   = errors.New("unresolved version")
	ErrDuplicateCoordinate = errors.New("duplicate coordinate")

	// Dependency-level: the edge is dropped.
	ErrUnresolvableManagedVersion = errors.New("unresolvable managed version")
	ErrUndefinedProperty          = errors.New("undefined property")

	// Oracle-level: latest version stays unset.
	ErrOracleStatus = errors.New("unexpected oracle response")

	// Internal consistency violation; aborts the run.
	ErrDanglingDependency = errors.New("dangling dependency")
)

// IssueScope tells how much of the run an issue affected.
type IssueScope string

const (
	ScopeProject    IssueScope = "project"
	ScopeDependency IssueScope = "dependency"
	ScopeOracle     IssueScope = "oracle"
)

// Issue is a recoverable problem collected during a run and reported at the end.
type Issue struct {
	Scope IssueScope
	// Path is the descriptor the issue was found in, if any.
	Path string
	// Key is the artifact key of the affected project or dependency, if known.
	Key string
	Err error
}

func (i Issue) Error() string {
	switch {
	case i.Key != "" && i.Path != "":
		return fmt.Sprintf("%s %s (%s): %v", i.Scope, i.Key, i.Path, i.Err)
	case i.Key != "":
		return fmt.Sprintf("%s %s: %v", i.Scope, i.Key, i.Err)
	case i.Path != "":
		return fmt.Sprintf("%s %s: %v", i.Scope, i.Path, i.Err)
	default:
		return fmt.Sprintf("%s: %v", i.Scope, i.Err)
	}
}

func (i Issue) Unwrap() error {
	return i.Err
}

// Kind returns the sentinel name the issue wraps, for grouping in reports and metrics.
func (i Issue) Kind() string {
	for _, k := range issueKinds {
		if errors.Is(i.Err, k.err) {
			return k.name
		}
	}
	return "other"
}

var issueKinds = []struct {
	name string
	err  error
}{
	{"malformed_descriptor", ErrMalformedDescriptor},
	{"missing_field", ErrMissingField},
	{"unresolved_group", ErrUnresolvedGroup},
	{"unresolvable_managed_version", ErrUnresolvableManagedVersion},
	{"undefined_property", ErrUndefinedProperty},
	{"unresolved_version", ErrUnresolvedVersion},
	{"duplicate_coordinate", ErrDuplicateCoordinate},
	{"oracle_status", ErrOracleStatus},
}
