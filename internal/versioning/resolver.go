// Package versioning resolves declared dependency versions and compares
// project versions against published ones.
package versioning

import (
	"fmt"
	"strings"

	"github.com/jakoblorz/go-mvnaudit/internal/models"
)

// ManagedVersions supplies the version for a declaration that omits one.
// *models.Project satisfies it through its resolved declarations.
type ManagedVersions interface {
	ManagedVersion(groupID, artifactID string) (string, bool)
}

// Resolve turns a raw declaration into a concrete coordinate.
//
// A literal version is used as is. Without one, the version comes from
// managed (the parent project); a nil managed means the parent is not known.
// The result is then interpolated against props.
func Resolve(decl models.DependencyDecl, props map[string]string, managed ManagedVersions) (models.Coordinate, error) {
	version := decl.Version
	if !decl.HasVersion {
		if managed == nil {
			return models.Coordinate{}, fmt.Errorf("%w: %s has no version and no known parent", models.ErrUnresolvableManagedVersion, decl.ArtifactKey())
		}
		v, ok := managed.ManagedVersion(decl.GroupID, decl.ArtifactID)
		if !ok {
			return models.Coordinate{}, fmt.Errorf("%w: %s is not managed by the parent", models.ErrUnresolvableManagedVersion, decl.ArtifactKey())
		}
		version = v
	}

	resolved, err := Interpolate(version, props)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("%s: %w", decl.ArtifactKey(), err)
	}

	return models.NewCoordinate(decl.GroupID, decl.ArtifactID, resolved), nil
}

// IsPlaceholder reports whether s is a whole-string property reference such as "${guava.version}".
func IsPlaceholder(s string) bool {
	return len(s) > 3 && strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}")
}

// Interpolate substitutes a property placeholder with its value from props,
// following chains of placeholders. Literal input is returned unchanged.
func Interpolate(value string, props map[string]string) (string, error) {
	seen := map[string]bool{}
	for IsPlaceholder(value) {
		name := value[2 : len(value)-1]
		if seen[name] {
			return "", fmt.Errorf("%w: property cycle through %q", models.ErrUnresolvedVersion, name)
		}
		seen[name] = true

		next, ok := props[name]
		if !ok {
			return "", fmt.Errorf("%w: %q", models.ErrUndefinedProperty, name)
		}
		value = next
	}

	if value == "" || strings.Contains(value, "${") {
		return "", fmt.Errorf("%w: %q is not a literal version", models.ErrUnresolvedVersion, value)
	}
	return value, nil
}

// ProjectProperties returns the properties a project's versions are
// interpolated against: the project's own properties block plus the
// project.* built-ins. Explicit properties win.
func ProjectProperties(p *models.Project) map[string]string {
	props := map[string]string{
		"project.groupId":    p.Coordinate.GroupID,
		"project.artifactId": p.Coordinate.ArtifactID,
		"project.version":    p.Coordinate.Version,
		"pom.version":        p.Coordinate.Version,
		"version":            p.Coordinate.Version,
	}
	if p.Parent != nil {
		props["project.parent.groupId"] = p.Parent.GroupID
		props["project.parent.artifactId"] = p.Parent.ArtifactID
		props["project.parent.version"] = p.Parent.Version
	}
	for name, value := range p.Properties {
		props[name] = value
	}
	return props
}

// ResolveProjectVersion interpolates the project's own version, as in
// <version>${revision}</version>. Properties inherited from the parent
// project are consulted after the project's own; inherited may be nil.
// The project.version built-ins are left out since they refer to the value
// being resolved.
func ResolveProjectVersion(p *models.Project, inherited map[string]string) error {
	if !strings.Contains(p.Coordinate.Version, "${") {
		return nil
	}

	props := make(map[string]string, len(inherited)+len(p.Properties))
	for name, value := range inherited {
		props[name] = value
	}
	for name, value := range ProjectProperties(p) {
		props[name] = value
	}
	for _, self := range []string{"project.version", "pom.version", "version"} {
		if _, explicit := p.Properties[self]; !explicit {
			delete(props, self)
		}
	}

	version, err := Interpolate(p.Coordinate.Version, props)
	if err != nil {
		return fmt.Errorf("version of %s: %w", p.Key(), err)
	}
	p.Coordinate.Version = version
	return nil
}
