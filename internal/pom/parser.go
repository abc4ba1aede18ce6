package pom

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/jakoblorz/go-mvnaudit/internal/filesystem"
	"github.com/jakoblorz/go-mvnaudit/internal/models"
)

// Parser reads descriptors from a FileSystem.
type Parser struct {
	fs filesystem.FileSystem
}

// NewParser creates a new Parser
func NewParser(fs filesystem.FileSystem) *Parser {
	return &Parser{fs: fs}
}

// Parse reads and parses the descriptor at path.
func (p *Parser) Parse(path string) (*Descriptor, error) {
	data, err := p.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", models.ErrMalformedDescriptor, path, err)
	}
	return ParseBytes(path, data)
}

// ParseBytes parses descriptor content; path is only recorded.
//
// The project's groupId and version fall back to the parent element when
// absent. Dependency versions are left unresolved.
func ParseBytes(path string, data []byte) (*Descriptor, error) {
	var doc pomXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrMalformedDescriptor, path, err)
	}

	artifactID := strings.TrimSpace(doc.ArtifactID)
	if artifactID == "" {
		return nil, fmt.Errorf("%w: %s: artifactId", models.ErrMissingField, path)
	}

	var parent *models.Coordinate
	if doc.Parent != nil {
		c := models.NewCoordinate(
			strings.TrimSpace(doc.Parent.GroupID),
			strings.TrimSpace(doc.Parent.ArtifactID),
			strings.TrimSpace(doc.Parent.Version),
		)
		parent = &c
	}

	groupID := strings.TrimSpace(doc.GroupID)
	if groupID == "" && parent != nil {
		groupID = parent.GroupID
	}
	if groupID == "" {
		return nil, fmt.Errorf("%w: %s: no groupId and no parent groupId", models.ErrUnresolvedGroup, path)
	}

	version := strings.TrimSpace(doc.Version)
	if version == "" && parent != nil {
		version = parent.Version
	}
	if version == "" {
		return nil, fmt.Errorf("%w: %s: no version and no parent version", models.ErrUnresolvedVersion, path)
	}

	desc := &Descriptor{
		Path:       path,
		Coordinate: models.NewCoordinate(groupID, artifactID, version),
		Parent:     parent,
		Properties: map[string]string{},
	}

	for name, value := range doc.Properties {
		desc.Properties[name] = value
	}

	for _, module := range doc.Modules {
		if module = strings.TrimSpace(module); module != "" {
			desc.Modules = append(desc.Modules, module)
		}
	}

	desc.collect(doc.Dependencies, false)
	desc.collect(doc.DependencyManagement, true)

	return desc, nil
}

func (d *Descriptor) collect(deps []pomDepXML, managed bool) {
	for i, dep := range deps {
		groupID := strings.TrimSpace(dep.GroupID)
		artifactID := strings.TrimSpace(dep.ArtifactID)
		if groupID == "" || artifactID == "" {
			block := "dependencies"
			if managed {
				block = "dependencyManagement"
			}
			d.Skipped = append(d.Skipped, fmt.Errorf("%w: %s: %s entry %d lacks groupId or artifactId", models.ErrMissingField, d.Path, block, i+1))
			continue
		}

		version := strings.TrimSpace(dep.Version)
		d.Dependencies = append(d.Dependencies, models.DependencyDecl{
			GroupID:    groupID,
			ArtifactID: artifactID,
			Version:    version,
			HasVersion: version != "",
			Managed:    managed,
		})
	}
}
