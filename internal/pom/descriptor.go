// Package pom reads Maven project descriptors (pom.xml).
package pom

import (
	"encoding/xml"
	"path/filepath"
	"strings"

	"github.com/jakoblorz/go-mvnaudit/internal/models"
)

// DescriptorFile is the conventional descriptor name in every module directory.
const DescriptorFile = "pom.xml"

// Descriptor is the parsed content of one pom.xml.
type Descriptor struct {
	Path       string
	Coordinate models.Coordinate
	Parent     *models.Coordinate
	Properties map[string]string
	Modules    []string

	// Dependencies holds the dependencies block followed by the
	// dependencyManagement block.
	Dependencies []models.DependencyDecl

	// Skipped holds declarations dropped for lacking groupId or artifactId.
	Skipped []error
}

// Directory returns the folder containing the descriptor.
func (d *Descriptor) Directory() string {
	return filepath.Dir(d.Path)
}

// ModulePaths returns the descriptor path of every declared module.
func (d *Descriptor) ModulePaths() []string {
	paths := make([]string, 0, len(d.Modules))
	for _, module := range d.Modules {
		paths = append(paths, ModuleDescriptorPath(d.Directory(), module))
	}
	return paths
}

// ModuleDescriptorPath returns <dir>/<module>/pom.xml, cleaned.
func ModuleDescriptorPath(dir, module string) string {
	return filepath.Join(dir, filepath.FromSlash(module), DescriptorFile)
}

// Project converts the descriptor into a workspace project.
func (d *Descriptor) Project() *models.Project {
	project := models.NewProject(d.Path, d.Coordinate)
	project.Parent = d.Parent
	for name, value := range d.Properties {
		project.Properties[name] = value
	}
	project.Declarations = append([]models.DependencyDecl(nil), d.Dependencies...)
	project.Modules = append([]string(nil), d.Modules...)
	return project
}

// pomXML mirrors the subset of the POM schema the auditor needs.
// Element names match regardless of the POM namespace.
type pomXML struct {
	XMLName              xml.Name    `xml:"project"`
	Parent               *pomParent  `xml:"parent"`
	GroupID              string      `xml:"groupId"`
	ArtifactID           string      `xml:"artifactId"`
	Version              string      `xml:"version"`
	Properties           properties  `xml:"properties"`
	Modules              []string    `xml:"modules>module"`
	Dependencies         []pomDepXML `xml:"dependencies>dependency"`
	DependencyManagement []pomDepXML `xml:"dependencyManagement>dependencies>dependency"`
}

type pomParent struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
}

type pomDepXML struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
}

// properties collects the children of <properties> as name -> text.
type properties map[string]string

func (p *properties) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	if *p == nil {
		*p = properties{}
	}
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var value string
			if err := d.DecodeElement(&value, &t); err != nil {
				return err
			}
			(*p)[t.Name.Local] = strings.TrimSpace(value)
		case xml.EndElement:
			return nil
		}
	}
}
