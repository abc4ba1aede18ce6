package workspace

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jakoblorz/go-mvnaudit/internal/filesystem"
	"github.com/jakoblorz/go-mvnaudit/internal/pom"
)

// WorkspaceBuilder helps create test workspaces of checkouts in memory.
type WorkspaceBuilder struct {
	fs   *filesystem.MockFileSystem
	root string
}

// NewWorkspaceBuilder creates a new WorkspaceBuilder
func NewWorkspaceBuilder(root string) *WorkspaceBuilder {
	fs := filesystem.NewMockFileSystem()
	fs.AddDir(root)
	fs.SetCurrentDir(root)

	return &WorkspaceBuilder{
		fs:   fs,
		root: root,
	}
}

// AddRepository adds a git checkout with a root descriptor.
func (wb *WorkspaceBuilder) AddRepository(name string, descriptor POM) *WorkspaceBuilder {
	repoRoot := filepath.Join(wb.root, name)
	wb.fs.AddDir(filepath.Join(repoRoot, ".git"))
	wb.fs.AddFile(filepath.Join(repoRoot, pom.DescriptorFile), []byte(descriptor.XML()))
	return wb
}

// AddModule adds a descriptor at <root>/<path>/pom.xml.
func (wb *WorkspaceBuilder) AddModule(path string, descriptor POM) *WorkspaceBuilder {
	wb.fs.AddFile(filepath.Join(wb.root, path, pom.DescriptorFile), []byte(descriptor.XML()))
	return wb
}

// AddRawDescriptor writes arbitrary content as <root>/<path>/pom.xml.
func (wb *WorkspaceBuilder) AddRawDescriptor(path, content string) *WorkspaceBuilder {
	wb.fs.AddFile(filepath.Join(wb.root, path, pom.DescriptorFile), []byte(content))
	return wb
}

// AddDir adds a plain directory (no checkout marker).
func (wb *WorkspaceBuilder) AddDir(path string) *WorkspaceBuilder {
	wb.fs.AddDir(filepath.Join(wb.root, path))
	return wb
}

// AddIgnore writes the workspace ignore file.
func (wb *WorkspaceBuilder) AddIgnore(patterns ...string) *WorkspaceBuilder {
	wb.fs.AddFile(filepath.Join(wb.root, IgnoreFile), []byte(strings.Join(patterns, "\n")+"\n"))
	return wb
}

// Build finalizes the workspace and returns the filesystem
func (wb *WorkspaceBuilder) Build() *filesystem.MockFileSystem {
	return wb.fs
}

// POM describes a descriptor for tests and fixtures.
type POM struct {
	Parent     *Dep
	GroupID    string
	ArtifactID string
	Version    string
	Properties map[string]string
	Modules    []string
	Deps       []Dep
	Managed    []Dep
}

// Dep is a dependency entry; an empty Version omits the version element.
type Dep struct {
	GroupID    string
	ArtifactID string
	Version    string
}

// XML renders the descriptor with the Maven namespace.
func (p POM) XML() string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<project xmlns="http://maven.apache.org/POM/4.0.0">` + "\n")
	b.WriteString("  <modelVersion>4.0.0</modelVersion>\n")

	if p.Parent != nil {
		b.WriteString("  <parent>\n")
		writeGAV(&b, "    ", *p.Parent)
		b.WriteString("  </parent>\n")
	}
	writeGAV(&b, "  ", Dep{GroupID: p.GroupID, ArtifactID: p.ArtifactID, Version: p.Version})

	if len(p.Properties) > 0 {
		names := make([]string, 0, len(p.Properties))
		for name := range p.Properties {
			names = append(names, name)
		}
		sort.Strings(names)

		b.WriteString("  <properties>\n")
		for _, name := range names {
			fmt.Fprintf(&b, "    <%s>%s</%s>\n", name, p.Properties[name], name)
		}
		b.WriteString("  </properties>\n")
	}

	if len(p.Modules) > 0 {
		b.WriteString("  <modules>\n")
		for _, module := range p.Modules {
			fmt.Fprintf(&b, "    <module>%s</module>\n", module)
		}
		b.WriteString("  </modules>\n")
	}

	writeDeps(&b, "  ", p.Deps)

	if len(p.Managed) > 0 {
		b.WriteString("  <dependencyManagement>\n")
		writeDeps(&b, "    ", p.Managed)
		b.WriteString("  </dependencyManagement>\n")
	}

	b.WriteString("</project>\n")
	return b.String()
}

func writeGAV(b *strings.Builder, indent string, d Dep) {
	if d.GroupID != "" {
		fmt.Fprintf(b, "%s<groupId>%s</groupId>\n", indent, d.GroupID)
	}
	if d.ArtifactID != "" {
		fmt.Fprintf(b, "%s<artifactId>%s</artifactId>\n", indent, d.ArtifactID)
	}
	if d.Version != "" {
		fmt.Fprintf(b, "%s<version>%s</version>\n", indent, d.Version)
	}
}

func writeDeps(b *strings.Builder, indent string, deps []Dep) {
	if len(deps) == 0 {
		return
	}
	b.WriteString(indent + "<dependencies>\n")
	for _, d := range deps {
		b.WriteString(indent + "  <dependency>\n")
		writeGAV(b, indent+"    ", d)
		b.WriteString(indent + "  </dependency>\n")
	}
	b.WriteString(indent + "</dependencies>\n")
}
