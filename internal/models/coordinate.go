package models

import (
	"fmt"
	"strings"
)

// Coordinate identifies a Maven artifact by group, artifact and version (GAV).
//
// A Coordinate is a value; methods never mutate it.
type Coordinate struct {
	GroupID    string `json:"groupId"`
	ArtifactID string `json:"artifactId"`
	Version    string `json:"version"`
}

// NewCoordinate creates a Coordinate. Callers must not pass an empty group or artifact.
func NewCoordinate(groupID, artifactID, version string) Coordinate {
	return Coordinate{
		GroupID:    groupID,
		ArtifactID: artifactID,
		Version:    version,
	}
}

// ParseArtifactKey parses "group:artifact" (an optional ":version" suffix is kept as the version).
func ParseArtifactKey(s string) (Coordinate, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 || parts[0] == "" || parts[1] == "" {
		return Coordinate{}, fmt.Errorf("invalid coordinate %q (expected group:artifact[:version])", s)
	}

	c := Coordinate{GroupID: parts[0], ArtifactID: parts[1]}
	if len(parts) == 3 {
		c.Version = parts[2]
	}
	return c, nil
}

// ArtifactKey returns "group:artifact", the identity used for graph membership.
func (c Coordinate) ArtifactKey() string {
	return c.GroupID + ":" + c.ArtifactID
}

// VersionKey returns "group:artifact:version".
func (c Coordinate) VersionKey() string {
	return c.GroupID + ":" + c.ArtifactID + ":" + c.Version
}

// MetadataURL returns the location of the artifact's maven-metadata.xml below
// the given repository base, e.g.
// https://repo.maven.apache.org/maven2/com/arpnetworking/metrics/metrics-client/maven-metadata.xml.
func (c Coordinate) MetadataURL(repositoryBase string) string {
	base := strings.TrimRight(repositoryBase, "/")
	return fmt.Sprintf("%s/%s/%s/maven-metadata.xml", base, strings.ReplaceAll(c.GroupID, ".", "/"), c.ArtifactID)
}

// SameArtifact reports whether both coordinates share group and artifact.
func (c Coordinate) SameArtifact(other Coordinate) bool {
	return c.GroupID == other.GroupID && c.ArtifactID == other.ArtifactID
}

func (c Coordinate) String() string {
	if c.Version == "" {
		return c.ArtifactKey()
	}
	return c.VersionKey()
}
