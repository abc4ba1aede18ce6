package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/charmbracelet/lipgloss"
	"github.com/jakoblorz/go-mvnaudit/internal/graph"
	"github.com/jakoblorz/go-mvnaudit/internal/tui"
	"github.com/jakoblorz/go-mvnaudit/internal/versioning"
)

// Format is an output format of the audit report.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatDOT  Format = "dot"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatDOT:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (want text, json or dot)", s)
}

// Write renders r in format f. Styling applies to the text format only.
func (r *Report) Write(w io.Writer, f Format, styled bool) error {
	switch f {
	case FormatJSON:
		return r.WriteJSON(w)
	case FormatDOT:
		return r.WriteDOT(w)
	default:
		return r.WriteText(w, styled)
	}
}

const textTemplate = `Audit {{ .RunID }} of {{ .Workspace }}
Organization: {{ join ", " .Organization }}
{{ repeat 60 "-" }}
{{ pad "PROJECT" .Widths.Key }}  {{ pad "VERSION" .Widths.Version }}  {{ pad "LATEST" .Widths.Latest }}  {{ pad "STATUS" 10 }}  DEPS  DEPENDENTS
{{- range .Projects }}
{{ pad .Key $.Widths.Key }}  {{ pad .Version $.Widths.Version }}  {{ pad (default "-" .LatestVersion) $.Widths.Latest }}  {{ status .Status 10 }}  {{ printf "%4d" (len .Dependencies) }}  {{ join ", " .Dependents | default "-" }}
{{- end }}
{{ repeat 60 "-" }}
{{ .Summary.Projects }} projects, {{ .Summary.Edges }} edges: {{ .Summary.UpToDate }} up-to-date, {{ .Summary.Behind }} behind, {{ .Summary.Unreleased }} unreleased
{{- if .External }}

Organization dependencies outside the workspace:
{{- range .External }}
  {{ .From }} -> {{ .Dependency }}
{{- end }}
{{- end }}
{{- if .Issues }}

{{ heading (printf "Issues (%d)" (len .Issues)) }}
{{- range .Issues }}
  [{{ .Scope }}/{{ .Kind }}] {{ .Message }}
{{- end }}
{{- end }}
`

type widths struct {
	Key, Version, Latest int
}

// WriteText renders the human-readable table. styled colors the status
// column and headings with lipgloss.
func (r *Report) WriteText(w io.Writer, styled bool) error {
	funcs := sprig.TxtFuncMap()
	funcs["pad"] = pad
	funcs["status"] = func(status string, width int) string {
		cell := pad(status, width)
		if !styled {
			return cell
		}
		return statusStyle(status).Render(cell)
	}
	funcs["heading"] = func(s string) string {
		if !styled {
			return s
		}
		return tui.TitleStyle.UnsetMarginBottom().Render(s)
	}

	tmpl, err := template.New("report").Funcs(funcs).Parse(textTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse report template: %w", err)
	}

	data := struct {
		*Report
		Widths widths
	}{Report: r, Widths: r.widths()}

	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

func (r *Report) widths() widths {
	wd := widths{Key: len("PROJECT"), Version: len("VERSION"), Latest: len("LATEST")}
	for _, p := range r.Projects {
		wd.Key = max(wd.Key, len(p.Key))
		wd.Version = max(wd.Version, len(p.Version))
		wd.Latest = max(wd.Latest, len(p.LatestVersion))
	}
	return wd
}

func pad(s string, width int) string {
	return fmt.Sprintf("%-*s", width, s)
}

func statusStyle(status string) lipgloss.Style {
	switch versioning.Status(status) {
	case versioning.StatusCurrent:
		return tui.SuccessStyle
	case versioning.StatusBehind:
		return tui.ErrorStyle
	case versioning.StatusAhead:
		return tui.WarningStyle
	default:
		return tui.SubtleStyle
	}
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// WriteDOT writes the organization graph in Graphviz DOT. Projects behind
// their latest release are drawn red, up-to-date ones green.
func (r *Report) WriteDOT(w io.Writer) error {
	var b strings.Builder
	b.WriteString("digraph mvnaudit {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box, fontname=\"Helvetica\"];\n")

	for _, p := range r.Projects {
		attrs := fmt.Sprintf("label=%q", p.Key+"\n"+p.Version)
		switch versioning.Status(p.Status) {
		case versioning.StatusBehind:
			attrs += ", color=red"
		case versioning.StatusCurrent:
			attrs += ", color=darkgreen"
		}
		fmt.Fprintf(&b, "  %q [%s];\n", p.Key, attrs)
	}

	for _, e := range r.edges {
		fmt.Fprintf(&b, "  %q -> %q [label=%q];\n", e.from, e.to, e.version)
	}

	b.WriteString("}\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write graph: %w", err)
	}
	return nil
}

// WriteDependents lists the projects depending on key, one line per
// declared occurrence, with the version each one depends on.
func WriteDependents(w io.Writer, g *graph.Graph, key string) error {
	target, ok := g.Projects.Get(key)
	if !ok {
		return fmt.Errorf("project %s is not part of the workspace", key)
	}

	type line struct{ from, version string }
	var lines []line
	seen := map[string]bool{}
	for _, dependent := range g.Dependents(key) {
		if seen[dependent.Key()] {
			continue
		}
		seen[dependent.Key()] = true
		for _, dep := range dependent.Dependencies {
			if dep.ArtifactKey() == key {
				lines = append(lines, line{from: dependent.Coordinate.VersionKey(), version: dep.Version})
			}
		}
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].from < lines[j].from })

	fmt.Fprintf(w, "%s (latest %s)\n", target.Coordinate.VersionKey(), orDash(target.LatestVersion))
	if len(lines) == 0 {
		fmt.Fprintln(w, "  no dependents in the workspace")
		return nil
	}
	for _, l := range lines {
		marker := ""
		if l.version != target.Coordinate.Version {
			marker = fmt.Sprintf(" (workspace has %s)", target.Coordinate.Version)
		}
		fmt.Fprintf(w, "  %s -> %s%s\n", l.from, l.version, marker)
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
