package eclipse

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// Descriptor file names. Eclipse requires both at the project root.
const (
	ProjectFileName   = ".project"
	ClasspathFileName = ".classpath"
)

// State tags the result of validating a descriptor against its minimal schema.
type State int

const (
	// StateValid means the existing content satisfies the schema and must not
	// be rewritten (avoids spurious modification timestamps).
	StateValid State = iota
	// StateRepaired means the content was missing, unparsable, or structurally
	// incomplete and has been replaced wholesale by the minimal template.
	StateRepaired
)

// CheckResult is the outcome of a pure descriptor validation. When State is
// StateRepaired, Content holds the full replacement bytes; Issues lists what
// was wrong with the original.
type CheckResult struct {
	State   State
	Content []byte
	Issues  []string
}

// projectTemplate is the minimal working .project for a Java toolchain.
// The name element is deliberately left empty: the renamer fills it in.
const projectTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<projectDescription>
	<name></name>
	<comment></comment>
	<projects>
	</projects>
	<buildSpec>
		<buildCommand>
			<name>org.eclipse.jdt.core.javabuilder</name>
			<arguments>
			</arguments>
		</buildCommand>
	</buildSpec>
	<natures>
		<nature>org.eclipse.jdt.core.javanature</nature>
	</natures>
</projectDescription>
`

// classpathTemplate is the minimal working .classpath: a src entry, an output
// entry, and container references that resolve against the grader's local
// JRE/JUnit installs instead of any machine-specific path.
const classpathTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<classpath>
	<classpathentry kind="src" path="src"/>
	<classpathentry kind="con" path="org.eclipse.jdt.launching.JRE_CONTAINER"/>
	<classpathentry kind="con" path="org.eclipse.jdt.junit.JUNIT_CONTAINER/5"/>
	<classpathentry kind="output" path="bin"/>
</classpath>
`

type projectFile struct {
	XMLName       xml.Name `xml:"projectDescription"`
	Name          *string  `xml:"name"`
	BuildCommands []struct {
		Name string `xml:"name"`
	} `xml:"buildSpec>buildCommand"`
	Natures []string `xml:"natures>nature"`
}

type classpathFile struct {
	XMLName xml.Name `xml:"classpath"`
	Entries []classpathEntry `xml:"classpathentry"`
}

type classpathEntry struct {
	Kind string `xml:"kind,attr"`
	Path string `xml:"path,attr"`
}

// CheckProject validates .project content against the minimal schema: a name
// element, at least one buildCommand, and at least one nature. Malformed input
// never errors; it yields a repair with the template content.
func CheckProject(data []byte) CheckResult {
	var issues []string

	var pf projectFile
	if err := xml.Unmarshal(data, &pf); err != nil {
		issues = append(issues, "unparsable markup: "+err.Error())
		return CheckResult{State: StateRepaired, Content: []byte(projectTemplate), Issues: issues}
	}

	if pf.Name == nil {
		issues = append(issues, "missing name element")
	}
	if !hasNonEmptyBuildCommand(pf) {
		issues = append(issues, "missing buildCommand element")
	}
	if !hasNonEmptyNature(pf) {
		issues = append(issues, "missing nature element")
	}

	if len(issues) > 0 {
		return CheckResult{State: StateRepaired, Content: []byte(projectTemplate), Issues: issues}
	}
	return CheckResult{State: StateValid}
}

func hasNonEmptyBuildCommand(pf projectFile) bool {
	for _, bc := range pf.BuildCommands {
		if strings.TrimSpace(bc.Name) != "" {
			return true
		}
	}
	return false
}

func hasNonEmptyNature(pf projectFile) bool {
	for _, n := range pf.Natures {
		if strings.TrimSpace(n) != "" {
			return true
		}
	}
	return false
}

// CheckClasspath validates .classpath content: one src entry, one output
// entry, and a runtime JRE container, none of which may point at
// machine-specific locations. Known classroom failure modes (lib entries with
// local jar paths, JRE pointers to a specific JDK, renamed user libraries)
// also force a repair, since they only resolve on the student's machine.
func CheckClasspath(data []byte) CheckResult {
	var issues []string

	var cf classpathFile
	if err := xml.Unmarshal(data, &cf); err != nil {
		issues = append(issues, "unparsable markup: "+err.Error())
		return CheckResult{State: StateRepaired, Content: []byte(classpathTemplate), Issues: issues}
	}

	var hasSrc, hasOutput, hasJRE bool
	for _, e := range cf.Entries {
		path := strings.TrimSpace(e.Path)
		switch e.Kind {
		case "src":
			if path != "" {
				hasSrc = true
			}
		case "output":
			if path != "" {
				hasOutput = true
			}
		case "lib":
			issues = append(issues, "lib entry with machine-local path: "+path)
		case "con":
			switch {
			case strings.Contains(path, "JRE_CONTAINER"):
				if strings.Contains(path, "/") {
					issues = append(issues, "JRE container pinned to a machine-specific JDK: "+path)
				} else {
					hasJRE = true
				}
			case strings.Contains(path, "USER_LIBRARY"):
				if lib := userLibraryName(path); lib != "JavaFX" {
					issues = append(issues, "unexpected user library: "+lib)
				}
			}
		}
	}

	if !hasSrc {
		issues = append(issues, "missing src entry")
	}
	if !hasOutput {
		issues = append(issues, "missing output entry")
	}
	if !hasJRE {
		issues = append(issues, "missing JRE container entry")
	}

	if len(issues) > 0 {
		return CheckResult{State: StateRepaired, Content: []byte(classpathTemplate), Issues: issues}
	}
	return CheckResult{State: StateValid}
}

func userLibraryName(conPath string) string {
	parts := strings.Split(conPath, "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// nameSpan is the byte range a rename must rewrite. For a normal element it
// brackets the content between the tags; for a self-closing <name/> it covers
// the whole empty-element tag, which has no interior to splice into.
type nameSpan struct {
	start, end int64
	selfClosed bool
}

// projectName returns the content of the first top-level name element, along
// with the byte span a rename has to rewrite, so a new value can be spliced
// in without disturbing any other content. found is false when the descriptor
// has no name element.
func projectName(data []byte) (name string, span nameSpan, found bool, err error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	depth := 0
	for {
		tokStart := dec.InputOffset()
		tok, terr := dec.Token()
		if terr != nil {
			if errors.Is(terr, io.EOF) {
				return "", nameSpan{}, false, nil
			}
			return "", nameSpan{}, false, terr
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			// Only the direct child of projectDescription is the project name;
			// buildCommand elements nest their own name elements deeper.
			if depth == 2 && t.Name.Local == "name" {
				start := dec.InputOffset()
				var buf strings.Builder
				for {
					innerBefore := dec.InputOffset()
					inner, ierr := dec.Token()
					if ierr != nil {
						return "", nameSpan{}, false, ierr
					}
					if endEl, ok := inner.(xml.EndElement); ok && endEl.Name.Local == "name" {
						// A self-closing tag yields a synthesized EndElement at
						// the same offset as the StartElement; its raw text ends
						// in "/>". Splicing between the tags is impossible, so
						// report the whole tag for replacement.
						if innerBefore == start && bytes.HasSuffix(data[:start], []byte("/>")) {
							return "", nameSpan{start: tokStart, end: start, selfClosed: true}, true, nil
						}
						return buf.String(), nameSpan{start: start, end: innerBefore}, true, nil
					}
					if cd, ok := inner.(xml.CharData); ok {
						buf.Write(cd)
					}
				}
			}
		case xml.EndElement:
			depth--
		}
	}
}
