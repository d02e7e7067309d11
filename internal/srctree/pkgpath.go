package srctree

import (
	"strings"
)

// PackagePath extracts the declared package of a Java source unit as an
// ordered sequence of directory segments: "package com.x.y;" yields
// ["com" "x" "y"]. Only the leading declaration counts: the first non-comment,
// non-blank statement must be the package declaration, otherwise the unit
// belongs at the source root and nil is returned. The function is pure so the
// namespace-to-path mapping is testable without touching disk.
func PackagePath(src []byte) []string {
	inBlockComment := false

	for _, line := range strings.Split(string(src), "\n") {
		line = strings.TrimSpace(line)

		if inBlockComment {
			if i := strings.Index(line, "*/"); i >= 0 {
				line = strings.TrimSpace(line[i+2:])
				inBlockComment = false
			} else {
				continue
			}
		}

		// Strip any complete /* ... */ comments on this line.
		for {
			start := strings.Index(line, "/*")
			if start < 0 {
				break
			}
			end := strings.Index(line[start:], "*/")
			if end < 0 {
				line = strings.TrimSpace(line[:start])
				inBlockComment = true
				break
			}
			line = strings.TrimSpace(line[:start] + line[start+end+2:])
		}

		if i := strings.Index(line, "//"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" {
			continue
		}

		decl, ok := strings.CutPrefix(line, "package")
		if !ok {
			// First real statement is not a package declaration.
			return nil
		}
		if decl != "" && !strings.HasPrefix(decl, " ") && !strings.HasPrefix(decl, "\t") {
			// Identifier merely starting with "package" (e.g. "packageX").
			return nil
		}
		decl = strings.TrimSpace(decl)
		decl, ok = strings.CutSuffix(decl, ";")
		if !ok {
			return nil
		}
		return splitPackage(strings.TrimSpace(decl))
	}
	return nil
}

func splitPackage(decl string) []string {
	if decl == "" {
		return nil
	}
	segments := strings.Split(decl, ".")
	for _, seg := range segments {
		if !validSegment(seg) {
			return nil
		}
	}
	return segments
}

// validSegment accepts Java identifier segments: a letter, underscore, or
// dollar sign followed by letters, digits, underscores, or dollar signs.
func validSegment(seg string) bool {
	if seg == "" {
		return false
	}
	for i, r := range seg {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
