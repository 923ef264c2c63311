// Package stacktrace trims runtime stacks down to this module's frames.
package stacktrace

import (
	"bufio"
	"bytes"
	"strings"
)

const marker = "/internal/"

// InternalPaths returns "internal/<pkg>/<file>.go:<line>" for every frame of
// stack that lives under an internal/ directory.
func InternalPaths(stack []byte) []string {
	var paths []string

	sc := bufio.NewScanner(bytes.NewReader(stack))
	for sc.Scan() {
		loc, _, _ := strings.Cut(strings.TrimSpace(sc.Text()), " ")
		if !strings.Contains(loc, ".go:") {
			continue
		}

		idx := strings.Index(loc, marker)
		if idx < 0 {
			continue
		}

		paths = append(paths, loc[idx+1:])
	}

	return paths
}
