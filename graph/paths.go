package graph

import "strings"

// The host engine re-exports its internal modules under one short
// umbrella module: loom_render is reachable as loom::render. Generated
// imports must use the public alias.
const (
	rootModulePrefix = "loom"
	umbrellaModule   = "loom"
)

// RewriteModule applies the umbrella naming convention to a leading
// module segment. A segment that begins with the root prefix and is
// longer than it is split into the umbrella alias plus the remainder
// (separator byte dropped): "loom_render" → "loom::render". Every other
// segment is returned unchanged.
func RewriteModule(name string) string {
	if strings.HasPrefix(name, rootModulePrefix) && len(name) > len(rootModulePrefix)+1 {
		return umbrellaModule + "::" + name[len(rootModulePrefix)+1:]
	}
	return name
}

// ImportPath joins resolved path segments into an import-ready path,
// rewriting the leading module segment per the umbrella convention.
func ImportPath(segs []string) string {
	if len(segs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(segs))
	parts = append(parts, RewriteModule(segs[0]))
	parts = append(parts, segs[1:]...)
	return strings.Join(parts, "::")
}
