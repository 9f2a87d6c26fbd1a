package frontend

import (
	"bytes"
	"regexp"
)

// markerDefine matches object-like macros whose body is an annotate
// attribute, e.g.
//
//	#define BRIDGE_CLASS [[clang::annotate("bridge_class")]]
//	#define BRIDGE_FUNC __attribute__((annotate("bridge_func")))
var markerDefine = regexp.MustCompile(`^[ \t]*#[ \t]*define[ \t]+([A-Za-z_][A-Za-z0-9_]*)[ \t]+(.*\bannotate[ \t]*\(.*)$`)

var directive = regexp.MustCompile(`^[ \t]*#`)

// expandMarkerMacros substitutes uses of annotate marker macros with their
// bodies. tree-sitter does not preprocess, and headers usually spell markers
// through such macros. Bodies never span lines, so line numbers are kept.
func expandMarkerMacros(src []byte) []byte {
	lines := bytes.Split(src, []byte("\n"))
	var macros []*regexp.Regexp
	var bodies [][]byte
	for _, line := range lines {
		m := markerDefine.FindSubmatch(bytes.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		macros = append(macros, regexp.MustCompile(`\b`+regexp.QuoteMeta(string(m[1]))+`\b`))
		bodies = append(bodies, bytes.TrimSpace(m[2]))
	}
	if len(macros) == 0 {
		return src
	}
	for i, line := range lines {
		if directive.Match(line) {
			continue
		}
		for j, re := range macros {
			line = re.ReplaceAllLiteral(line, bodies[j])
		}
		lines[i] = line
	}
	return bytes.Join(lines, []byte("\n"))
}
