// Package frontend turns C++ headers into decl trees using the tree-sitter
// C++ grammar. It reads declarations only: no preprocessing beyond quoted
// #include resolution and expansion of annotate marker macros.
package frontend

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
	"go.uber.org/zap"

	"github.com/calumari/cppbridge/internal/decl"
)

// TreeSitter parses headers with tree-sitter. It holds no per-parse state and
// may be shared between goroutines.
type TreeSitter struct {
	includeDirs []string
	log         *zap.Logger
}

// NewTreeSitter returns a front end that resolves quoted includes against the
// including header's directory and then includeDirs, in order.
func NewTreeSitter(log *zap.Logger, includeDirs ...string) *TreeSitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &TreeSitter{includeDirs: includeDirs, log: log}
}

// Parse reads and parses the header at path.
func (ts *TreeSitter) Parse(ctx context.Context, path string) (*decl.Unit, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ts.ParseSource(ctx, path, src)
}

// ParseSource parses src as if it were the header at path. path is used for
// diagnostics and include resolution.
func (ts *TreeSitter) ParseSource(ctx context.Context, path string, src []byte) (*decl.Unit, error) {
	p := &parse{
		ctx:     ctx,
		ts:      ts,
		visited: map[string]bool{canonical(path): true},
	}
	root, diags, err := p.file(path, src, false)
	if err != nil {
		return nil, err
	}
	return &decl.Unit{Path: path, Root: root, Diagnostics: diags}, nil
}

// parse is the state of one Parse call, shared by the main header and every
// header it includes.
type parse struct {
	ctx     context.Context
	ts      *TreeSitter
	nextID  decl.ID
	visited map[string]bool
}

func (p *parse) id() decl.ID {
	p.nextID++
	return p.nextID
}

// file parses one header and converts its declarations.
func (p *parse) file(path string, src []byte, included bool) ([]decl.Decl, []decl.Diagnostic, error) {
	src = expandMarkerMacros(src)
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(cpp.GetLanguage())
	tree, err := parser.ParseCtx(p.ctx, nil, src)
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	diags := collectDiagnostics(root, path, src)
	b := &builder{p: p, path: path, src: src, fromInclude: included}
	return b.items(root), diags, nil
}

// include parses a quoted include and returns its declarations marked as
// coming from an include. Unresolvable and already seen headers yield nothing.
func (p *parse) include(from, target string) []decl.Decl {
	resolved, ok := p.resolveInclude(from, target)
	if !ok {
		p.ts.log.Debug("include not found", zap.String("header", from), zap.String("include", target))
		return nil
	}
	key := canonical(resolved)
	if p.visited[key] {
		return nil
	}
	p.visited[key] = true

	src, err := os.ReadFile(resolved)
	if err != nil {
		p.ts.log.Debug("include unreadable", zap.String("include", resolved), zap.Error(err))
		return nil
	}
	decls, diags, err := p.file(resolved, src, true)
	if err != nil {
		p.ts.log.Debug("include failed to parse", zap.String("include", resolved), zap.Error(err))
		return nil
	}
	for _, d := range diags {
		p.ts.log.Debug("parse error in included header", zap.String("diagnostic", d.String()))
	}
	return decls
}

func (p *parse) resolveInclude(from, target string) (string, bool) {
	candidates := make([]string, 0, len(p.ts.includeDirs)+1)
	candidates = append(candidates, filepath.Join(filepath.Dir(from), target))
	for _, dir := range p.ts.includeDirs {
		candidates = append(candidates, filepath.Join(dir, target))
	}
	for _, c := range candidates {
		info, err := os.Stat(c)
		if err == nil && !info.IsDir() {
			return c, true
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			p.ts.log.Debug("include candidate unusable", zap.String("path", c), zap.Error(err))
		}
	}
	return "", false
}

func canonical(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// collectDiagnostics reports ERROR and missing nodes. Subtrees of an ERROR
// node are not searched further.
func collectDiagnostics(root *sitter.Node, path string, src []byte) []decl.Diagnostic {
	if root == nil || !root.HasError() {
		return nil
	}
	var out []decl.Diagnostic
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch {
		case n.Type() == "ERROR":
			out = append(out, diagnostic(n, path, fmt.Sprintf("syntax error near %q", excerpt(n.Content(src)))))
			return
		case n.IsMissing():
			out = append(out, diagnostic(n, path, fmt.Sprintf("missing %s", n.Type())))
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			if c := n.Child(i); c != nil && (c.HasError() || c.IsMissing()) {
				walk(c)
			}
		}
	}
	walk(root)
	if len(out) == 0 {
		// HasError without a locatable node
		out = append(out, diagnostic(root, path, "syntax error"))
	}
	return out
}

func diagnostic(n *sitter.Node, path, msg string) decl.Diagnostic {
	pt := n.StartPoint()
	return decl.Diagnostic{Path: path, Line: int(pt.Row) + 1, Column: int(pt.Column) + 1, Message: msg}
}

func excerpt(s string) string {
	const limit = 40
	r := []rune(s)
	if len(r) > limit {
		return string(r[:limit]) + "..."
	}
	return s
}
