package generator

import (
	"path"
	"path/filepath"
	"strings"
)

// normalizePath cleans p and converts it to forward slashes so root matching
// works the same on every platform.
func normalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}

// splitAtRoot returns the part of p after the first occurrence of root as a
// whole path segment sequence. ok is false when root does not occur.
func splitAtRoot(p, root string) (rest string, ok bool) {
	p = normalizePath(p)
	root = strings.Trim(normalizePath(root), "/")
	if root == "" || root == "." {
		return "", false
	}
	if strings.HasPrefix(p, root+"/") {
		return p[len(root)+1:], true
	}
	if i := strings.Index(p, "/"+root+"/"); i >= 0 {
		return p[i+len(root)+2:], true
	}
	return "", false
}

// outputPath mirrors header under outDir: the directory of header relative to
// root is kept and suffix is appended to the file stem. Headers outside root
// land directly in outDir.
func outputPath(outDir, header, root, suffix string) string {
	rel, ok := splitAtRoot(header, root)
	if !ok {
		rel = path.Base(normalizePath(header))
	}
	dir, file := path.Split(rel)
	ext := path.Ext(file)
	stem := strings.TrimSuffix(file, ext)
	return filepath.Join(outDir, filepath.FromSlash(dir), stem+suffix+ext)
}

// includePath is the spelling used to include header from generated code:
// the last segment of root followed by the path below it, e.g.
// impact/foo/bar.h. Headers next to root are included relative to root's
// parent (include/other/x.h gives other/x.h); anything else by base name.
func includePath(header, root string) string {
	root = strings.Trim(normalizePath(root), "/")
	if rel, ok := splitAtRoot(header, root); ok {
		return path.Base(root) + "/" + rel
	}
	if parent := path.Dir(root); parent != "." {
		if rel, ok := splitAtRoot(header, parent); ok {
			return rel
		}
	}
	return path.Base(normalizePath(header))
}

func describeHeader(outDir, header string, cfg Config) headerInfo {
	return headerInfo{
		Path:    header,
		Include: includePath(header, cfg.SourceRoot),
		Output:  outputPath(outDir, header, cfg.SourceRoot, cfg.Suffix),
	}
}
