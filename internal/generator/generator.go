package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/calumari/cppbridge/internal/frontend"
	"github.com/calumari/cppbridge/internal/manifest"
)

// Generator turns annotated C++ headers into extern "C" bridge headers.
// A Generator is safe for concurrent use once constructed.
type Generator struct {
	cfg Config
	log *zap.Logger
}

// New validates cfg, prepares the output root and returns a Generator. An
// unusable output root is reported as a KindSetup error.
func New(cfg Config) (*Generator, error) {
	cfg = cfg.withDefaults()
	if err := prepareOutputRoot(cfg.OutputDir); err != nil {
		return nil, err
	}
	if cfg.Parser == nil {
		cfg.Parser = frontend.NewTreeSitter(cfg.Logger, cfg.IncludeDirs...)
	}
	return &Generator{cfg: cfg, log: cfg.Logger}, nil
}

// Run expands cfg.Headers and generates every header once.
func Run(ctx context.Context, cfg Config) (*Report, error) {
	headers, err := ExpandHeaders(cfg.Headers)
	if err != nil {
		return nil, err
	}
	g, err := New(cfg)
	if err != nil {
		return nil, err
	}
	report, err := g.Generate(ctx, headers)
	if err != nil {
		return report, err
	}
	report.Pruned = g.Prune()
	return report, nil
}

// Generate processes headers in parallel. Per-header problems are recorded in
// the report and never stop other headers; the returned error is reserved for
// cancellation.
func (g *Generator) Generate(ctx context.Context, headers []string) (*Report, error) {
	workers := g.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	results := make([]Result, len(headers))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, h := range headers {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = g.processHeader(ctx, h)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return &Report{Results: results}, err
	}
	g.log.Info("generation finished",
		zap.Int("headers", len(headers)),
		zap.Int("written", countStatus(results, StatusWritten)),
		zap.Int("unchanged", countStatus(results, StatusUnchanged)),
		zap.Int("skipped", countStatus(results, StatusSkipped)),
		zap.Int("failed", countStatus(results, StatusFailed)),
	)
	return &Report{Results: results}, nil
}

func countStatus(results []Result, s Status) int {
	r := Report{Results: results}
	return r.Count(s)
}

// processHeader runs the full pipeline for one header.
func (g *Generator) processHeader(ctx context.Context, header string) Result {
	cfg := g.cfg
	info := describeHeader(cfg.OutputDir, header, cfg)
	log := g.log.With(zap.String("header", header))
	res := Result{Header: header, Output: info.Output}

	src, err := os.ReadFile(header)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("header does not exist")
			return skip(res, "header does not exist")
		}
		return fail(res, log, newError(KindParse, header, err))
	}

	hash := contentHash(src, cfg.fingerprint())
	if g.upToDate(header, hash, info.Output, log) {
		log.Debug("header unchanged since last generation")
		res.Status = StatusUnchanged
		return res
	}

	unit, err := cfg.Parser.Parse(ctx, header)
	if err != nil {
		return fail(res, log, newError(KindParse, header, err))
	}
	if unit.HasErrors() {
		for _, d := range unit.Diagnostics {
			log.Error("parse error", zap.String("diagnostic", d.String()))
		}
		return skip(res, fmt.Sprintf("%d parse error(s)", len(unit.Diagnostics)))
	}

	model := buildUnitModel(unit, info, cfg)
	if len(model.Classes) == 0 {
		log.Info("no exported classes")
		g.forget(header, log)
		return skip(res, "no exported classes")
	}
	res.Classes = len(model.Classes)

	out, err := renderUnit(model)
	if err != nil {
		return fail(res, log, newError(KindRender, header, err))
	}

	if cfg.Check {
		diff, err := checkDrift(info.Output, out)
		if err != nil {
			return fail(res, log, newError(KindWrite, info.Output, err))
		}
		if diff != "" {
			log.Warn("generated output is stale", zap.String("output", info.Output))
			res.Status = StatusDrift
			res.Diff = diff
			return res
		}
		res.Status = StatusUnchanged
		return res
	}

	if err := ensureDir(filepath.Dir(info.Output)); err != nil {
		return fail(res, log, newError(KindWrite, info.Output, err))
	}
	if err := writeFileAtomic(info.Output, out); err != nil {
		return fail(res, log, newError(KindWrite, info.Output, err))
	}
	log.Info("wrote bridge", zap.String("output", info.Output), zap.Int("classes", res.Classes))
	g.remember(header, manifest.Entry{
		Hash:        hash,
		Output:      info.Output,
		Version:     cfg.Version,
		GeneratedAt: cfg.Now(),
	}, log)
	res.Status = StatusWritten
	return res
}

// upToDate reports whether the manifest proves the output is current.
func (g *Generator) upToDate(header, hash, output string, log *zap.Logger) bool {
	if g.cfg.Manifest == nil || g.cfg.Force || g.cfg.Check {
		return false
	}
	e, found, err := g.cfg.Manifest.Get(header)
	if err != nil {
		log.Warn("manifest read failed", zap.Error(err))
		return false
	}
	if !found || e.Hash != hash || e.Output != output {
		return false
	}
	_, err = os.Stat(output)
	return err == nil
}

func (g *Generator) remember(header string, e manifest.Entry, log *zap.Logger) {
	if g.cfg.Manifest == nil {
		return
	}
	if err := g.cfg.Manifest.Put(header, e); err != nil {
		log.Warn("manifest write failed", zap.Error(err))
	}
}

func (g *Generator) forget(header string, log *zap.Logger) {
	if g.cfg.Manifest == nil || g.cfg.Check {
		return
	}
	if err := g.cfg.Manifest.Delete(header); err != nil {
		log.Warn("manifest delete failed", zap.Error(err))
	}
}

// Prune drops manifest entries whose header no longer exists and returns
// their paths. It does nothing without a manifest or in check mode.
func (g *Generator) Prune() []string {
	if g.cfg.Manifest == nil || g.cfg.Check {
		return nil
	}
	headers, err := g.cfg.Manifest.Headers()
	if err != nil {
		g.log.Warn("manifest list failed", zap.Error(err))
		return nil
	}
	var pruned []string
	for _, h := range headers {
		_, err := os.Stat(filepath.FromSlash(h))
		if !errors.Is(err, fs.ErrNotExist) {
			continue
		}
		log := g.log.With(zap.String("header", h))
		if err := g.cfg.Manifest.Delete(h); err != nil {
			log.Warn("manifest delete failed", zap.Error(err))
			continue
		}
		log.Info("pruned manifest entry for removed header")
		pruned = append(pruned, h)
	}
	return pruned
}

func skip(res Result, reason string) Result {
	res.Status = StatusSkipped
	res.Reason = reason
	return res
}

func fail(res Result, log *zap.Logger, err error) Result {
	log.Error("header failed", zap.Error(err))
	res.Status = StatusFailed
	res.Err = err
	return res
}

// contentHash fingerprints header bytes together with the settings that shape
// the output.
func contentHash(src []byte, fingerprint string) string {
	h := sha256.New()
	h.Write(src)
	h.Write([]byte{0})
	h.Write([]byte(fingerprint))
	return hex.EncodeToString(h.Sum(nil))
}
