package generator

import (
	"archive/zip"
	"bytes"
	"context"
	"sort"

	"github.com/projectforge/aipg/pkg/agents"
	"github.com/projectforge/aipg/pkg/blueprint"
	"github.com/projectforge/aipg/pkg/errors"
	"github.com/projectforge/aipg/pkg/logging"
)

// Artifacts holds the downloadable archives for a completed generation run.
type Artifacts struct {
	BackendZip  []byte
	FrontendZip []byte
}

// BuildZip packs a file tree into a ZIP archive. Entries are written in
// sorted path order so identical trees always produce identical archives.
func BuildZip(files map[string]string) ([]byte, error) {
	if len(files) == 0 {
		return nil, errors.New(errors.ArchiveEmpty, "no files to archive")
	}

	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, path := range paths {
		w, err := zw.Create(path)
		if err != nil {
			return nil, errors.Wrap(err, errors.Unknown, "failed to add archive entry")
		}
		if _, err := w.Write([]byte(files[path])); err != nil {
			return nil, errors.Wrap(err, errors.Unknown, "failed to write archive entry")
		}
	}
	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(err, errors.Unknown, "failed to finalize archive")
	}
	return buf.Bytes(), nil
}

// BuildCombinedZip nests the per-tree archives into a single download,
// backend.zip and frontend.zip side by side.
func BuildCombinedZip(backendZip, frontendZip []byte) ([]byte, error) {
	if len(backendZip) == 0 && len(frontendZip) == 0 {
		return nil, errors.New(errors.ArchiveEmpty, "no archives to combine")
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, entry := range []struct {
		name string
		data []byte
	}{
		{"backend.zip", backendZip},
		{"frontend.zip", frontendZip},
	} {
		if len(entry.data) == 0 {
			continue
		}
		w, err := zw.Create(entry.name)
		if err != nil {
			return nil, errors.Wrap(err, errors.Unknown, "failed to add nested archive")
		}
		if _, err := w.Write(entry.data); err != nil {
			return nil, errors.Wrap(err, errors.Unknown, "failed to write nested archive")
		}
	}
	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(err, errors.Unknown, "failed to finalize combined archive")
	}
	return buf.Bytes(), nil
}

// Assemble categorizes agent results and packs both trees. At least one tree
// must produce files, otherwise the run yields nothing downloadable.
func Assemble(ctx context.Context, results []agents.Result, bp *blueprint.Blueprint) (*Artifacts, error) {
	logger := logging.GetLogger()
	trees := Categorize(ctx, results, bp)

	artifacts := &Artifacts{}
	if len(trees.Backend) > 0 {
		data, err := BuildZip(trees.Backend)
		if err != nil {
			return nil, err
		}
		artifacts.BackendZip = data
		logger.Info(ctx, "backend archive created: %d bytes, %d files", len(data), len(trees.Backend))
	}
	if len(trees.Frontend) > 0 {
		data, err := BuildZip(trees.Frontend)
		if err != nil {
			return nil, err
		}
		artifacts.FrontendZip = data
		logger.Info(ctx, "frontend archive created: %d bytes, %d files", len(data), len(trees.Frontend))
	}

	if artifacts.BackendZip == nil && artifacts.FrontendZip == nil {
		return nil, errors.New(errors.ArchiveEmpty, "generation produced no files")
	}
	return artifacts, nil
}
