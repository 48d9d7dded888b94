// Package artifacts writes report files produced during a validation
// run (trend CSV, validation report) to a configured artifacts
// directory. A writer travels in the context so any calling library
// can reach it.
package artifacts

import (
	"context"
	"io"
	"os"
	"path/filepath"
)

const DefaultArtifactsDir = "artifacts"

// ArtifactWriter is the functionality required by all implementations.
type ArtifactWriter interface {
	WriteFile(filename string, contents io.Reader) (fullpathToFile string, err error)
}

// contextKey is a key used to store/retrieve ArtifactWriter in/from context.Context.
type contextKey string

const artifactWriterContextKey contextKey = "ArtifactWriter"

// ContextWithWriter adds ArtifactWriter w to the context ctx.
func ContextWithWriter(ctx context.Context, w ArtifactWriter) context.Context {
	return context.WithValue(ctx, artifactWriterContextKey, w)
}

// WriterFromContext returns the writer from the context, or nil.
func WriterFromContext(ctx context.Context) ArtifactWriter {
	w := ctx.Value(artifactWriterContextKey)
	if writer, ok := w.(ArtifactWriter); ok {
		return writer
	}

	return nil
}

// resolveFullPath resolves s against the working directory when s is
// relative.
func resolveFullPath(s string) string {
	if filepath.IsAbs(s) {
		return s
	}

	cwd, err := os.Getwd()
	if err != nil {
		return s
	}

	return filepath.Join(cwd, s)
}
