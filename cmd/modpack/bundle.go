// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/modpack/modpack/internal/issue"
	"github.com/modpack/modpack/pkg/bundler"
	"github.com/modpack/modpack/pkg/types"
)

// runBundle builds the bundle for input and writes it to output. Nothing is
// written unless the whole pipeline succeeds.
func runBundle(ctx context.Context, app *App, flags *rootFlags, input, output types.FilePath) error {
	for _, p := range []types.FilePath{input, output} {
		if valid, errs := p.IsValid(); !valid {
			return &UsageError{Message: errs[0].Error()}
		}
	}
	if input.IsStdio() {
		return &UsageError{Message: "reading the entry module from stdin is not supported"}
	}

	inv, err := app.prepare(ctx, flags, input.String())
	if err != nil {
		return prepareFailure(err, input)
	}

	return inv.build(ctx, app.stdout, input, output)
}

// build runs the pipeline once with the invocation's loader.
func (inv *invocation) build(ctx context.Context, stdout io.Writer, input, output types.FilePath) error {
	result, err := bundler.New(inv.loader, inv.options()).Bundle(ctx, inv.entry)
	if err != nil {
		return bundleFailure(err, input)
	}

	if err := writeArtifact(stdout, output, result.Artifact); err != nil {
		return &ExitError{
			Code: types.ExitFailure,
			Err: issue.NewErrorContext().
				WithOperation("write bundle").
				WithResource(output.String()).
				WithIssue(issue.OutputWriteFailedId).
				WithSuggestion("Check that the output directory exists and is writable").
				WithSuggestion("Use '-' as the output file to write to standard output").
				Wrap(err).
				BuildError(),
		}
	}

	inv.log.Info("bundle written", "output", output.String(), "modules", len(result.Order))
	return nil
}

// writeArtifact writes a to stdout for "-", otherwise to a temporary file next
// to output that is renamed over it once complete.
func writeArtifact(stdout io.Writer, output types.FilePath, a *bundler.Artifact) (err error) {
	if output.IsStdio() {
		_, err = a.WriteTo(stdout)
		return err
	}

	path := output.String()
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if err != nil {
			// Best-effort removal of partially written temp file.
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := func() (writeErr error) {
		defer func() {
			if closeErr := tmp.Close(); closeErr != nil && writeErr == nil {
				writeErr = closeErr
			}
		}()
		if _, writeErr = a.WriteTo(tmp); writeErr != nil {
			return fmt.Errorf("writing temp file: %w", writeErr)
		}
		return tmp.Chmod(0o644)
	}(); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
