// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"

	"github.com/modpack/modpack/internal/issue"
	"github.com/modpack/modpack/pkg/bundler"
	"github.com/modpack/modpack/pkg/loader"
	"github.com/modpack/modpack/pkg/types"
)

// prepareFailure passes usage and actionable errors through and wraps
// anything else as a failure to start bundling.
func prepareFailure(err error, input types.FilePath) error {
	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return err
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		err = issue.NewErrorContext().
			WithOperation("prepare bundle").
			WithResource(input.String()).
			Wrap(err).
			BuildError()
	}
	return &ExitError{Code: types.ExitFailure, Err: err}
}

// bundleFailure turns an error from the bundling pipeline into an
// ActionableError linked to the matching catalog issue.
func bundleFailure(err error, input types.FilePath) error {
	ec := issue.NewErrorContext().
		WithOperation("bundle").
		WithResource(input.String()).
		Wrap(err)

	var (
		resErr   *bundler.ResolutionError
		cycleErr *bundler.CycleError
		emitErr  *bundler.EmitError
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		ec.WithOperation("bundle (interrupted)")
	case errors.As(err, &resErr):
		ec.WithIssue(issue.ResolutionFailedId)
		switch {
		case errors.Is(err, loader.ErrMalformedReference):
			ec.WithSuggestion("Only string literals are followed: require(\"./x\"), not require(name)")
		case resErr.Referrer == "":
			ec.WithSuggestion("Check that the input file exists")
		case errors.Is(err, loader.ErrUnresolvable):
			ec.WithSuggestion("Check the spelling of " + resErr.Reference)
			ec.WithSuggestion("Install missing packages into node_modules")
		}
	case errors.As(err, &cycleErr):
		ec.WithIssue(issue.DependencyCycleId).
			WithSuggestion("Run 'modpack deps' to inspect the graph").
			WithSuggestion("Use --cycles=warn to bundle anyway")
	case errors.As(err, &emitErr):
		ec.WithIssue(issue.EmitFailedId).
			WithSuggestion("Check the --standalone value and the namespace config field")
	}

	return &ExitError{Code: types.ExitFailure, Err: ec.BuildError()}
}
