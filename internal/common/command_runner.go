package common

import (
	"context"
	"fmt"

	"atscore/internal/document"
	"atscore/internal/errors"
)

// LogDetailsFunc defines how to log the start of an operation.
type LogDetailsFunc func(documents []string, cfg CommandConfig)

// ScoringOperationFunc computes a result from the loaded documents, in the
// order their sources were given.
type ScoringOperationFunc[Output any] func(ctx context.Context, documents []string) (Output, error)

// RunScoringCommand loads every source, runs operation and writes the
// formatted result.
func RunScoringCommand[Output any](
	ctx context.Context,
	logger *errors.Logger,
	reader *document.Reader,
	cmdConfig CommandConfig,
	sources []string,
	operation ScoringOperationFunc[Output],
	logDetails LogDetailsFunc,
) error {
	fileProcessor := NewFileProcessor(logger, reader)
	outputHandler := NewOutputHandler(logger)

	if err := fileProcessor.ValidateOutputFile(cmdConfig.OutputFile); err != nil {
		return err
	}

	documents, err := fileProcessor.ReadDocuments(ctx, sources...)
	if err != nil {
		return err
	}

	if logDetails != nil {
		logDetails(documents, cmdConfig)
	}

	result, err := operation(ctx, documents)
	if err != nil {
		return fmt.Errorf("scoring failed: %w", err)
	}

	return outputHandler.HandleOutput(result, cmdConfig)
}
