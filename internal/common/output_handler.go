package common

import (
	"fmt"
	"io"
	"os"

	"atscore/internal/errors"
	"atscore/internal/formatters"
)

// CommandConfig says where command output goes and in which format.
type CommandConfig struct {
	OutputFile   string
	OutputFormat string
}

// OutputHandler renders results through the formatter registry and sends
// them to a file or the terminal.
type OutputHandler struct {
	files    *FileProcessor
	registry *formatters.FormatterRegistry
	logger   *errors.Logger
	out      io.Writer
}

func NewOutputHandler(logger *errors.Logger) *OutputHandler {
	return NewOutputHandlerTo(logger, os.Stdout)
}

// NewOutputHandlerTo prints to out whenever no output file is given.
func NewOutputHandlerTo(logger *errors.Logger, out io.Writer) *OutputHandler {
	fp := NewFileProcessor(logger, nil)
	return &OutputHandler{
		files:    fp,
		registry: formatters.GlobalRegistry,
		logger:   fp.logger,
		out:      out,
	}
}

// HandleOutput formats data as cfg.OutputFormat and writes it.
func (oh *OutputHandler) HandleOutput(data any, cfg CommandConfig) error {
	if err := oh.files.ValidateOutputFile(cfg.OutputFile); err != nil {
		return err
	}
	rendered, err := oh.registry.Format(data, cfg.OutputFormat)
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("cannot format output as %s", cfg.OutputFormat), err)
	}

	if cfg.OutputFile == "" {
		_, err = fmt.Fprintln(oh.out, rendered)
		return err
	}
	if err := oh.files.WriteFile(cfg.OutputFile, rendered); err != nil {
		return err
	}
	oh.logger.Info("output written", "file", cfg.OutputFile, "format", cfg.OutputFormat)
	return nil
}

// HandleBinary writes pre-rendered bytes such as a PDF report.
func (oh *OutputHandler) HandleBinary(data []byte, outputFile string) error {
	if outputFile == "" {
		_, err := oh.out.Write(data)
		return err
	}
	if err := oh.files.WriteBytes(outputFile, data); err != nil {
		return err
	}
	oh.logger.Info("report written", "file", outputFile, "bytes", len(data))
	return nil
}
