package common

import (
	"context"
	"fmt"
	"os"

	"atscore/internal/document"
	"atscore/internal/errors"
	"atscore/internal/utils"
)

// FileProcessor reads input documents and writes command output.
type FileProcessor struct {
	logger *errors.Logger
	reader *document.Reader
}

// NewFileProcessor returns a processor; reader may be nil when the
// processor only writes.
func NewFileProcessor(logger *errors.Logger, reader *document.Reader) *FileProcessor {
	if logger == nil {
		logger = errors.Discard()
	}
	return &FileProcessor{logger: logger, reader: reader}
}

// ReadDocuments extracts the text of each source in order. Sources are local
// paths or s3:// URIs.
func (fp *FileProcessor) ReadDocuments(ctx context.Context, sources ...string) ([]string, error) {
	if fp.reader == nil {
		return nil, errors.NewInternalError("READER_NOT_CONFIGURED", "no document reader configured", nil)
	}

	texts := make([]string, 0, len(sources))
	for _, source := range sources {
		text, err := fp.reader.Read(ctx, source)
		if err != nil {
			return nil, err
		}
		fp.logger.Debug("document loaded", "source", source, "chars", len(text))
		texts = append(texts, text)
	}
	return texts, nil
}

func (fp *FileProcessor) WriteFile(filename, content string) error {
	return fp.WriteBytes(filename, []byte(content))
}

// WriteBytes writes data to filename, creating parent directories.
func (fp *FileProcessor) WriteBytes(filename string, data []byte) error {
	if err := fp.ValidateOutputFile(filename); err != nil {
		return err
	}
	if err := os.WriteFile(filename, data, 0o600); err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED", "cannot write "+filename, err)
	}
	return nil
}

// ValidateOutputFile prepares filename for writing. Empty means stdout.
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if err := utils.EnsureParentDir(filename); err != nil {
		return errors.NewValidationError("INVALID_OUTPUT_FILE",
			fmt.Sprintf("invalid output file %q", filename), err)
	}
	return nil
}
