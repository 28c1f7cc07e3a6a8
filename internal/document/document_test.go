package document

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"atscore/internal/config"
	"atscore/internal/errors"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectGetter struct {
	objects map[string]string
	err     error
	lastKey string
}

func (f *fakeObjectGetter) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	key := *in.Bucket + "/" + *in.Key
	f.lastKey = key
	body, ok := f.objects[key]
	if !ok {
		return nil, assert.AnError
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadLocalFiles(t *testing.T) {
	r := NewReader(config.DocumentConfig{}, 1024, nil)
	ctx := context.Background()

	text, err := r.Read(ctx, writeFile(t, "resume.txt", "Go developer"))
	require.NoError(t, err)
	assert.Equal(t, "Go developer", text)

	text, err = r.Read(ctx, writeFile(t, "jd.md", "# Senior Engineer"))
	require.NoError(t, err)
	assert.Equal(t, "# Senior Engineer", text)

	text, err = r.Read(ctx, writeFile(t, "resume", "no extension but utf-8"))
	require.NoError(t, err)
	assert.Equal(t, "no extension but utf-8", text)
}

func TestReadErrors(t *testing.T) {
	r := NewReader(config.DocumentConfig{}, 8, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		path string
		typ  errors.ErrorType
		code string
	}{
		{"missing", filepath.Join(t.TempDir(), "nope.txt"), errors.ErrorTypeIO, errors.ErrCodeFileNotFound},
		{"too large", writeFile(t, "big.txt", "0123456789"), errors.ErrorTypeIO, errors.ErrCodeFileTooLarge},
		{"blank", writeFile(t, "blank.txt", "  \n "), errors.ErrorTypeValidation, errors.ErrCodeEmptyDocument},
		{"binary", writeFile(t, "photo.png", "\xff\xd8\xff"), errors.ErrorTypeValidation, errors.ErrCodeUnsupportedFormat},
		{"corrupt pdf", writeFile(t, "cv.pdf", "not pdf"), errors.ErrorTypeIO, errors.ErrCodeInvalidFormat},
		{"corrupt docx", writeFile(t, "cv.docx", "not zip"), errors.ErrorTypeIO, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Read(ctx, tt.path)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, tt.typ), "got %v", err)
			assert.Equal(t, tt.code, errors.CodeOf(err))
		})
	}
}

func TestReadS3(t *testing.T) {
	getter := &fakeObjectGetter{objects: map[string]string{
		"resumes/jane.txt": "Python engineer",
		"resumes/big.txt":  strings.Repeat("x", 64),
	}}
	r := NewReader(config.DocumentConfig{}, 32, nil, WithObjectGetter(getter))
	ctx := context.Background()

	text, err := r.Read(ctx, "s3://resumes/jane.txt")
	require.NoError(t, err)
	assert.Equal(t, "Python engineer", text)
	assert.Equal(t, "resumes/jane.txt", getter.lastKey)

	_, err = r.Read(ctx, "s3://resumes/big.txt")
	assert.Equal(t, errors.ErrCodeFileTooLarge, errors.CodeOf(err))

	_, err = r.Read(ctx, "s3://resumes/missing.txt")
	assert.True(t, errors.IsType(err, errors.ErrorTypeNetwork))
}

func TestDocxText(t *testing.T) {
	content := `<w:document><w:body>` +
		`<w:p><w:r><w:t>SKILLS</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Go</w:t><w:tab/><w:t>R&amp;D</w:t></w:r></w:p>` +
		`</w:body></w:document>`
	assert.Equal(t, "SKILLS\nGo\tR&D", docxText(content))
}
