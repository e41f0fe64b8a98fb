// Package archive materializes a chat export zip into a scratch directory and
// enumerates the transcript and media files inside it.
package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/floorquote/backend/internal/models"
)

// TranscriptSuffix is the filename suffix chat exports use for the text transcript.
const TranscriptSuffix = "_chat.txt"

var (
	ImageExtensions = map[string]struct{}{".jpg": {}, ".jpeg": {}, ".png": {}, ".webp": {}}
	AudioExtensions = map[string]struct{}{".m4a": {}, ".ogg": {}, ".mp3": {}}
)

// ExtractionError reports an archive that could not be read or unpacked.
type ExtractionError struct {
	Op  string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract archive: %s: %v", e.Op, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

var ErrTooLarge = errors.New("archive exceeds size limit")

// Options bounds extraction. Zero values disable the corresponding limit.
type Options struct {
	TempDir       string
	MaxTotalBytes int64
	MaxFiles      int
}

// Export is an unpacked archive. Close must be called once every consumer has finished reading files.
type Export struct {
	Dir            string
	TranscriptPath string
	Media          []models.MediaFile
}

// Close removes the scratch directory and everything in it.
func (e *Export) Close() error {
	if e == nil || e.Dir == "" {
		return nil
	}
	err := os.RemoveAll(e.Dir)
	e.Dir = ""
	return err
}

// Images returns the image subset of Media in enumeration order.
func (e *Export) Images() []models.MediaFile {
	var out []models.MediaFile
	for _, m := range e.Media {
		if m.Kind == models.MediaImage {
			out = append(out, m)
		}
	}
	return out
}

// ReadTranscript returns the transcript text, or "" with ok=false when the export has none.
func (e *Export) ReadTranscript() (string, bool, error) {
	if e.TranscriptPath == "" {
		return "", false, nil
	}
	b, err := os.ReadFile(e.TranscriptPath)
	if err != nil {
		return "", false, fmt.Errorf("read transcript: %w", err)
	}
	return string(b), true, nil
}

// Extract unpacks data into a fresh temporary directory. On error nothing is left on disk.
func Extract(data []byte, opts Options) (*Export, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ExtractionError{Op: "open", Err: err}
	}
	if opts.MaxFiles > 0 && len(zr.File) > opts.MaxFiles {
		return nil, &ExtractionError{Op: "open", Err: fmt.Errorf("%w: %d entries", ErrTooLarge, len(zr.File))}
	}

	dir, err := os.MkdirTemp(opts.TempDir, "chat-export-*")
	if err != nil {
		return nil, &ExtractionError{Op: "mkdir", Err: err}
	}
	exp := &Export{Dir: dir}

	var written int64
	for _, f := range zr.File {
		n, err := extractFile(f, dir, opts.MaxTotalBytes-written, opts.MaxTotalBytes > 0)
		if err != nil {
			_ = exp.Close()
			return nil, &ExtractionError{Op: f.Name, Err: err}
		}
		written += n
	}

	exp.TranscriptPath, err = findTranscript(dir)
	if err != nil {
		_ = exp.Close()
		return nil, &ExtractionError{Op: "scan", Err: err}
	}
	exp.Media, err = findMedia(dir)
	if err != nil {
		_ = exp.Close()
		return nil, &ExtractionError{Op: "scan", Err: err}
	}
	return exp, nil
}

func extractFile(f *zip.File, dir string, remaining int64, limited bool) (int64, error) {
	name := filepath.FromSlash(f.Name)
	if strings.HasPrefix(f.Name, "__MACOSX/") {
		return 0, nil
	}
	target := filepath.Join(dir, name)
	if target == filepath.Clean(dir) {
		// root entry such as "./"
		return 0, nil
	}
	if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
		return 0, fmt.Errorf("illegal path %q", f.Name)
	}
	if f.FileInfo().IsDir() {
		return 0, os.MkdirAll(target, 0o755)
	}
	if limited && int64(f.UncompressedSize64) > remaining {
		return 0, ErrTooLarge
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, err
	}

	rc, err := f.Open()
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}
	var src io.Reader = rc
	if limited {
		// Declared sizes can lie; cap the actual copy too.
		src = io.LimitReader(rc, remaining+1)
	}
	n, err := io.Copy(out, src)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, err
	}
	if limited && n > remaining {
		return n, ErrTooLarge
	}
	return n, nil
}

// findTranscript returns the single top-level transcript file, or "" when there are none or several.
func findTranscript(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	var found []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), TranscriptSuffix) {
			found = append(found, filepath.Join(dir, e.Name()))
		}
	}
	if len(found) != 1 {
		return "", nil
	}
	return found[0], nil
}

func findMedia(dir string) ([]models.MediaFile, error) {
	var out []models.MediaFile
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		var kind models.MediaKind
		if _, ok := ImageExtensions[ext]; ok {
			kind = models.MediaImage
		} else if _, ok := AudioExtensions[ext]; ok {
			kind = models.MediaAudio
		} else {
			return nil
		}
		out = append(out, models.MediaFile{
			Path:        path,
			DisplayName: d.Name(),
			Kind:        kind,
			Extension:   ext,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}
