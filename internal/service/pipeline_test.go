package service

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/floorquote/backend/internal/ai"
	"github.com/floorquote/backend/internal/archive"
	"github.com/floorquote/backend/internal/models"
)

type fakeAnalyzer struct {
	mu       sync.Mutex
	byName   map[string]models.FloorAssessment
	delays   map[string]time.Duration
	contexts []string
	inFlight int32
	peak     int32
}

func (f *fakeAnalyzer) Analyze(_ context.Context, img ai.Image, excerpt string) models.FloorAssessment {
	n := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		p := atomic.LoadInt32(&f.peak)
		if n <= p || atomic.CompareAndSwapInt32(&f.peak, p, n) {
			break
		}
	}
	time.Sleep(f.delays[img.Name])

	f.mu.Lock()
	f.contexts = append(f.contexts, excerpt)
	f.mu.Unlock()

	if a, ok := f.byName[img.Name]; ok {
		a.ImageName = img.Name
		return a
	}
	return ai.Failed(img.Name, &ai.ModelInvocationError{Image: img.Name, Err: errors.New("timeout")})
}

func zipBytes(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

const chat = "[12.03.2024, 09:15:02] Dana: Здравствуйте, вздулся ламинат\n" +
	"[12.03.2024, 09:16:10] Иван: Пришлите фото\n" +
	"[12.03.2024, 09:17:00] Dana: Медиафайл пропущен\n" +
	"[12.03.2024, 09:18:00] Dana: Адрес: улица Герцль 5\n"

func newPipeline(t *testing.T, an ai.Analyzer) *Pipeline {
	return &Pipeline{
		Analyzer:    an,
		Operator:    "Иван",
		Concurrency: 2,
		Archive:     archive.Options{TempDir: t.TempDir()},
		Logger:      zerolog.Nop(),
	}
}

func TestProcessExport(t *testing.T) {
	an := &fakeAnalyzer{
		byName: map[string]models.FloorAssessment{
			"a.jpg": assessed(models.FloorLaminate, models.ConditionFair, 12, models.ComplexityLow),
			"b.jpg": assessed(models.FloorLaminate, models.ConditionPoor, 25, models.ComplexityMedium),
		},
		delays: map[string]time.Duration{"a.jpg": 30 * time.Millisecond},
	}
	p := newPipeline(t, an)
	data := zipBytes(t, map[string]string{
		"WhatsApp Chat with Dana_chat.txt": chat,
		"a.jpg":                            "aaa",
		"media/b.jpg":                      "bbb",
		"media/c.jpg":                      "ccc",
		"voice.ogg":                        "ogg",
	})

	res, err := p.ProcessExport(context.Background(), data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Client.Name != "Dana" || res.Client.MessageCount != 3 {
		t.Fatalf("client=%+v", res.Client)
	}
	if !strings.Contains(res.Context, "Dana: Здравствуйте") || strings.Contains(res.Context, "Медиафайл") {
		t.Fatalf("context=%q", res.Context)
	}
	if len(res.Media) != 4 {
		t.Fatalf("media=%d, want 4", len(res.Media))
	}

	a := res.Assessment
	if !a.Success || a.ImagesAnalyzed != 3 || a.Condition != models.ConditionPoor || a.AreaEstimateSqm != 25 {
		t.Fatalf("assessment=%+v", a)
	}
	names := []string{a.Individual[0].ImageName, a.Individual[1].ImageName, a.Individual[2].ImageName}
	if names[0] != "a.jpg" || names[1] != "b.jpg" || names[2] != "c.jpg" {
		t.Fatalf("order not preserved: %v", names)
	}
	if a.Individual[2].Success {
		t.Fatalf("c.jpg should have failed without aborting the batch")
	}
	for _, c := range an.contexts {
		if c != res.Context {
			t.Fatalf("every image should share the same context")
		}
	}
	if an.peak > 2 {
		t.Fatalf("peak concurrency=%d, limit 2", an.peak)
	}
}

func TestProcessExportCleansUp(t *testing.T) {
	dir := t.TempDir()
	p := newPipeline(t, &fakeAnalyzer{})
	p.Archive.TempDir = dir

	if _, err := p.ProcessExport(context.Background(), zipBytes(t, map[string]string{"x.png": "png"})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.ProcessExport(context.Background(), zipBytes(t, map[string]string{"x_chat.txt": chat})); !errors.Is(err, ErrNoImagesFound) {
		t.Fatalf("err=%v, want ErrNoImagesFound", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("scratch directories left behind: %v", entries)
	}
}

func TestProcessExportNoImagesEvenWithTranscript(t *testing.T) {
	p := newPipeline(t, &fakeAnalyzer{})
	res, err := p.ProcessExport(context.Background(), zipBytes(t, map[string]string{"x_chat.txt": chat, "v.m4a": "a"}))
	if !errors.Is(err, ErrNoImagesFound) {
		t.Fatalf("err=%v, want ErrNoImagesFound", err)
	}
	if res.Client.Name != "Dana" {
		t.Fatalf("parsed context should still be returned: %+v", res.Client)
	}
}

func TestProcessExportWithoutTranscript(t *testing.T) {
	an := &fakeAnalyzer{byName: map[string]models.FloorAssessment{
		"x.png": assessed(models.FloorTiles, models.ConditionGood, 9, models.ComplexityLow),
	}}
	p := newPipeline(t, an)
	res, err := p.ProcessExport(context.Background(), zipBytes(t, map[string]string{"x.png": "png"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Context != "" || res.Client.Name != "" || len(res.Messages) != 0 {
		t.Fatalf("expected empty context: %+v", res)
	}
	if res.Assessment.FloorType != models.FloorTiles {
		t.Fatalf("assessment=%+v", res.Assessment)
	}
}

func TestProcessExportInvalidArchive(t *testing.T) {
	p := newPipeline(t, &fakeAnalyzer{})
	_, err := p.ProcessExport(context.Background(), []byte("not a zip"))
	var extErr *archive.ExtractionError
	if !errors.As(err, &extErr) {
		t.Fatalf("err=%v, want ExtractionError", err)
	}
}

type recordingEnricher struct{ address string }

func (r *recordingEnricher) Enrich(_ context.Context, c *models.ClientInfo) error {
	r.address = c.Address
	c.Location = &models.Location{DisplayName: "Herzl", DistanceKm: 3}
	return nil
}

func TestProcessExportEnrichesAddress(t *testing.T) {
	enr := &recordingEnricher{}
	an := &fakeAnalyzer{byName: map[string]models.FloorAssessment{
		"x.png": assessed(models.FloorTiles, models.ConditionGood, 9, models.ComplexityLow),
	}}
	p := newPipeline(t, an)
	p.Enricher = enr
	res, err := p.ProcessExport(context.Background(), zipBytes(t, map[string]string{"x_chat.txt": chat, "x.png": "png"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if enr.address != "Адрес: улица Герцль 5" || res.Client.Location == nil {
		t.Fatalf("enricher not applied: %q %+v", enr.address, res.Client.Location)
	}
}

func TestProcessPhoto(t *testing.T) {
	an := &fakeAnalyzer{byName: map[string]models.FloorAssessment{
		"photo.jpg": assessed(models.FloorParquet, models.ConditionFair, 16, models.ComplexityMedium),
	}}
	p := newPipeline(t, an)
	a, err := p.ProcessPhoto(context.Background(), []byte("jpg"), "", "скрипит паркет")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.ImagesAnalyzed != 1 || a.Context != "скрипит паркет" || a.FloorType != models.FloorParquet {
		t.Fatalf("assessment=%+v", a)
	}

	_, err = p.ProcessPhoto(context.Background(), []byte("jpg"), "other.jpg", "")
	var photoErr *PhotoError
	if !errors.As(err, &photoErr) || !strings.Contains(photoErr.Message, "timeout") {
		t.Fatalf("err=%v, want PhotoError", err)
	}
}

func TestProcessPhotoDisabledModel(t *testing.T) {
	p := newPipeline(t, ai.DisabledAnalyzer{})
	a, err := p.ProcessPhoto(context.Background(), []byte("jpg"), "p.jpg", "")
	if err == nil {
		t.Fatalf("expected error for disabled model")
	}
	if a.AreaEstimateSqm != 20 || len(a.Recommendations) == 0 {
		t.Fatalf("disabled assessment should still be returned: %+v", a)
	}
}
