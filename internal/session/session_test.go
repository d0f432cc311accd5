package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/meditranslate/internal/analysis"
	"github.com/valpere/meditranslate/internal/catalog"
	"github.com/valpere/meditranslate/internal/flow"
	"github.com/valpere/meditranslate/internal/ingest"
)

type blockingAnalyzer struct {
	release chan struct{}
}

func (b blockingAnalyzer) Name() string { return "blocking" }

func (b blockingAnalyzer) Analyze(context.Context, ingest.EncodedFile, string) (*analysis.Findings, error) {
	<-b.release
	return &analysis.Findings{Summary: "S", MedicalAdvice: "M", TranslatedText: "T"}, nil
}

func newTestStore(ttl time.Duration) (*Store, *time.Time) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(func() *flow.Controller { return flow.New(analysis.NewStub()) }, ttl)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestStore_CreateGet(t *testing.T) {
	s, _ := newTestStore(time.Minute)

	id, ctrl := s.Create()
	require.NotEmpty(t, id)
	assert.Equal(t, flow.KindUpload, ctrl.State().Kind())

	got, ok := s.Get(id)
	require.True(t, ok)
	assert.Same(t, ctrl, got)

	other, _ := s.Create()
	assert.NotEqual(t, id, other)
	assert.Equal(t, 2, s.Len())
}

func TestStore_GetUnknown(t *testing.T) {
	s, _ := newTestStore(time.Minute)

	_, ok := s.Get("not-a-uuid")
	assert.False(t, ok)

	_, ok = s.Get("6f1c2a52-3b8e-4d0b-9a57-3f0d2f1f4e11")
	assert.False(t, ok)
}

func TestStore_Delete(t *testing.T) {
	s, _ := newTestStore(time.Minute)

	id, _ := s.Create()
	assert.True(t, s.Delete(id))
	assert.False(t, s.Delete(id))

	_, ok := s.Get(id)
	assert.False(t, ok)
}

func TestStore_Sweep(t *testing.T) {
	s, now := newTestStore(10 * time.Minute)

	stale, _ := s.Create()
	*now = now.Add(6 * time.Minute)
	fresh, _ := s.Create()
	*now = now.Add(6 * time.Minute)

	assert.Equal(t, 1, s.Sweep())

	_, ok := s.Get(stale)
	assert.False(t, ok)
	_, ok = s.Get(fresh)
	assert.True(t, ok)
}

func TestStore_SweepKeepsProcessing(t *testing.T) {
	release := make(chan struct{})
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(func() *flow.Controller { return flow.New(blockingAnalyzer{release: release}) }, time.Minute)
	s.now = func() time.Time { return now }

	id, ctrl := s.Create()
	require.NoError(t, ctrl.FileSelected(ingest.EncodedFile{Name: "report.pdf", MimeType: ingest.PDFMimeType}))
	require.NoError(t, ctrl.LanguageChosen(context.Background(), mustLookup(t)))

	now = now.Add(time.Hour)
	assert.Equal(t, 0, s.Sweep())

	close(release)
	_, err := ctrl.Wait(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, s.Sweep())
	_, ok := s.Get(id)
	assert.False(t, ok)
}

func TestStore_SweepDisabled(t *testing.T) {
	s, now := newTestStore(0)

	s.Create()
	*now = now.Add(24 * time.Hour)
	assert.Equal(t, 0, s.Sweep())
	assert.Equal(t, 1, s.Len())
}

func TestStore_Run(t *testing.T) {
	s, _ := newTestStore(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func mustLookup(t *testing.T) catalog.Language {
	t.Helper()
	lang, ok := catalog.Lookup("ta")
	require.True(t, ok)
	return lang
}
