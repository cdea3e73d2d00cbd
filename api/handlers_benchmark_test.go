package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"notes-api/domain"
	"notes-api/storage"
)

func newBenchRouter(b *testing.B, store NoteStore) *echo.Echo {
	b.Helper()
	logger := log.New()
	logger.SetOutput(io.Discard)
	e := echo.New()
	Register(e, store, logger)
	return e
}

func BenchmarkCreateNote(b *testing.B) {
	e := newBenchRouter(b, storage.NewMemory())
	body := `{"title":"bench","content":"payload"}`

	b.ReportAllocs()
	for b.Loop() {
		req := httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			b.Fatalf("expected status 201 got %d", rec.Code)
		}
	}
}

func BenchmarkGetNote(b *testing.B) {
	store := storage.NewMemory()
	note := domain.Note{ID: uuid.New(), Title: "bench", Content: "payload"}
	if err := store.Insert(note); err != nil {
		b.Fatalf("insert: %v", err)
	}
	e := newBenchRouter(b, store)
	target := "/notes/" + note.ID.String()

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			req := httptest.NewRequest(http.MethodGet, target, nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				b.Fatalf("expected status 200 got %d", rec.Code)
			}
		}
	})
}

func BenchmarkListNotes(b *testing.B) {
	store := storage.NewMemory()
	for i := 0; i < 100; i++ {
		note := domain.Note{ID: uuid.New(), Title: "bench", Content: strconv.Itoa(i)}
		if err := store.Insert(note); err != nil {
			b.Fatalf("insert: %v", err)
		}
	}
	e := newBenchRouter(b, store)

	b.ReportAllocs()
	for b.Loop() {
		req := httptest.NewRequest(http.MethodGet, "/notes", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			b.Fatalf("expected status 200 got %d", rec.Code)
		}
	}
}
