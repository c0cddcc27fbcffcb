package translate

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/finergize/assistant-backend/internal/types"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fakeTranslateAPI serves the Google Translate v2 wire format.
func fakeTranslateAPI(t *testing.T, detectLang, translated string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") == "" {
			t.Error("missing key query parameter")
		}
		switch r.URL.Path {
		case detectPath:
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{
					"detections": [][]map[string]any{{{"language": detectLang}}},
				},
			})
		case translatePath:
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{
					"translations": []map[string]any{{"translatedText": translated}},
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		apiLang string
		want    types.Language
	}{
		{"hindi", "hi", types.LanguageHindi},
		{"hindi regional tag", "hi-IN", types.LanguageHindi},
		{"english", "en", types.LanguageEnglish},
		{"unsupported maps to english", "bn", types.LanguageEnglish},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := fakeTranslateAPI(t, tt.apiLang, "")
			defer srv.Close()

			c := NewClient("test-key", srv.URL, time.Second, testLogger())
			if got := c.Detect(context.Background(), "some text"); got != tt.want {
				t.Fatalf("Detect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectFailsClosedToEnglish(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL, time.Second, testLogger())
	if got := c.Detect(context.Background(), "नमस्ते"); got != types.LanguageEnglish {
		t.Fatalf("Detect() = %v, want en on API failure", got)
	}
}

func TestDetectWithoutAPIKey(t *testing.T) {
	c := NewClient("", "http://unreachable.invalid", time.Second, testLogger())
	if got := c.Detect(context.Background(), "नमस्ते"); got != types.LanguageEnglish {
		t.Fatalf("Detect() = %v, want en without a key", got)
	}
}

func TestTranslate(t *testing.T) {
	srv := fakeTranslateAPI(t, "en", "नमस्ते")
	defer srv.Close()

	c := NewClient("test-key", srv.URL, time.Second, testLogger())
	if got := c.Translate(context.Background(), "Hello", types.LanguageHindi); got != "नमस्ते" {
		t.Fatalf("Translate() = %q, want नमस्ते", got)
	}
}

func TestTranslateSkipsWhenSourceMatchesTarget(t *testing.T) {
	var translateCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case detectPath:
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{
					"detections": [][]map[string]any{{{"language": "hi"}}},
				},
			})
		case translatePath:
			translateCalls++
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{
					"translations": []map[string]any{{"translatedText": "changed"}},
				},
			})
		}
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL, time.Second, testLogger())
	got := c.Translate(context.Background(), "नमस्ते", types.LanguageHindi)
	if got != "नमस्ते" {
		t.Fatalf("Translate() = %q, want input unchanged", got)
	}
	if translateCalls != 0 {
		t.Fatalf("translate endpoint called %d times, want 0", translateCalls)
	}
}

func TestTranslateReturnsInputOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == detectPath {
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{
					"detections": [][]map[string]any{{{"language": "en"}}},
				},
			})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL, time.Second, testLogger())
	if got := c.Translate(context.Background(), "Hello", types.LanguageHindi); got != "Hello" {
		t.Fatalf("Translate() = %q, want original text on failure", got)
	}
}

func TestTranslateEmptyAndKeylessInput(t *testing.T) {
	c := NewClient("", "http://unreachable.invalid", time.Second, testLogger())
	if got := c.Translate(context.Background(), "  ", types.LanguageHindi); got != "  " {
		t.Fatalf("Translate() = %q, want blank input returned as-is", got)
	}
	if got := c.Translate(context.Background(), "Hello", types.LanguageHindi); got != "Hello" {
		t.Fatalf("Translate() = %q, want input unchanged without a key", got)
	}
}
