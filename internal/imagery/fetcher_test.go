package imagery

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rotisserie/eris"

	applog "pptgen/app/internal/log"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 80, B: 40, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

func TestFetcherDownloadsAndDecodes(t *testing.T) {
	t.Parallel()

	payload := pngBytes(t, 4, 3)
	var userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	fetcher := NewFetcher(FetcherOptions{HTTPClient: server.Client(), Logger: applog.Discard()})

	img, err := fetcher.Load(context.Background(), server.URL+"/image.png")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 3 {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}

	if userAgent != defaultUserAgent {
		t.Fatalf("expected user agent %q, got %q", defaultUserAgent, userAgent)
	}
}

func TestFetcherReportsHTTPErrors(t *testing.T) {
	t.Parallel()

	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "expired", http.StatusForbidden)
	}))
	defer server.Close()

	fetcher := NewFetcher(FetcherOptions{HTTPClient: server.Client(), Logger: applog.Discard()})

	_, err := fetcher.Load(context.Background(), server.URL)
	if !eris.Is(err, ErrFetchDecode) {
		t.Fatalf("expected ErrFetchDecode, got %v", err)
	}

	if calls != 1 {
		t.Fatalf("expected a single unretried request, got %d", calls)
	}
}

func TestFetcherReportsUndecodableBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not an image</html>"))
	}))
	defer server.Close()

	fetcher := NewFetcher(FetcherOptions{HTTPClient: server.Client()})

	if _, err := fetcher.Load(context.Background(), server.URL); !eris.Is(err, ErrFetchDecode) {
		t.Fatalf("expected ErrFetchDecode, got %v", err)
	}
}

func TestFetcherDecodesDataURI(t *testing.T) {
	t.Parallel()

	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, 2, 2))

	img, err := NewFetcher(FetcherOptions{}).Load(context.Background(), uri)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if img.Bounds().Dx() != 2 {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
}

func TestFetcherRejectsMalformedLocators(t *testing.T) {
	t.Parallel()

	fetcher := NewFetcher(FetcherOptions{})
	for _, locator := range []string{"", "data:image/png;base64", "data:text/plain,hello", "data:image/png;base64,***"} {
		if _, err := fetcher.Load(context.Background(), locator); !eris.Is(err, ErrFetchDecode) {
			t.Fatalf("expected ErrFetchDecode for %q, got %v", locator, err)
		}
	}
}
