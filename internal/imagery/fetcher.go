package imagery

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	_ "image/gif"  // register decoders
	_ "image/jpeg" // register decoders
	_ "image/png"  // register decoders
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/webp" // register decoders
)

// ErrFetchDecode marks an image that could not be downloaded or decoded.
var ErrFetchDecode = eris.New("image fetch or decode failed")

// Loader fetches the image behind a locator and decodes it into a raster.
type Loader interface {
	Load(ctx context.Context, locator string) (image.Image, error)
}

// FetcherOptions configures the HTTP image fetcher.
type FetcherOptions struct {
	HTTPClient *http.Client
	UserAgent  string
	Logger     *logrus.Logger
}

// Fetcher downloads images over HTTP and decodes data URIs in place.
type Fetcher struct {
	client *resty.Client
	logger *logrus.Logger
}

const defaultUserAgent = "pptgen/1.0"

var _ Loader = (*Fetcher)(nil)

// NewFetcher constructs a Fetcher. Requests are not retried.
func NewFetcher(opts FetcherOptions) *Fetcher {
	var client *resty.Client
	if opts.HTTPClient != nil {
		client = resty.NewWithClient(opts.HTTPClient)
	} else {
		client = resty.New()
	}

	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	client.SetRetryCount(0).SetHeader("User-Agent", userAgent)

	return &Fetcher{client: client, logger: opts.Logger}
}

// Load fetches and decodes the image behind locator.
func (f *Fetcher) Load(ctx context.Context, locator string) (image.Image, error) {
	trimmed := strings.TrimSpace(locator)
	if trimmed == "" {
		return nil, eris.Wrap(ErrFetchDecode, "image locator is empty")
	}

	var (
		payload []byte
		err     error
	)
	if strings.HasPrefix(trimmed, "data:") {
		payload, err = decodeDataURI(trimmed)
	} else {
		payload, err = f.download(ctx, trimmed)
	}
	if err != nil {
		f.logError(err, "loading image")
		return nil, err
	}

	img, err := Decode(payload)
	if err != nil {
		f.logError(err, "decoding image")
		return nil, err
	}

	return img, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, eris.Wrapf(ErrFetchDecode, "downloading image: %v", err)
	}

	if resp.IsError() {
		return nil, eris.Wrapf(ErrFetchDecode, "downloading image: unexpected status %d", resp.StatusCode())
	}

	body := resp.Body()
	if len(body) == 0 {
		return nil, eris.Wrap(ErrFetchDecode, "downloading image: empty body")
	}

	return body, nil
}

// Decode turns an encoded PNG, JPEG, GIF or WebP payload into a raster image.
func Decode(payload []byte) (image.Image, error) {
	img, format, err := image.Decode(bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrapf(ErrFetchDecode, "decoding image payload: %v", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, eris.Wrapf(ErrFetchDecode, "decoded %s image has no pixels", format)
	}

	return img, nil
}

func decodeDataURI(uri string) ([]byte, error) {
	comma := strings.IndexByte(uri, ',')
	if comma == -1 {
		return nil, eris.Wrap(ErrFetchDecode, "malformed data uri")
	}

	meta := uri[len("data:"):comma]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, eris.Wrap(ErrFetchDecode, "data uri is not base64 encoded")
	}

	payload, err := base64.StdEncoding.DecodeString(uri[comma+1:])
	if err != nil {
		return nil, eris.Wrapf(ErrFetchDecode, "decoding data uri: %v", err)
	}

	return payload, nil
}

func (f *Fetcher) logError(err error, message string) {
	if f.logger == nil || err == nil {
		return
	}
	f.logger.WithField("error", err.Error()).Warn(message)
}
