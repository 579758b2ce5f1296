package ingest

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"docgen/internal/core/parser"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Fetcher resolves report paths to local files. Paths with an s3:// scheme
// are downloaded to a temp file; everything else is treated as local.
type Fetcher struct {
	s3 *s3.Client
}

func NewFetcher(s3Client *s3.Client) *Fetcher {
	return &Fetcher{s3: s3Client}
}

// FetchToLocalTemp returns a local path for the given file and a cleanup
// function. Local paths pass through untouched with a no-op cleanup.
func (f *Fetcher) FetchToLocalTemp(ctx context.Context, filePath string) (string, func(), error) {
	noop := func() {}

	if !strings.HasPrefix(filePath, "s3://") {
		abs := filePath
		if !filepath.IsAbs(abs) {
			cwd, _ := os.Getwd()
			abs = filepath.Join(cwd, filePath)
		}
		if _, err := os.Stat(abs); err != nil {
			return "", noop, fmt.Errorf("%w: %s", parser.ErrNotFound, filePath)
		}
		return abs, noop, nil
	}

	if f.s3 == nil {
		return "", noop, fmt.Errorf("s3 path %q but no s3 client configured", filePath)
	}

	u, err := url.Parse(filePath)
	if err != nil {
		return "", noop, err
	}
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")

	tmp, err := os.CreateTemp("", "ingest-*.pdf")
	if err != nil {
		return "", noop, err
	}
	cleanup := func() { _ = os.Remove(tmp.Name()) }

	out, err := f.s3.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		tmp.Close()
		cleanup()
		return "", noop, err
	}
	defer out.Body.Close()

	if _, err := io.Copy(tmp, out.Body); err != nil {
		tmp.Close()
		cleanup()
		return "", noop, err
	}
	tmp.Close()
	return tmp.Name(), cleanup, nil
}
