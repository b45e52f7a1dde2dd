// Package publish writes finished images to a local path or a GCS object.
package publish

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	googleopt "google.golang.org/api/option"
)

const gcsScheme = "gs://"

type Options struct {
	// Overwrite allows replacing an existing file or object.
	Overwrite bool

	// CredentialsFile is a service account key for GCS.  Empty means
	// Application Default Credentials.
	CredentialsFile string

	ContentType string
}

// IsGCSPath reports whether dest names a GCS object.
func IsGCSPath(dest string) bool {
	return strings.HasPrefix(dest, gcsScheme)
}

// ParseGCSPath splits gs://bucket/object.
func ParseGCSPath(dest string) (bucket, object string, err error) {
	if !IsGCSPath(dest) {
		return "", "", fmt.Errorf("%q does not start with %s", dest, gcsScheme)
	}

	rest := strings.TrimPrefix(dest, gcsScheme)
	slash := strings.Index(rest, "/")
	if slash <= 0 {
		return "", "", fmt.Errorf("%q has no bucket", dest)
	}

	bucket, object = rest[:slash], rest[slash+1:]
	if object == "" || strings.HasSuffix(object, "/") {
		return "", "", fmt.Errorf("%q has no object name", dest)
	}
	return bucket, object, nil
}

type gcsWriter struct {
	w      *storage.Writer
	client *storage.Client
}

func (g *gcsWriter) Write(p []byte) (int, error) {
	return g.w.Write(p)
}

// Close finalizes the upload.  The object only becomes visible once Close
// succeeds.
func (g *gcsWriter) Close() error {
	defer g.client.Close()
	if err := g.w.Close(); err != nil {
		return fmt.Errorf("while finalizing GCS object: %w", err)
	}
	return nil
}

// Open returns a writer for dest.  The caller must Close it, and must check
// the error from Close.
func Open(ctx context.Context, dest string, opts Options) (io.WriteCloser, error) {
	if !IsGCSPath(dest) {
		flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		if !opts.Overwrite {
			flags |= os.O_EXCL
		}
		f, err := os.OpenFile(dest, flags, 0644)
		if err != nil {
			return nil, fmt.Errorf("while opening output file: %w", err)
		}
		return f, nil
	}

	bucket, object, err := ParseGCSPath(dest)
	if err != nil {
		return nil, err
	}

	clientOpts := []googleopt.ClientOption{googleopt.WithGRPCConnectionPool(1)}
	if opts.CredentialsFile != "" {
		clientOpts = append(clientOpts, googleopt.WithCredentialsFile(opts.CredentialsFile))
	}

	gcs, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("while creating GCS client: %w", err)
	}

	obj := gcs.Bucket(bucket).Object(object)
	if !opts.Overwrite {
		obj = obj.If(storage.Conditions{DoesNotExist: true})
	}

	w := obj.NewWriter(ctx)
	w.ContentType = opts.ContentType

	return &gcsWriter{w: w, client: gcs}, nil
}

// WritePNG encodes img and writes it to dest.
func WritePNG(ctx context.Context, dest string, img image.Image, opts Options) error {
	tracer := otel.Tracer("harpoon/publish")
	var span trace.Span
	ctx, span = tracer.Start(ctx, "WritePNG")
	defer span.End()

	span.SetAttributes(attribute.String("dest", dest))

	if opts.ContentType == "" {
		opts.ContentType = "image/png"
	}

	// Cancelling ctx aborts an in-flight GCS upload instead of publishing a
	// truncated object.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := Open(ctx, dest, opts)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := png.Encode(w, img); err != nil {
		cancel()
		w.Close()
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("while encoding png: %w", err)
	}

	if err := w.Close(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("while closing %q: %w", dest, err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}
