package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"

	gcs "cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/ajitpratap0/tidify/pkg/config"
	"github.com/ajitpratap0/tidify/pkg/tidyerrors"
)

// Options configures object storage clients.
type Options struct {
	// Region overrides the AWS region
	Region string
	// Endpoint overrides the S3 or GCS endpoint
	Endpoint string
	// CredentialsFile is a GCS service account key file
	CredentialsFile string
	// Anonymous disables GCS authentication
	Anonymous bool
	// Concurrency is the number of parallel S3 upload parts
	Concurrency int
	// PartSize is the S3 multipart part size in bytes (0 = SDK default)
	PartSize int64
}

// OptionsFromConfig converts the storage section of a run configuration.
func OptionsFromConfig(cfg config.StorageConfig) Options {
	return Options{
		Region:          cfg.Region,
		Endpoint:        cfg.Endpoint,
		CredentialsFile: cfg.CredentialsFile,
		Anonymous:       cfg.Anonymous,
		Concurrency:     cfg.Concurrency,
	}
}

// Opener opens locations for reading and writing. Object storage clients
// are created on first use and released by Close.
type Opener struct {
	opts   Options
	logger *zap.Logger

	// Stdin and Stdout back the "-" location
	Stdin  io.Reader
	Stdout io.Writer

	mu        sync.Mutex
	s3Client  *s3.Client
	gcsClient *gcs.Client
}

// NewOpener creates an Opener. A nil logger discards logs.
func NewOpener(opts Options, logger *zap.Logger) *Opener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Opener{
		opts:   opts,
		logger: logger.With(zap.String("component", "storage")),
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
	}
}

// Open returns a reader over the contents of loc.
func (o *Opener) Open(ctx context.Context, loc Location) (io.ReadCloser, error) {
	o.logger.Debug("opening location for reading", zap.String("location", loc.String()))

	switch loc.Scheme {
	case SchemeStdio:
		return io.NopCloser(o.Stdin), nil

	case SchemeFile:
		f, err := os.Open(loc.Key) //nolint:gosec // G304: path comes from the run configuration
		if err != nil {
			return nil, tidyerrors.Wrap(err, tidyerrors.ErrorTypeFile, "failed to open input file").
				WithDetail("path", loc.Key)
		}
		return f, nil

	case SchemeS3:
		client, err := o.s3(ctx)
		if err != nil {
			return nil, err
		}
		out, err := client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(loc.Bucket),
			Key:    aws.String(loc.Key),
		})
		if err != nil {
			return nil, tidyerrors.Wrap(err, tidyerrors.ErrorTypeConnection, "failed to get S3 object").
				WithDetail("location", loc.String())
		}
		return out.Body, nil

	case SchemeGCS:
		client, err := o.gcs(ctx)
		if err != nil {
			return nil, err
		}
		r, err := client.Bucket(loc.Bucket).Object(loc.Key).NewReader(ctx)
		if err != nil {
			return nil, tidyerrors.Wrap(err, tidyerrors.ErrorTypeConnection, "failed to read GCS object").
				WithDetail("location", loc.String())
		}
		return r, nil

	default:
		return nil, tidyerrors.New(tidyerrors.ErrorTypeCapability, "unsupported storage scheme").
			WithDetail("scheme", string(loc.Scheme))
	}
}

// Create returns a writer that replaces the contents of loc. For object
// storage the upload completes when the writer is closed.
func (o *Opener) Create(ctx context.Context, loc Location) (io.WriteCloser, error) {
	o.logger.Debug("opening location for writing", zap.String("location", loc.String()))

	switch loc.Scheme {
	case SchemeStdio:
		return nopWriteCloser{o.Stdout}, nil

	case SchemeFile:
		if dir := filepath.Dir(loc.Key); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // G301: output directories are user data
				return nil, tidyerrors.Wrap(err, tidyerrors.ErrorTypeFile, "failed to create output directory").
					WithDetail("path", dir)
			}
		}
		f, err := os.Create(loc.Key) //nolint:gosec // G304: path comes from the run configuration
		if err != nil {
			return nil, tidyerrors.Wrap(err, tidyerrors.ErrorTypeFile, "failed to create output file").
				WithDetail("path", loc.Key)
		}
		return f, nil

	case SchemeS3:
		client, err := o.s3(ctx)
		if err != nil {
			return nil, err
		}
		uploader := manager.NewUploader(client, func(u *manager.Uploader) {
			if o.opts.Concurrency > 0 {
				u.Concurrency = o.opts.Concurrency
			}
			if o.opts.PartSize > 0 {
				u.PartSize = o.opts.PartSize
			}
		})
		return newPipeWriter(func(r io.Reader) error {
			_, err := uploader.Upload(ctx, &s3.PutObjectInput{
				Bucket:      aws.String(loc.Bucket),
				Key:         aws.String(loc.Key),
				Body:        r,
				ContentType: aws.String(loc.ContentType()),
			})
			if err == nil {
				o.logger.Info("uploaded object", zap.String("location", loc.String()))
			}
			return err
		}), nil

	case SchemeGCS:
		client, err := o.gcs(ctx)
		if err != nil {
			return nil, err
		}
		w := client.Bucket(loc.Bucket).Object(loc.Key).NewWriter(ctx)
		w.ContentType = loc.ContentType()
		return &gcsWriter{w: w, loc: loc, logger: o.logger}, nil

	default:
		return nil, tidyerrors.New(tidyerrors.ErrorTypeCapability, "unsupported storage scheme").
			WithDetail("scheme", string(loc.Scheme))
	}
}

// Close releases object storage clients.
func (o *Opener) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.gcsClient != nil {
		err := o.gcsClient.Close()
		o.gcsClient = nil
		if err != nil {
			return tidyerrors.Wrap(err, tidyerrors.ErrorTypeConnection, "failed to close GCS client")
		}
	}
	return nil
}

func (o *Opener) s3(ctx context.Context) (*s3.Client, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.s3Client != nil {
		return o.s3Client, nil
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if o.opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(o.opts.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, tidyerrors.Wrap(err, tidyerrors.ErrorTypeConfig, "failed to load AWS configuration")
	}

	o.s3Client = s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.opts.Endpoint != "" {
			so.BaseEndpoint = aws.String(o.opts.Endpoint)
			so.UsePathStyle = true
		}
	})
	return o.s3Client, nil
}

func (o *Opener) gcs(ctx context.Context) (*gcs.Client, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.gcsClient != nil {
		return o.gcsClient, nil
	}

	var opts []option.ClientOption
	if o.opts.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(o.opts.CredentialsFile))
	}
	if o.opts.Anonymous {
		opts = append(opts, option.WithoutAuthentication())
	}
	if o.opts.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(o.opts.Endpoint))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, tidyerrors.Wrap(err, tidyerrors.ErrorTypeConnection, "failed to create GCS client")
	}
	o.gcsClient = client
	return client, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// pipeWriter streams writes into an upload running in its own goroutine.
type pipeWriter struct {
	pw   *io.PipeWriter
	done chan error
	once sync.Once
	err  error
}

func newPipeWriter(upload func(io.Reader) error) *pipeWriter {
	pr, pw := io.Pipe()
	w := &pipeWriter{pw: pw, done: make(chan error, 1)}
	go func() {
		err := upload(pr)
		// unblock pending writes if the upload stopped reading
		_ = pr.CloseWithError(err)
		w.done <- err
	}()
	return w
}

func (w *pipeWriter) Write(p []byte) (int, error) {
	return w.pw.Write(p)
}

// Close ends the stream and waits for the upload to finish.
func (w *pipeWriter) Close() error {
	w.once.Do(func() {
		_ = w.pw.Close()
		if err := <-w.done; err != nil {
			w.err = tidyerrors.Wrap(err, tidyerrors.ErrorTypeConnection, "upload failed")
		}
	})
	return w.err
}

type gcsWriter struct {
	w      *gcs.Writer
	loc    Location
	logger *zap.Logger
}

func (g *gcsWriter) Write(p []byte) (int, error) {
	return g.w.Write(p)
}

func (g *gcsWriter) Close() error {
	if err := g.w.Close(); err != nil {
		return tidyerrors.Wrap(err, tidyerrors.ErrorTypeConnection, "failed to finish GCS upload").
			WithDetail("location", g.loc.String())
	}
	g.logger.Info("uploaded object", zap.String("location", g.loc.String()))
	return nil
}
