package imaging

import (
	"bytes"
	"context"
	"image/jpeg"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/store-admin/internal/photostore"
)

const instrumentationName = "github.com/xenking/store-admin/internal/imaging"

// Config controls upload limits and output encoding.
type Config struct {
	MaxUploadSizeMB int
	JPEGQuality     int
}

// Transformer crops uploads and writes the normalized JPEG to a photo store.
type Transformer struct {
	store      photostore.Store
	limitMB    int
	quality    int
	tracer     trace.Tracer
	transforms metric.Int64Counter
	newKey     func() string
}

// NewTransformer creates a Transformer writing into store.
func NewTransformer(
	store photostore.Store,
	cfg Config,
	tp trace.TracerProvider,
	mp metric.MeterProvider,
) (*Transformer, error) {
	if cfg.MaxUploadSizeMB <= 0 {
		return nil, errors.Errorf("max upload size must be positive, got %d", cfg.MaxUploadSizeMB)
	}
	if cfg.JPEGQuality <= 0 || cfg.JPEGQuality > 100 {
		cfg.JPEGQuality = jpeg.DefaultQuality
	}

	transforms, err := mp.Meter(instrumentationName).Int64Counter("imaging.transforms",
		metric.WithDescription("Number of image transforms by outcome"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create transforms counter")
	}

	return &Transformer{
		store:      store,
		limitMB:    cfg.MaxUploadSizeMB,
		quality:    cfg.JPEGQuality,
		tracer:     tp.Tracer(instrumentationName),
		transforms: transforms,
		newKey:     func() string { return uuid.New().String() + ".jpeg" },
	}, nil
}

// MaxBytes returns the upload ceiling in bytes.
func (t *Transformer) MaxBytes() int64 {
	return int64(t.limitMB) * 1024 * 1024
}

// CheckSize returns a *SizeLimitError when n bytes exceed the upload ceiling.
func (t *Transformer) CheckSize(n int64) error {
	if n > t.MaxBytes() {
		return &SizeLimitError{LimitMB: t.limitMB, Size: n}
	}
	return nil
}

// Transform crops src to rect, resizes it to size, encodes it as JPEG and
// stores it under a freshly generated key, which is returned.
func (t *Transformer) Transform(ctx context.Context, src []byte, rect Rect, size Size) (_ string, rerr error) {
	ctx, span := t.tracer.Start(ctx, "imaging.Transform", trace.WithAttributes(
		attribute.Int("imaging.source_bytes", len(src)),
		attribute.Int("imaging.width", size.Width),
		attribute.Int("imaging.height", size.Height),
	))
	defer func() {
		outcome := "ok"
		if rerr != nil {
			outcome = "error"
			span.RecordError(rerr)
			span.SetStatus(codes.Error, rerr.Error())
		}
		t.transforms.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
		span.End()
	}()

	if err := t.CheckSize(int64(len(src))); err != nil {
		return "", err
	}

	img, err := Process(src, rect, size)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: t.quality}); err != nil {
		return "", errors.Wrap(err, "encode jpeg")
	}

	key := t.newKey()
	if err := t.store.Save(ctx, key, "image/jpeg", &buf); err != nil {
		return "", errors.Wrapf(err, "store %s", key)
	}

	zctx.From(ctx).Debug("Stored image",
		zap.String("key", key),
		zap.Int("bytes", buf.Len()),
	)
	return key, nil
}
