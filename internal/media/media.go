package media

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"usuarios-api/internal/core/config"
	"usuarios-api/internal/domain"
)

// Photo 已完整读入内存的上传文件
type Photo struct {
	Filename string
	Data     []byte
}

// Uploader 把一张图片存到图床并返回可公开访问的 URL。
// 不提供删除：失败后留下的对象由运维处理。
type Uploader interface {
	Upload(ctx context.Context, p Photo) (string, error)
}

var ErrEmptyPhoto = errors.New("media: empty photo")

var (
	uploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "media_uploads_total", Help: "Count of image host uploads"},
		[]string{"provider", "result"},
	)
	uploadLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_upload_duration_seconds",
			Help:    "Latency of image host uploads",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"},
	)
)

func init() { prometheus.MustRegister(uploadsTotal, uploadLatency) }

// backend 具体图床实现，只管传输；超时与错误归类在 gateway 里统一做
type backend interface {
	name() string
	put(ctx context.Context, p Photo) (string, error)
}

type gateway struct {
	b       backend
	timeout time.Duration
}

func (g *gateway) Upload(ctx context.Context, p Photo) (string, error) {
	if len(p.Data) == 0 {
		return "", domain.WrapUpload(ErrEmptyPhoto)
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	url, err := g.b.put(ctx, p)
	uploadLatency.WithLabelValues(g.b.name()).Observe(time.Since(start).Seconds())
	if err == nil && url == "" {
		err = errors.New("image host returned no url")
	}
	if err != nil {
		// 远端 SDK 不一定透传 ctx 错误，这里以 ctx 状态为准
		if ctx.Err() != nil {
			err = fmt.Errorf("%w: %v", ctx.Err(), err)
		}
		uploadsTotal.WithLabelValues(g.b.name(), "error").Inc()
		return "", domain.WrapUpload(err)
	}
	uploadsTotal.WithLabelValues(g.b.name(), "ok").Inc()
	return url, nil
}

// New 按配置选择图床
func New(c config.Media) (Uploader, error) {
	timeout := time.Duration(c.TimeoutSec) * time.Second
	switch c.Provider {
	case "cloudinary", "":
		b, err := newCloudinary(c.Cloudinary, c.Folder)
		if err != nil {
			return nil, err
		}
		return &gateway{b: b, timeout: timeout}, nil
	case "s3":
		b, err := newS3(c.S3, c.Folder)
		if err != nil {
			return nil, err
		}
		return &gateway{b: b, timeout: timeout}, nil
	default:
		return nil, fmt.Errorf("media: unknown provider %q", c.Provider)
	}
}
