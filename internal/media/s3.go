package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"

	"usuarios-api/internal/core/config"
)

type s3Backend struct {
	svc        *s3.S3
	bucket     string
	folder     string
	publicBase string
}

func newS3(c config.S3, folder string) (*s3Backend, error) {
	if c.Bucket == "" || c.Region == "" {
		return nil, errors.New("media: s3 bucket/region required")
	}
	awsCfg := &aws.Config{Region: aws.String(c.Region)}
	if c.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(c.AccessKey, c.SecretKey, "")
	}
	if c.Endpoint != "" {
		awsCfg.Endpoint = aws.String(c.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("media: aws session: %w", err)
	}

	base := strings.TrimRight(c.PublicBase, "/")
	if base == "" {
		if c.Endpoint != "" {
			base = strings.TrimRight(c.Endpoint, "/") + "/" + c.Bucket
		} else {
			base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", c.Bucket, c.Region)
		}
	}
	return &s3Backend{svc: s3.New(sess), bucket: c.Bucket, folder: folder, publicBase: base}, nil
}

func (b *s3Backend) name() string { return "s3" }

// objectKey <folder>/<uuid><ext>，原文件名只取扩展名
func (b *s3Backend) objectKey(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return path.Join(b.folder, uuid.NewString()+ext)
}

func (b *s3Backend) put(ctx context.Context, p Photo) (string, error) {
	key := b.objectKey(p.Filename)
	_, err := b.svc.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(p.Data),
		ContentType: aws.String(http.DetectContentType(p.Data)),
	})
	if err != nil {
		return "", err
	}
	return b.publicBase + "/" + key, nil
}
