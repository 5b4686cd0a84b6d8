package media

import (
	"bytes"
	"context"
	"errors"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"usuarios-api/internal/core/config"
)

type cloudinaryBackend struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func newCloudinary(c config.Cloudinary, folder string) (*cloudinaryBackend, error) {
	if c.CloudName == "" || c.APIKey == "" || c.APISecret == "" {
		return nil, errors.New("media: cloudinary cloud_name/api_key/api_secret required")
	}
	cld, err := cloudinary.NewFromParams(c.CloudName, c.APIKey, c.APISecret)
	if err != nil {
		return nil, err
	}
	return &cloudinaryBackend{cld: cld, folder: folder}, nil
}

func (b *cloudinaryBackend) name() string { return "cloudinary" }

// put 直接把内存缓冲当作流写给 Cloudinary，不落本地临时文件
func (b *cloudinaryBackend) put(ctx context.Context, p Photo) (string, error) {
	res, err := b.cld.Upload.Upload(ctx, bytes.NewReader(p.Data), uploader.UploadParams{
		Folder: b.folder,
	})
	if err != nil {
		return "", err
	}
	if res.Error.Message != "" {
		return "", errors.New(res.Error.Message)
	}
	return res.SecureURL, nil
}
