package domain

import (
	"context"
	"errors"
	"fmt"
)

const (
	StageUpload = "upload"
	StageStore  = "store"
)

// UploadError 图床侧失败（网络或远端报错）；远端可能已留下部分对象
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string { return "upload failed: " + e.Err.Error() }
func (e *UploadError) Unwrap() error { return e.Err }

// StoreError 数据库侧失败（连接、约束等），Op 为 list/insert/update/delete
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return e.Err.Error() }
func (e *StoreError) Unwrap() error { return e.Err }

// TimeoutError 上传或数据库调用超出期限
type TimeoutError struct {
	Stage string
	Err   error
}

func (e *TimeoutError) Error() string { return "timeout: " + e.Stage }
func (e *TimeoutError) Unwrap() error { return e.Err }

// WrapUpload 统一包装上传错误；超时单独归类
func WrapUpload(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Stage: StageUpload, Err: err}
	}
	return &UploadError{Err: err}
}

// WrapStore 统一包装数据库错误；超时单独归类
func WrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Stage: StageStore, Err: fmt.Errorf("%s: %w", op, err)}
	}
	return &StoreError{Op: op, Err: err}
}
