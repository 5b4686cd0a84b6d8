package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Orphan 已上传到图床、但没有任何行引用的图片
type Orphan struct {
	URL    string    `json:"url"`
	Reason string    `json:"reason"`
	At     time.Time `json:"at"`
}

// OrphanKey API 写、admin 读的同一个 Redis 列表
const OrphanKey = "usuarios:orphans"

// OrphanLedger 在 Redis 列表里记录孤儿图片，供运维手工清理；只记不删
type OrphanLedger struct {
	c     *Cache
	key   string
	limit int64
}

func NewOrphanLedger(c *Cache, key string, limit int64) *OrphanLedger {
	if limit <= 0 {
		limit = 1000
	}
	return &OrphanLedger{c: c, key: key, limit: limit}
}

// Record 新的在前，超过 limit 的旧记录被截掉
func (l *OrphanLedger) Record(ctx context.Context, url, reason string) error {
	b, err := json.Marshal(Orphan{URL: url, Reason: reason, At: time.Now().UTC()})
	if err != nil {
		return err
	}
	pipe := l.c.RDB.TxPipeline()
	pipe.LPush(ctx, l.key, b)
	pipe.LTrim(ctx, l.key, 0, l.limit-1)
	_, err = pipe.Exec(ctx)
	return err
}

func (l *OrphanLedger) List(ctx context.Context, n int64) ([]Orphan, error) {
	if n <= 0 || n > l.limit {
		n = l.limit
	}
	raw, err := l.c.RDB.LRange(ctx, l.key, 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Orphan, 0, len(raw))
	for _, s := range raw {
		var o Orphan
		if err := json.Unmarshal([]byte(s), &o); err != nil {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}
