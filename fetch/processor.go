package fetch

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/regulatory-genomics/regbench-data/internal/cache"
)

// Processor 在检索完成后对缓存条目做一次派生转换，输入输出均为条目名。
// 实现必须幂等：派生条目已存在时直接返回。
type Processor func(ctx context.Context, store cache.Store, name string) (string, error)

// Decompress 返回把 <name>.gz 解压为 <name> 的处理器。解压结果通过
// Store.Put 原子落盘，与下载正文共享同一缓存目录；派生条目已存在时跳过。
func Decompress() Processor {
	return func(ctx context.Context, store cache.Store, name string) (string, error) {
		target := strings.TrimSuffix(name, ".gz")
		if target == name {
			return "", fmt.Errorf("decompress: %s carries no .gz suffix", name)
		}

		if existing, err := store.Get(ctx, target); err == nil {
			existing.Reader.Close()
			return target, nil
		} else if !errors.Is(err, cache.ErrNotFound) {
			return "", err
		}

		src, err := store.Get(ctx, name)
		if err != nil {
			return "", fmt.Errorf("decompress %s: %w", name, err)
		}
		defer src.Reader.Close()

		gz, err := gzip.NewReader(src.Reader)
		if err != nil {
			return "", fmt.Errorf("decompress %s: %w", name, err)
		}
		defer gz.Close()

		if _, err := store.Put(ctx, target, gz, cache.PutOptions{}); err != nil {
			return "", fmt.Errorf("decompress %s: %w", name, err)
		}
		return target, nil
	}
}
