package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// NewStore 以 baseDir 为根目录构建磁盘缓存，整个进程复用一份实例。
func NewStore(baseDir string) (Store, error) {
	if baseDir == "" {
		return nil, errors.New("cache directory required")
	}

	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve cache directory: %w", err)
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	return &fileStore{
		basePath: abs,
		locks:    make(map[string]*entryLock),
	}, nil
}

// fileStore 通过 entryLock 避免同一条目并发写入，同时复用 basePath。
type fileStore struct {
	basePath string

	mu    sync.Mutex
	locks map[string]*entryLock
}

type entryLock struct {
	mu   sync.Mutex
	refs int
}

func (s *fileStore) Get(ctx context.Context, name string) (*ReadResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	filePath, err := s.entryPath(name)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, ErrNotFound
	}

	f, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	entry := Entry{
		Name:      name,
		FilePath:  filePath,
		SizeBytes: info.Size(),
		ModTime:   info.ModTime(),
	}

	return &ReadResult{
		Entry:  entry,
		Reader: f,
	}, nil
}

func (s *fileStore) Put(ctx context.Context, name string, body io.Reader, opts PutOptions) (*Entry, error) {
	unlock, err := s.lockEntry(name)
	if err != nil {
		return nil, err
	}
	defer unlock()

	filePath, err := s.entryPath(name)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return nil, err
	}

	tempFile, err := os.CreateTemp(filepath.Dir(filePath), ".regbench-*")
	if err != nil {
		return nil, err
	}
	tempName := tempFile.Name()

	hasher := sha256.New()
	written, err := copyWithContext(ctx, io.MultiWriter(tempFile, hasher), body)
	closeErr := tempFile.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tempName)
		return nil, err
	}

	digest := hex.EncodeToString(hasher.Sum(nil))
	if expected := NormalizeDigest(opts.ExpectedSHA256); expected != "" && expected != digest {
		os.Remove(tempName)
		return nil, &IntegrityError{Name: name, Expected: expected, Actual: digest}
	}

	if err := os.Rename(tempName, filePath); err != nil {
		os.Remove(tempName)
		return nil, err
	}

	modTime := opts.ModTime
	if modTime.IsZero() {
		modTime = time.Now().UTC()
	}
	if err := os.Chtimes(filePath, modTime, modTime); err != nil {
		return nil, err
	}

	entry := Entry{
		Name:      name,
		FilePath:  filePath,
		SizeBytes: written,
		ModTime:   modTime,
		SHA256:    digest,
	}
	return &entry, nil
}

func (s *fileStore) Remove(ctx context.Context, name string) error {
	unlock, err := s.lockEntry(name)
	if err != nil {
		return err
	}
	defer unlock()

	filePath, err := s.entryPath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *fileStore) Path(name string) (string, error) {
	return s.entryPath(name)
}

func (s *fileStore) lockEntry(name string) (func(), error) {
	s.mu.Lock()
	lock := s.locks[name]
	if lock == nil {
		lock = &entryLock{}
		s.locks[name] = lock
	}
	lock.refs++
	s.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		s.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(s.locks, name)
		}
		s.mu.Unlock()
	}, nil
}

func (s *fileStore) entryPath(name string) (string, error) {
	if name == "" {
		return "", errors.New("cache entry name required")
	}

	rel := path.Clean("/" + name)
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" || rel == "." {
		return "", fmt.Errorf("invalid cache entry name: %s", name)
	}

	filePath := filepath.Join(s.basePath, filepath.FromSlash(rel))
	if !strings.HasPrefix(filePath, s.basePath+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid cache entry name: %s", name)
	}
	return filePath, nil
}

func copyWithContext(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	var copied int64
	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return copied, err
		}
		n, err := src.Read(buf)
		if n > 0 {
			w, wErr := dst.Write(buf[:n])
			copied += int64(w)
			if wErr != nil {
				return copied, wErr
			}
			if w < n {
				return copied, io.ErrShortWrite
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return copied, nil
			}
			return copied, err
		}
	}
}
