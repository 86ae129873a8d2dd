package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"strings"
)

// NormalizeDigest 去掉可选的 sha256: 前缀并统一为小写十六进制；空串表示不校验。
func NormalizeDigest(value string) string {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, "sha256:")
	return strings.ToLower(value)
}

// HashReader 计算 Reader 全量内容的 SHA-256 摘要。
func HashReader(r io.Reader) (string, error) {
	hasher := sha256.New()
	if _, err := io.Copy(hasher, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// HashFile 计算文件内容的 SHA-256 摘要。
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return HashReader(f)
}
