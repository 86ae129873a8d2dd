package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate 针对语义级别做进一步校验，防止非法配置进入运行期。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}
	if c.CacheDir == "" {
		return newFieldError("CacheDir", "不能为空")
	}
	if err := validateBaseURL(c.BaseURL); err != nil {
		return fmt.Errorf("BaseURL: %w", err)
	}
	if c.LogMaxSize < 0 {
		return newFieldError("LogMaxSize", "不能为负数")
	}
	if c.LogMaxBackups < 0 {
		return newFieldError("LogMaxBackups", "不能为负数")
	}
	if c.DownloadTimeout.DurationValue() < 0 {
		return newFieldError("DownloadTimeout", "不能为负数")
	}
	return nil
}

func validateBaseURL(raw string) error {
	if raw == "" {
		return errors.New("缺少内容仓库地址")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("仅支持 http/https，得到: %s", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("地址缺少 Host: %s", raw)
	}
	return nil
}
