package fetch

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// RemoteObject 描述一个可下载的远端文件。寻址方式有两种：
//
//   - URL 非空时直接使用（基因组文件携带完整的 EBI 地址）；
//   - 否则 StoreID 非空时按内容仓约定拼接 <BaseURL>/download/<StoreID>；
//   - 再否则退回 <BaseURL>/<FileName>，即注册表文件省略 url 列时的行为。
//
// FileName 同时是缓存目录内的条目名，必须在目录内唯一。
// SHA256 为期望摘要（可带 sha256: 前缀），为空时跳过完整性校验。
type RemoteObject struct {
	StoreID  string
	URL      string
	FileName string
	SHA256   string
}

// ResolveURL 按上述优先级把对象解析为下载地址。
func (o RemoteObject) ResolveURL(baseURL string) (string, error) {
	if o.URL != "" {
		return o.URL, nil
	}

	base := strings.TrimSuffix(baseURL, "/")
	switch {
	case o.StoreID != "":
		if base == "" {
			return "", fmt.Errorf("cannot resolve store id %s without a base URL", o.StoreID)
		}
		return base + "/download/" + url.PathEscape(o.StoreID), nil
	case o.FileName != "":
		if base == "" {
			return "", fmt.Errorf("cannot resolve file %s without a base URL", o.FileName)
		}
		return base + "/" + url.PathEscape(o.FileName), nil
	}
	return "", errors.New("remote object carries no URL, store id, or file name")
}
