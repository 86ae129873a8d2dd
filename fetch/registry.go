package fetch

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Registry 保存内容注册表：文件名到 RemoteObject 的只读映射。
// 条目顺序与注册表文本一致，便于诊断输出保持稳定。
type Registry struct {
	names   []string
	entries map[string]RemoteObject
}

// ParseRegistry 解析注册表文本。每行格式为
//
//	<file name> <sha256> [url]
//
// 空行与 # 开头的注释行被忽略；url 省略时下载地址由 BaseURL + 文件名拼出。
// 同名条目重复出现视为配置错误。
func ParseRegistry(r io.Reader) (*Registry, error) {
	reg := &Registry{entries: make(map[string]RemoteObject)}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 || len(fields) > 3 {
			return nil, fmt.Errorf("registry line %d: want \"name sha256 [url]\", got %q", lineNo, line)
		}

		name := fields[0]
		if _, exists := reg.entries[name]; exists {
			return nil, fmt.Errorf("registry line %d: duplicate entry %s", lineNo, name)
		}

		obj := RemoteObject{FileName: name, SHA256: fields[1]}
		if len(fields) == 3 {
			obj.URL = fields[2]
		}
		reg.entries[name] = obj
		reg.names = append(reg.names, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}

	return reg, nil
}

// Lookup 返回指定文件名对应的远端对象。
func (r *Registry) Lookup(name string) (RemoteObject, bool) {
	obj, ok := r.entries[name]
	return obj, ok
}

// Names 按注册顺序返回全部文件名。
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len 返回注册条目数。
func (r *Registry) Len() int {
	return len(r.names)
}

func emptyRegistry() *Registry {
	return &Registry{entries: make(map[string]RemoteObject)}
}
