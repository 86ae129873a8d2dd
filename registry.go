package regbench

import (
	"fmt"
	"strings"
	"sync"
)

// datasetRegistry 是单一检测类型的数据集登记表：id 到条目的只读映射，
// 外加注册顺序，保证 List 输出稳定。进程启动阶段通过各文件的 init()
// 填充，之后只读，可安全并发查询。
type datasetRegistry[T any] struct {
	assay string

	mu      sync.RWMutex
	ids     []string
	entries map[string]T
}

func newDatasetRegistry[T any](assay string) *datasetRegistry[T] {
	return &datasetRegistry[T]{
		assay:   assay,
		entries: make(map[string]T),
	}
}

// register 登记一个数据集；id 为空或重复视为编程错误。
func (r *datasetRegistry[T]) register(id string, entry T) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%s registry: dataset id is required", r.assay)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[id]; exists {
		return fmt.Errorf("%s registry: dataset %s already registered", r.assay, id)
	}
	r.entries[id] = entry
	r.ids = append(r.ids, id)
	return nil
}

// mustRegister 在注册失败时 panic，适合 init() 中登记内置数据集。
func (r *datasetRegistry[T]) mustRegister(id string, entry T) {
	if err := r.register(id, entry); err != nil {
		panic(err)
	}
}

// lookup 返回 id 对应的条目；未登记时返回 *DatasetNotFoundError，
// 错误中带上全部合法 id。
func (r *datasetRegistry[T]) lookup(id string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[id]
	if !ok {
		var zero T
		return zero, &DatasetNotFoundError{
			Assay:     r.assay,
			ID:        id,
			Available: r.listLocked(),
		}
	}
	return entry, nil
}

// list 按注册顺序返回全部数据集 id 的副本。
func (r *datasetRegistry[T]) list() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listLocked()
}

func (r *datasetRegistry[T]) listLocked() []string {
	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}
