package regbench

import (
	"fmt"
	"strings"
)

// DatasetNotFoundError 表示数据集 id 未在对应检测类型的注册表中登记。
// Available 携带该注册表的全部合法 id，错误消息会完整列出。
type DatasetNotFoundError struct {
	Assay     string
	ID        string
	Available []string
}

func (e *DatasetNotFoundError) Error() string {
	return fmt.Sprintf("dataset %q not found in %s registry, available datasets: %s",
		e.ID, e.Assay, strings.Join(e.Available, ", "))
}
