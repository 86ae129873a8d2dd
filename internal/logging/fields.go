package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// RetrieveFields 提供下载标识/条目名/命中状态字段，供检索日志复用。
func RetrieveFields(downloadID, name string, cacheHit bool) logrus.Fields {
	return logrus.Fields{
		"action":      "retrieve",
		"download_id": downloadID,
		"name":        name,
		"cache_hit":   cacheHit,
	}
}
