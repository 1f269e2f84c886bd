package utils

import (
	"fmt"

	"github.com/quasilyte/gdata/v2"
)

// OpenStore 打开查看器设置所用的 gdata 存储
// 参数:
//   - appName: 应用名称，决定存储目录
//
// 返回: gdata 管理器；平台存储不可用时返回错误，调用方应降级为仅内存设置
func OpenStore(appName string) (*gdata.Manager, error) {
	if err := EnsureStorageDir(appName); err != nil {
		return nil, fmt.Errorf("failed to prepare storage: %w", err)
	}
	manager, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("failed to open gdata store %q: %w", appName, err)
	}
	return manager, nil
}
