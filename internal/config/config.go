package config

import (
	"encoding/json"
	"log"
	"os"
	"sync"
)

// Settings 定义了导航相关的用户设置
type Settings struct {
	// MaxClickableLimit 单个文档可导航引用数量的上限，超过则整个文档不建索引
	MaxClickableLimit int `json:"max_clickable_limit"`
	// HighlightClickables 是否把可点击项列表提供给高亮协作方 (核心自身不使用)
	HighlightClickables *bool `json:"highlight_clickables"`
}

// DefaultMaxClickables 是 max_clickable_limit 的默认值
const DefaultMaxClickables = 1000

var (
	loadedSettings Settings     // 用于存储加载的设置
	settingsOnce   sync.Once    // 确保设置只加载一次
	settingsLock   sync.RWMutex // 读写锁保护设置
)

// Load 从指定路径加载和解析 JSON 设置文件。
// 文件不存在不是错误: 所有设置都有默认值。
func Load(path string) error {
	var loadErr error
	settingsOnce.Do(func() {
		file, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				log.Printf("设置文件 '%s' 不存在，使用默认设置", path)
				return
			}
			loadErr = err
			return
		}

		var settings Settings
		if err := json.Unmarshal(file, &settings); err != nil {
			loadErr = err
			return
		}

		settingsLock.Lock()
		loadedSettings = settings
		settingsLock.Unlock()
	})
	return loadErr
}

// MaxClickableLimit 返回可点击项数量上限，未配置时返回默认值
func MaxClickableLimit() int {
	settingsLock.RLock()
	defer settingsLock.RUnlock()
	if loadedSettings.MaxClickableLimit <= 0 {
		return DefaultMaxClickables
	}
	return loadedSettings.MaxClickableLimit
}

// HighlightClickables 返回是否向客户端提供高亮用的可点击项列表，默认开启
func HighlightClickables() bool {
	settingsLock.RLock()
	defer settingsLock.RUnlock()
	if loadedSettings.HighlightClickables == nil {
		return true
	}
	return *loadedSettings.HighlightClickables
}
