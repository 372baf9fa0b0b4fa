package config

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// SettingsManager 设置管理器
// 负责通过 gdata 加载和保存 EditorSettings
//
// gdata 管理器为 nil 时进入降级模式：设置只保存在内存中，Save 不做任何事
type SettingsManager struct {
	gdataManager *gdata.Manager
	settings     *EditorSettings
}

const (
	settingsObject   = "settings"
	settingsProperty = "editor"
)

// NewSettingsManager 创建设置管理器并加载已保存的设置
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，仅内存设置）
//
// 返回：
//   - *SettingsManager: 设置管理器实例，加载失败时使用默认设置
//   - error: 始终为 nil，加载失败只记录日志
func NewSettingsManager(gdataManager *gdata.Manager) (*SettingsManager, error) {
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
	}

	if err := sm.Load(); err != nil {
		log.Printf("[SettingsManager] Warning: Failed to load settings: %v (using defaults)", err)
	}

	return sm, nil
}

// OpenSettingsManager 打开 appName 的 gdata 存储并创建管理器
// 无法打开存储时以降级模式运行
func OpenSettingsManager(appName string) *SettingsManager {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		log.Printf("[SettingsManager] Warning: Failed to open storage for %s: %v (settings will not persist)", appName, err)
		m = nil
	}
	sm, _ := NewSettingsManager(m)
	return sm
}

// Load 读取已保存的设置，没有存储或没有保存内容时使用默认设置
func (sm *SettingsManager) Load() error {
	if sm.gdataManager == nil {
		sm.settings = DefaultSettings()
		return nil
	}

	if !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.settings = DefaultSettings()
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to load settings: %w", err)
	}

	loaded, err := parseSettings(data)
	if err != nil {
		sm.settings = DefaultSettings()
		return err
	}

	sm.settings = loaded
	log.Printf("[SettingsManager] Settings loaded successfully")
	return nil
}

// Save 保存当前设置，降级模式下不做任何事
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	log.Printf("[SettingsManager] Settings saved successfully")
	return nil
}

// GetSettings 返回当前设置
func (sm *SettingsManager) GetSettings() *EditorSettings {
	return sm.settings
}

// SetExportAllParameters 设置是否导出等于默认值的参数，需调用 Save 保存
func (sm *SettingsManager) SetExportAllParameters(all bool) {
	sm.settings.ExportAllParameters = all
}

// SetRenderMode 设置导出的渲染模式，空字符串恢复默认
func (sm *SettingsManager) SetRenderMode(mode string) {
	if mode == "" {
		mode = DefaultSettings().RenderMode
	}
	sm.settings.RenderMode = mode
}

// SetLibraryName 设置导出时使用的库名
func (sm *SettingsManager) SetLibraryName(name string) {
	if name == "" {
		name = DefaultSettings().LibraryName
	}
	sm.settings.LibraryName = name
}

// SetLastExportPath 记录上一次导出的路径
func (sm *SettingsManager) SetLastExportPath(path string) {
	sm.settings.LastExportPath = path
}
