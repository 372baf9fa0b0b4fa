// Package editor 将界面事件适配到特效模型
//
// Session 持有正在编辑的特效库、当前选中的特效以及每个特效的表达式引擎。
// 控件通过 On* 通知方法报告修改，Session 负责让引擎、导出器和检查点保持一致。
// Session 不是并发安全的。
package editor

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/decker502/fxlib/internal/particle"
	"github.com/decker502/fxlib/internal/schema"
	"github.com/decker502/fxlib/pkg/config"
	"github.com/decker502/fxlib/pkg/effect"
	"github.com/decker502/fxlib/pkg/export"
)

// ErrNoSelection 需要选中特效的操作在没有选中时返回
var ErrNoSelection = errors.New("no effect selected")

// Checkpoint 整个特效库的内存快照
type Checkpoint struct {
	Label    string
	Created  time.Time
	Effects  []*effect.State
	Selected string
}

// Session 一次特效库编辑会话
type Session struct {
	registry *schema.Registry
	settings *config.EditorSettings
	exporter *export.Exporter

	libraryName string
	effects     []*effect.State
	current     *effect.State
	engine      *effect.Engine
	engines     map[*effect.State]*effect.Engine // 库中每个特效的引擎

	checkpoints []Checkpoint
}

// NewSession 创建会话，settings 为 nil 时使用默认设置
func NewSession(registry *schema.Registry, settings *config.EditorSettings) *Session {
	if settings == nil {
		settings = config.DefaultSettings()
	}
	return &Session{
		registry:    registry,
		settings:    settings,
		exporter:    export.NewExporter(registry, settings.ExportOptions()),
		libraryName: settings.LibraryName,
		engines:     make(map[*effect.State]*effect.Engine),
	}
}

// Exporter 返回 Export 使用的导出器
func (s *Session) Exporter() *export.Exporter { return s.exporter }

// LoadLibrary 替换正在编辑的特效并选中第一个
// 库中每个特效（包括子特效）的已有公式都会立即计算
func (s *Session) LoadLibrary(lib *effect.Library) {
	s.effects = lib.Effects
	if lib.Name != "" {
		s.libraryName = lib.Name
	}
	s.current, s.engine = nil, nil
	s.engines = make(map[*effect.State]*effect.Engine)
	s.bindAll()
	if len(s.effects) > 0 {
		s.SelectEffect(s.effects[0])
	}
	log.Printf("[Editor] Loaded library %s with %d effects", s.libraryName, len(effect.Flatten(s.effects)))
}

// AddEffect 追加一个根特效并选中它
func (s *Session) AddEffect(e *effect.State) {
	s.effects = append(s.effects, e)
	s.bindAll()
	s.SelectEffect(e)
}

// Effects 返回根特效
func (s *Session) Effects() []*effect.State { return s.effects }

// LibraryName 返回导出时写入的库名
func (s *Session) LibraryName() string { return s.libraryName }

// SetLibraryName 重命名特效库
func (s *Session) SetLibraryName(name string) { s.libraryName = name }

// SelectEffect 将 e 设为后续通知的目标
func (s *Session) SelectEffect(e *effect.State) {
	s.current = e
	if e == nil {
		s.engine = nil
		return
	}
	s.engine = s.engineFor(e)
}

// engineFor 返回 e 的引擎，首次使用时根据 e 上保存的公式创建
func (s *Session) engineFor(e *effect.State) *effect.Engine {
	if eng, ok := s.engines[e]; ok {
		return eng
	}
	eng := effect.NewEngine(e, s.registry)
	s.engines[e] = eng
	return eng
}

// bindAll 为库中尚无引擎的特效创建引擎，使其公式结果在导出前已经计算
func (s *Session) bindAll() {
	for _, e := range effect.Flatten(s.effects) {
		s.engineFor(e)
	}
}

// Current 返回选中的特效，没有时返回 nil
func (s *Session) Current() *effect.State { return s.current }

// Engine 返回选中特效的表达式引擎，没有时返回 nil
func (s *Session) Engine() *effect.Engine { return s.engine }

// GetParameter 返回选中特效上 name 的值，未设置的参数返回 schema 默认值
func (s *Session) GetParameter(name string) (effect.Value, bool) {
	if s.current == nil {
		return nil, false
	}
	def, known := s.registry.Get(name)
	if known {
		name = def.Name
	}
	if v, ok := s.current.Params[name]; ok {
		return v, true
	}
	if known {
		return schema.CoerceDefault(def), true
	}
	return nil, false
}

// OnValueChanged 用户编辑值时由控件调用
// 拒绝未知参数，导出时就不会出现需要跳过的参数
func (s *Session) OnValueChanged(name string, value any) error {
	if s.engine == nil {
		return ErrNoSelection
	}
	if _, ok := s.registry.Get(name); !ok {
		log.Printf("[Editor] Warning: ignoring change to unknown parameter %q", name)
		return &effect.UnknownParameterError{Name: name}
	}
	return s.engine.OnValueChanged(name, value)
}

// OnCurveChanged 曲线编辑器以新的控制点调用
func (s *Session) OnCurveChanged(id string, points []particle.Point) error {
	if s.current == nil {
		return ErrNoSelection
	}
	s.current.SetCurve(id, points)
	return nil
}

// SampleCurve 在归一化时间 t 处计算选中特效的曲线，即曲线编辑器光标处的预览值
func (s *Session) SampleCurve(id string, t float64) (float64, bool) {
	if s.current == nil {
		return 0, false
	}
	c, ok := s.current.Curves[id]
	if !ok {
		return 0, false
	}
	return c.Evaluate(t), true
}

// SetExpression 在选中特效上为 name 绑定公式
func (s *Session) SetExpression(name, formula string) error {
	if s.engine == nil {
		return ErrNoSelection
	}
	if _, ok := s.registry.Get(name); !ok {
		return &effect.UnknownParameterError{Name: name}
	}
	return s.engine.SetExpression(name, formula)
}

// ClearExpression 解除 name 的公式，保留最后的值
func (s *Session) ClearExpression(name string) bool {
	if s.engine == nil {
		return false
	}
	return s.engine.Clear(name)
}

// Evaluate 重算一个绑定参数
func (s *Session) Evaluate(name string) error {
	if s.engine == nil {
		return ErrNoSelection
	}
	return s.engine.Evaluate(name)
}

// ResetParameter 恢复 name 的 schema 默认值
func (s *Session) ResetParameter(name string) error {
	if s.engine == nil {
		return ErrNoSelection
	}
	return s.engine.ResetToDefault(name)
}

// Diff 返回选中特效将要导出的属性
func (s *Session) Diff() []export.Attr {
	if s.current == nil {
		return nil
	}
	return s.exporter.Diff(s.current)
}

// Validate 返回库中所有特效的提示性警告，警告不会阻止导出
func (s *Session) Validate() []string {
	var warnings []string
	for _, e := range s.effects {
		warnings = append(warnings, effect.ValidateTree(e)...)
	}
	return warnings
}

// Export 将特效库文档写入 w
func (s *Session) Export(w io.Writer) error {
	s.bindAll()
	s.logWarnings()
	if _, err := io.WriteString(w, s.exporter.SerializeLibrary(s.libraryName, s.effects)); err != nil {
		return fmt.Errorf("failed to write library %s: %w", s.libraryName, err)
	}
	return nil
}

// ExportFile 将特效库写入由用户输入命名的文件（参见 export.ExportFileName）
// 返回写入的路径
func (s *Session) ExportFile(name string) (string, error) {
	s.bindAll()
	s.logWarnings()
	path, err := s.exporter.WriteLibraryFile(name, s.libraryName, s.effects)
	if err != nil {
		return "", err
	}
	s.settings.LastExportPath = path
	return path, nil
}

// OnExportRequested 处理保存按钮：导出到上次使用的路径，没有时以库名命名文件
func (s *Session) OnExportRequested() (string, error) {
	name := s.settings.LastExportPath
	if name == "" {
		name = s.libraryName
	}
	return s.ExportFile(name)
}

func (s *Session) logWarnings() {
	for _, w := range s.Validate() {
		log.Printf("[Editor] Warning: %s", w)
	}
}

// Checkpoint 为特效库创建快照，返回检查点序号
func (s *Session) Checkpoint(label string) int {
	cp := Checkpoint{
		Label:   label,
		Created: time.Now(),
		Effects: cloneAll(s.effects),
	}
	if s.current != nil {
		cp.Selected = s.current.Name
	}
	s.checkpoints = append(s.checkpoints, cp)
	return len(s.checkpoints) - 1
}

// Checkpoints 返回已保存的检查点，最早的在前
func (s *Session) Checkpoints() []Checkpoint { return s.checkpoints }

// Restore 用检查点 i 替换特效库，检查点本身保持不变，可以再次恢复
func (s *Session) Restore(i int) error {
	if i < 0 || i >= len(s.checkpoints) {
		return fmt.Errorf("checkpoint %d out of range (have %d)", i, len(s.checkpoints))
	}
	cp := s.checkpoints[i]
	s.effects = cloneAll(cp.Effects)
	s.engines = make(map[*effect.State]*effect.Engine)
	s.bindAll()

	selected := effect.Find(s.effects, cp.Selected)
	if selected == nil && len(s.effects) > 0 {
		selected = s.effects[0]
	}
	s.SelectEffect(selected)
	log.Printf("[Editor] Restored checkpoint %q", cp.Label)
	return nil
}

func cloneAll(effects []*effect.State) []*effect.State {
	out := make([]*effect.State, 0, len(effects))
	for _, e := range effects {
		if e != nil {
			out = append(out, e.Clone())
		}
	}
	return out
}
