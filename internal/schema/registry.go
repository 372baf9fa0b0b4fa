package schema

import (
	"errors"
	"log"
	"os"
	"sync"
)

// ErrAlreadyLoaded 对已加载的 registry 再次调用 Load 时返回
var ErrAlreadyLoaded = errors.New("schema registry already loaded")

// Source registry 可加载的数据源
type Source interface {
	// Name 在诊断信息中标识数据源
	Name() string
	// Read 返回原始文档及其格式
	Read() ([]byte, Format, error)
}

// FileSource 从磁盘读取 schema
type FileSource string

func (f FileSource) Name() string { return string(f) }

func (f FileSource) Read() ([]byte, Format, error) {
	data, err := os.ReadFile(string(f))
	return data, FormatForPath(string(f)), err
}

// BytesSource 包装内存中的文档
type BytesSource struct {
	Label  string
	Data   []byte
	Format Format
}

func (b BytesSource) Name() string { return b.Label }

func (b BytesSource) Read() ([]byte, Format, error) { return b.Data, b.Format, nil }

// Registry 按内部名、显示名和别名索引参数定义
//
// Load 成功前 Registry 为空，之后不可修改。
// 空 registry 上的所有查询都返回不存在。
// 对外返回的分组都是深拷贝，调用方修改不会影响 registry。
type Registry struct {
	mu      sync.RWMutex
	groups  []Group
	byName  map[string]*ParameterDefinition
	byLabel map[string]*ParameterDefinition
	aliases map[string]string
	order   []*ParameterDefinition
	loaded  bool
}

// NewRegistry 创建空的 registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Load 读取并索引 src
// 不返回错误：数据源无法读取或格式错误时记录日志并返回空序列，registry 保持为空
func (r *Registry) Load(src Source) []Group {
	groups, err := r.LoadErr(src)
	if err != nil {
		log.Printf("[SchemaRegistry] Error: %v", err)
		return nil
	}
	return groups
}

// LoadErr 与 Load 相同，但把失败返回给调用方
func (r *Registry) LoadErr(src Source) ([]Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loaded {
		return nil, ErrAlreadyLoaded
	}

	data, format, err := src.Read()
	if err != nil {
		return nil, &SchemaLoadError{Source: src.Name(), Err: err}
	}
	groups, aliases, err := Parse(data, format)
	if err != nil {
		var le *SchemaLoadError
		if errors.As(err, &le) {
			le.Source = src.Name()
		}
		return nil, err
	}

	r.index(groups, aliases)
	log.Printf("[SchemaRegistry] Loaded %d groups, %d parameters from %s", len(r.groups), len(r.order), src.Name())
	return r.copyGroups(), nil
}

func (r *Registry) index(groups []Group, aliases map[string]string) {
	r.groups = groups
	r.aliases = aliases
	r.byName = make(map[string]*ParameterDefinition)
	r.byLabel = make(map[string]*ParameterDefinition)
	r.order = r.order[:0]
	for gi := range r.groups {
		for pi := range r.groups[gi].Params {
			def := &r.groups[gi].Params[pi]
			r.byName[def.Name] = def
			r.byLabel[def.Label] = def
			r.order = append(r.order, def)
		}
	}
	r.loaded = true
}

// Loaded 判断是否已加载 schema
func (r *Registry) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded
}

// Get 依次按别名、内部名、显示名查找参数定义
func (r *Registry) Get(nameOrLabel string) (*ParameterDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.loaded {
		return nil, false
	}
	if target, ok := r.aliases[nameOrLabel]; ok {
		nameOrLabel = target
	}
	if def, ok := r.byName[nameOrLabel]; ok {
		return def, true
	}
	def, ok := r.byLabel[nameOrLabel]
	return def, ok
}

// Canonical 返回 nameOrLabel 对应的内部名，无法解析时原样返回
func (r *Registry) Canonical(nameOrLabel string) string {
	if def, ok := r.Get(nameOrLabel); ok {
		return def.Name
	}
	return nameOrLabel
}

// Default 返回参数转换后的默认值
func (r *Registry) Default(nameOrLabel string) (any, bool) {
	def, ok := r.Get(nameOrLabel)
	if !ok {
		return nil, false
	}
	return CoerceDefault(def), true
}

// Groups 返回已加载分组的深拷贝
func (r *Registry) Groups() []Group {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.copyGroups()
}

func (r *Registry) copyGroups() []Group {
	out := make([]Group, len(r.groups))
	for i := range r.groups {
		out[i] = r.groups[i].clone()
	}
	return out
}

// Definitions 按 schema 顺序返回所有参数定义
func (r *Registry) Definitions() []*ParameterDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*ParameterDefinition, len(r.order))
	copy(out, r.order)
	return out
}

// VisibleGroups 返回 mode 下可见的分组，分组内的参数按同样规则过滤
func (r *Registry) VisibleGroups(mode string) []Group {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Group
	for gi := range r.groups {
		g := &r.groups[gi]
		if !IsVisible(g, mode) {
			continue
		}
		filtered := *g
		filtered.Params = nil
		for pi := range g.Params {
			if IsVisible(&g.Params[pi], mode) {
				filtered.Params = append(filtered.Params, g.Params[pi].clone())
			}
		}
		out = append(out, filtered)
	}
	return out
}
