package router

import (
	"sort"

	"github.com/gin-gonic/gin"
)

// APIModule / AdminModule 模块实现其一或两者都实现
type APIModule interface{ MountAPI(*gin.RouterGroup) }
type AdminModule interface{ MountAdmin(*gin.RouterGroup) }

// 实现 Priority 可控制挂载顺序，数值小的先挂；默认 100
type prioritizer interface{ Priority() int }

const defaultPriority = 100

type mount struct {
	prio int
	fn   func(*gin.RouterGroup)
}

// Registry 每个 engine 一份，只在启动阶段使用
type Registry struct {
	api   []mount
	admin []mount
}

func (r *Registry) Register(mods ...any) {
	for _, mod := range mods {
		p := defaultPriority
		if pr, ok := mod.(prioritizer); ok {
			p = pr.Priority()
		}
		if m, ok := mod.(APIModule); ok {
			r.api = append(r.api, mount{prio: p, fn: m.MountAPI})
		}
		if m, ok := mod.(AdminModule); ok {
			r.admin = append(r.admin, mount{prio: p, fn: m.MountAdmin})
		}
	}
}

func (r *Registry) MountAllAPI(g *gin.RouterGroup)   { mountAll(r.api, g) }
func (r *Registry) MountAllAdmin(g *gin.RouterGroup) { mountAll(r.admin, g) }

func mountAll(ms []mount, g *gin.RouterGroup) {
	sorted := append([]mount(nil), ms...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].prio < sorted[j].prio })
	for _, m := range sorted {
		m.fn(g)
	}
}
