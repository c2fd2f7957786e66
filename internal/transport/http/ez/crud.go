package ez

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"wwreviews/internal/access"
	"wwreviews/internal/domain"
	"wwreviews/internal/transport/http/middleware"
	resp "wwreviews/internal/transport/http/response"
)

// Hook，除 ScopeList/Present 外都在写事务里执行
type CrudHooks[T any] struct {
	BeforeSave   func(c *gin.Context, tx *gorm.DB, m *T) error // create 与 update 都会调用
	AfterUpdate  func(c *gin.Context, tx *gorm.DB, before, after *T) error
	BeforeDelete func(c *gin.Context, tx *gorm.DB, m *T) error
	ScopeList    func(c *gin.Context, q *gorm.DB) (*gorm.DB, error) // 额外筛选
	Present      func(c *gin.Context, items []T) ([]any, error)   // 输出前转换
}

type CrudConfig[T any] struct {
	DB       *gorm.DB
	Group    *gin.RouterGroup
	Path     string          // 例："/product"，注册 "/product/" 与 "/product/:id"
	Resource access.Resource // 鉴权与可见范围按它查表
	New      func() *T

	Hooks CrudHooks[T]

	ReadOnly   bool // 只注册 list / retrieve
	DisablePut bool // PUT 一律 405

	// 归属字段：create 时强制写成请求方，update 时保持原值
	OwnerField  string // 结构体字段名，例如 "UserID"（uint 或 *uint）
	OwnerColumn string // 对应列名，例如 "user_id"

	// create 与 PUT 时请求体必须带的 JSON 键（零值合法的字段靠它区分“没传”）
	Required []string

	Filters  []Filter
	Paginate bool   // 支持 ?limit=&offset=
	OrderBy  string // 默认 "id ASC"
}

const maxLimit = 1000

type crud[T any] struct{ cfg CrudConfig[T] }

// Crud 注册一组受 access 表约束的 CRUD 路由
func Crud[T any](cfg CrudConfig[T]) {
	if cfg.OrderBy == "" {
		cfg.OrderBy = "id ASC"
	}
	h := &crud[T]{cfg: cfg}
	g := cfg.Group
	g.GET(cfg.Path+"/", h.list)
	g.GET(cfg.Path+"/:id", h.retrieve)
	if cfg.ReadOnly {
		return
	}
	g.POST(cfg.Path+"/", h.create)
	g.PATCH(cfg.Path+"/:id", h.update(access.PartialUpdate))
	g.DELETE(cfg.Path+"/:id", h.destroy)
	if cfg.DisablePut {
		g.PUT(cfg.Path+"/:id", func(c *gin.Context) {
			WriteError(c, MethodNotAllowed(`Method "PUT" not allowed.`))
		})
		return
	}
	g.PUT(cfg.Path+"/:id", h.update(access.Update))
}

func (h *crud[T]) db(c *gin.Context) *gorm.DB { return h.cfg.DB.WithContext(c.Request.Context()) }

// scoped 按请求方可见范围过滤
func (h *crud[T]) scoped(q *gorm.DB, act access.Action, req access.Requester) *gorm.DB {
	q = q.Model(h.cfg.New())
	return access.Apply(q, access.Visible(h.cfg.Resource, act, req), h.cfg.OwnerColumn, req)
}

func (h *crud[T]) list(c *gin.Context) {
	req := middleware.Identity(c)
	if err := access.Authorize(h.cfg.Resource, access.List, req); err != nil {
		WriteError(c, err)
		return
	}
	q := h.scoped(h.db(c), access.List, req)
	q, err := applyFilters(q, h.cfg.Filters, c.Request.URL.Query())
	if err != nil {
		WriteError(c, err)
		return
	}
	if h.cfg.Hooks.ScopeList != nil {
		if q, err = h.cfg.Hooks.ScopeList(c, q); err != nil {
			WriteError(c, err)
			return
		}
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		WriteError(c, err)
		return
	}

	body := gin.H{"total": total}
	q = q.Order(h.cfg.OrderBy)
	if h.cfg.Paginate {
		if limit, ok := queryInt(c, "limit"); ok {
			limit = min(limit, maxLimit)
			offset, _ := queryInt(c, "offset")
			q = q.Limit(limit).Offset(offset)
			body["limit"], body["offset"] = limit, offset
		}
	}

	items := []T{}
	if err := q.Find(&items).Error; err != nil {
		WriteError(c, err)
		return
	}
	out, err := h.present(c, items)
	if err != nil {
		WriteError(c, err)
		return
	}
	body["list"] = out
	c.JSON(http.StatusOK, resp.OK(body))
}

func (h *crud[T]) retrieve(c *gin.Context) {
	req := middleware.Identity(c)
	if err := access.Authorize(h.cfg.Resource, access.Retrieve, req); err != nil {
		WriteError(c, err)
		return
	}
	id, ok := paramID(c)
	if !ok {
		WriteError(c, domain.ErrNotFound)
		return
	}
	m := h.cfg.New()
	if err := h.scoped(h.db(c), access.Retrieve, req).First(m, id).Error; err != nil {
		WriteError(c, err)
		return
	}
	h.writeOne(c, http.StatusOK, m)
}

func (h *crud[T]) create(c *gin.Context) {
	req := middleware.Identity(c)
	if err := access.Authorize(h.cfg.Resource, access.Create, req); err != nil {
		WriteError(c, err)
		return
	}
	raw, err := c.GetRawData()
	if err != nil {
		WriteError(c, err)
		return
	}
	if err := requireKeys(raw, h.cfg.Required); err != nil {
		WriteError(c, err)
		return
	}
	m := h.cfg.New()
	if err := decode(raw, m); err != nil {
		WriteError(c, err)
		return
	}
	zero(m, readOnly...)

	if h.cfg.OwnerField != "" {
		if req == nil {
			WriteError(c, domain.ErrUnauthorized)
			return
		}
		// 客户端可以不传或传自己，传了别的值（包括 0、null）算校验错误
		if hasKey(raw, jsonName(m, h.cfg.OwnerField)) {
			if v, set := getOwner(m, h.cfg.OwnerField); !set || v != req.UserID {
				WriteError(c, domain.NewValidationError("user", fmt.Sprintf("Invalid pk \"%d\" - must be the requesting user.", v)))
				return
			}
		}
		setOwner(m, h.cfg.OwnerField, req.UserID)
	}

	err = h.db(c).Transaction(func(tx *gorm.DB) error {
		if h.cfg.Hooks.BeforeSave != nil {
			if err := h.cfg.Hooks.BeforeSave(c, tx, m); err != nil {
				return err
			}
		}
		return tx.Omit(clause.Associations).Create(m).Error
	})
	if err != nil {
		WriteError(c, err)
		return
	}
	h.writeOne(c, http.StatusCreated, m)
}

func (h *crud[T]) update(act access.Action) gin.HandlerFunc {
	partial := act == access.PartialUpdate
	return func(c *gin.Context) {
		req := middleware.Identity(c)
		if err := access.Authorize(h.cfg.Resource, act, req); err != nil {
			WriteError(c, err)
			return
		}
		id, ok := paramID(c)
		if !ok {
			WriteError(c, domain.ErrNotFound)
			return
		}
		raw, err := c.GetRawData()
		if err != nil {
			WriteError(c, err)
			return
		}

		m := h.cfg.New()
		err = h.db(c).Transaction(func(tx *gorm.DB) error {
			if err := h.scoped(tx, act, req).First(m, id).Error; err != nil {
				return err
			}
			var before *T
			if h.cfg.Hooks.AfterUpdate != nil {
				before = h.cfg.New()
				if err := tx.First(before, id).Error; err != nil {
					return err
				}
			}
			restore := keep(m, append(readOnly, h.cfg.OwnerField)...)

			// PUT 要求完整对象，先单独校验一遍
			if !partial {
				if err := requireKeys(raw, h.cfg.Required); err != nil {
					return err
				}
				if err := decode(raw, h.cfg.New()); err != nil {
					return err
				}
			}
			if err := json.Unmarshal(raw, m); err != nil {
				return err
			}
			restore()
			if err := validate(m); err != nil {
				return err
			}

			if h.cfg.Hooks.BeforeSave != nil {
				if err := h.cfg.Hooks.BeforeSave(c, tx, m); err != nil {
					return err
				}
			}
			if err := tx.Omit(clause.Associations).Save(m).Error; err != nil {
				return err
			}
			if before != nil {
				return h.cfg.Hooks.AfterUpdate(c, tx, before, m)
			}
			return nil
		})
		if err != nil {
			WriteError(c, err)
			return
		}
		h.writeOne(c, http.StatusOK, m)
	}
}

func (h *crud[T]) destroy(c *gin.Context) {
	req := middleware.Identity(c)
	if err := access.Authorize(h.cfg.Resource, access.Destroy, req); err != nil {
		WriteError(c, err)
		return
	}
	id, ok := paramID(c)
	if !ok {
		WriteError(c, domain.ErrNotFound)
		return
	}
	err := h.db(c).Transaction(func(tx *gorm.DB) error {
		m := h.cfg.New()
		if err := h.scoped(tx, access.Destroy, req).First(m, id).Error; err != nil {
			return err
		}
		if h.cfg.Hooks.BeforeDelete != nil {
			if err := h.cfg.Hooks.BeforeDelete(c, tx, m); err != nil {
				return err
			}
		}
		return tx.Delete(m).Error
	})
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK(gin.H{"id": id}))
}

func (h *crud[T]) present(c *gin.Context, items []T) (any, error) {
	if h.cfg.Hooks.Present == nil {
		return items, nil
	}
	return h.cfg.Hooks.Present(c, items)
}

func (h *crud[T]) writeOne(c *gin.Context, status int, m *T) {
	var out any = m
	if h.cfg.Hooks.Present != nil {
		views, err := h.cfg.Hooks.Present(c, []T{*m})
		if err != nil {
			WriteError(c, err)
			return
		}
		if len(views) == 1 {
			out = views[0]
		}
	}
	c.JSON(status, resp.OK(out))
}

// decode 解析 JSON 并按 binding 规则校验
func decode(raw []byte, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return err
	}
	return validate(dst)
}

// requireKeys 检查请求体里是否出现了这些键，值是否合法交给 decode
func requireKeys(raw []byte, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return err
	}
	var ve *domain.ValidationError
	for _, k := range keys {
		if v, ok := obj[k]; !ok || string(v) == "null" {
			if ve == nil {
				ve = &domain.ValidationError{}
			}
			ve.Add(k, "This field is required.")
		}
	}
	if ve != nil {
		return ve
	}
	return nil
}

func hasKey(raw []byte, key string) bool {
	var obj map[string]json.RawMessage
	if key == "" || json.Unmarshal(raw, &obj) != nil {
		return false
	}
	_, ok := obj[key]
	return ok
}

func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func queryInt(c *gin.Context, key string) (int, bool) {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// 反射 & 工具

func structField(obj any, name string) (reflect.Value, bool) {
	v := reflect.ValueOf(obj)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct || name == "" {
		return reflect.Value{}, false
	}
	f := v.Elem().FieldByName(name)
	if !f.IsValid() || !f.CanSet() {
		return reflect.Value{}, false
	}
	return f, true
}

// 客户端不能改的字段
var readOnly = []string{"ID", "CreatedAt", "UpdatedAt"}

func zero(obj any, names ...string) {
	for _, n := range names {
		if f, ok := structField(obj, n); ok {
			f.Set(reflect.Zero(f.Type()))
		}
	}
}

// keep 记下字段当前值，返回的函数把它们写回。指针字段深拷贝一层，
// json.Unmarshal 会直接写进已有指针指向的值。
func keep(obj any, names ...string) func() {
	saved := map[string]reflect.Value{}
	for _, n := range names {
		f, ok := structField(obj, n)
		if !ok {
			continue
		}
		cp := reflect.New(f.Type()).Elem()
		if f.Kind() == reflect.Ptr && !f.IsNil() {
			p := reflect.New(f.Type().Elem())
			p.Elem().Set(f.Elem())
			cp.Set(p)
		} else {
			cp.Set(f)
		}
		saved[n] = cp
	}
	return func() {
		for n, v := range saved {
			if f, ok := structField(obj, n); ok {
				f.Set(v)
			}
		}
	}
}

// getOwner set=false 表示字段不存在或为 nil 指针
// jsonName 结构体字段对应的 JSON 键，没有 json tag 时用字段名
func jsonName(obj any, name string) string {
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	f, ok := t.FieldByName(name)
	if !ok {
		return ""
	}
	tag, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch tag {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return tag
}

func getOwner(obj any, name string) (uint, bool) {
	f, ok := structField(obj, name)
	if !ok {
		return 0, false
	}
	switch f.Kind() {
	case reflect.Uint:
		return uint(f.Uint()), true
	case reflect.Ptr:
		if f.IsNil() || f.Elem().Kind() != reflect.Uint {
			return 0, false
		}
		return uint(f.Elem().Uint()), true
	}
	return 0, false
}

// setOwner 指针字段每次换新地址，避免和快照共用
func setOwner(obj any, name string, val uint) {
	f, ok := structField(obj, name)
	if !ok {
		return
	}
	switch f.Kind() {
	case reflect.Uint:
		f.SetUint(uint64(val))
	case reflect.Ptr:
		if f.Type().Elem().Kind() == reflect.Uint {
			p := reflect.New(f.Type().Elem())
			p.Elem().SetUint(uint64(val))
			f.Set(p)
		}
	}
}
