package ez

import (
	"net/url"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"wwreviews/internal/domain"
)

// Op 查询参数的比较方式，命名沿用 name__icontains 这类写法
type Op string

const (
	OpExact      Op = "exact"
	OpStartsWith Op = "startswith"
	OpContains   Op = "contains"
	OpIContains  Op = "icontains"
	OpGte        Op = "gte"
	OpLte        Op = "lte"
	OpIsNull     Op = "isnull"
	OpIn         Op = "in"
)

type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
)

// Filter 一个查询参数 → 一个 where 条件
type Filter struct {
	Param  string // 例："price__gte"
	Column string // 例："price"
	Op     Op
	Kind   Kind
}

// F 按 "列__操作" 的约定生成过滤器；exact 的参数名就是列名
func F(column string, kind Kind, ops ...Op) []Filter {
	if len(ops) == 0 {
		ops = []Op{OpExact}
	}
	out := make([]Filter, 0, len(ops))
	for _, op := range ops {
		param := column
		if op != OpExact {
			param = column + "__" + string(op)
		}
		out = append(out, Filter{Param: param, Column: column, Op: op, Kind: kind})
	}
	return out
}

// 空值参数忽略
func applyFilters(q *gorm.DB, filters []Filter, values url.Values) (*gorm.DB, error) {
	verr := &domain.ValidationError{}
	for _, f := range filters {
		raw := strings.TrimSpace(values.Get(f.Param))
		if raw == "" {
			continue
		}
		var err error
		if q, err = f.apply(q, raw); err != nil {
			verr.Add(f.Param, err.Error())
		}
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}
	return q, nil
}

type filterErr string

func (e filterErr) Error() string { return string(e) }

func (f Filter) apply(q *gorm.DB, raw string) (*gorm.DB, error) {
	col := f.Column
	switch f.Op {
	case OpIsNull:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, filterErr("Enter a valid boolean.")
		}
		if b {
			return q.Where(col + " IS NULL"), nil
		}
		return q.Where(col + " IS NOT NULL"), nil
	case OpIn:
		parts := strings.Split(raw, ",")
		vals := make([]any, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p == "" {
				continue
			}
			v, err := f.parse(p)
			if err != nil {
				return nil, err
			}
			vals = append(vals, v)
		}
		if len(vals) == 0 {
			return q, nil
		}
		return q.Where(col+" IN ?", vals), nil
	case OpStartsWith:
		return q.Where(col+" LIKE ? ESCAPE '!'", escapeLike(raw)+"%"), nil
	case OpContains:
		return q.Where(col+" LIKE ? ESCAPE '!'", "%"+escapeLike(raw)+"%"), nil
	case OpIContains:
		return q.Where("LOWER("+col+") LIKE ? ESCAPE '!'", "%"+escapeLike(strings.ToLower(raw))+"%"), nil
	}

	v, err := f.parse(raw)
	if err != nil {
		return nil, err
	}
	switch f.Op {
	case OpGte:
		return q.Where(col+" >= ?", v), nil
	case OpLte:
		return q.Where(col+" <= ?", v), nil
	}
	return q.Where(col+" = ?", v), nil
}

// '!' 在三种方言的字符串字面量里都不需要再转义
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// escapeLike 用户输入按字面匹配
func escapeLike(s string) string { return likeEscaper.Replace(s) }

func (f Filter) parse(raw string) (any, error) {
	switch f.Kind {
	case KindInt:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, filterErr("Enter a whole number.")
		}
		return v, nil
	case KindFloat:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, filterErr("Enter a number.")
		}
		return v, nil
	}
	return raw, nil
}
