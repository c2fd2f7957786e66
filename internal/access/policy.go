// Package access 集中定义每类资源、每个动作的鉴权与可见范围。
//
// 每个请求做两件独立的判断：能不能做（Authorize），能看到哪些行（Visible）。
// 规则全部在 table 里。
package access

import (
	"wwreviews/internal/domain"
)

type Resource string

const (
	Member             Resource = "member"
	Product            Resource = "product"
	Category           Resource = "category"
	ProductAction      Resource = "product-action"
	SuggestedProduct   Resource = "suggested-product"
	Rating             Resource = "rating"
	Feedback           Resource = "feedback"
	BasicProductReview Resource = "basic-product-review"
)

// DisplayName 出错信息里用的模型名
func (r Resource) DisplayName() string {
	switch r {
	case Member:
		return "Member"
	case Product:
		return "Product"
	case Category:
		return "Category"
	case ProductAction:
		return "ProductAction"
	case SuggestedProduct:
		return "SuggestedProduct"
	case Rating:
		return "Rating"
	case Feedback:
		return "Feedback"
	case BasicProductReview:
		return "BasicProductReview"
	}
	return string(r)
}

type Action string

const (
	List          Action = "list"
	Retrieve      Action = "retrieve"
	Create        Action = "create"
	Update        Action = "update"
	PartialUpdate Action = "partial_update"
	Destroy       Action = "destroy"
)

func (a Action) IsRead() bool { return a == List || a == Retrieve }

// Visibility 请求方可见的行范围
type Visibility int

const (
	None Visibility = iota // 一行都看不到（写操作表现为 404）
	Own                    // 只看自己的
	All
)

// Requester 请求方；nil 表示匿名
type Requester = *domain.Identity

type Rule struct {
	// 需要登录
	Auth bool
	// 已登录后的额外检查，返回 nil 表示放行
	Check func(res Resource, act Action, req Requester) error
	// 行范围
	Scope func(req Requester) Visibility
}

type key struct {
	res Resource
	act Action
}

var (
	public        = Rule{Scope: everyone}
	authedNone    = Rule{Auth: true, Scope: nobody}
	ownOrAll      = Rule{Auth: true, Scope: moderatorAllElseOwn}
	moderatorOnly = Rule{Auth: true, Check: requireModerator, Scope: everyone}
	moderatorRows = Rule{Auth: true, Scope: moderatorAllElseNone}
	neverCreate   = Rule{Check: deny, Scope: nobody}
)

var table = map[key]Rule{
	{Member, List}:     {Auth: true, Scope: self},
	{Member, Retrieve}: {Auth: true, Scope: self},

	{Product, List}:          public,
	{Product, Retrieve}:      public,
	{Product, Create}:        moderatorOnly,
	{Product, Update}:        moderatorRows,
	{Product, PartialUpdate}: moderatorRows,
	{Product, Destroy}:       moderatorRows,

	{Category, List}:          public,
	{Category, Retrieve}:      public,
	{Category, Create}:        moderatorOnly,
	{Category, Update}:        moderatorRows,
	{Category, PartialUpdate}: moderatorRows,
	{Category, Destroy}:       moderatorRows,

	{ProductAction, List}:          public,
	{ProductAction, Retrieve}:      public,
	{ProductAction, Create}:        neverCreate,
	{ProductAction, Update}:        authedNone,
	{ProductAction, PartialUpdate}: authedNone,
	{ProductAction, Destroy}:       authedNone,

	{SuggestedProduct, List}:          ownOrAll,
	{SuggestedProduct, Retrieve}:      ownOrAll,
	{SuggestedProduct, Create}:        ownOrAll,
	{SuggestedProduct, Update}:        ownOrAll,
	{SuggestedProduct, PartialUpdate}: ownOrAll,
	{SuggestedProduct, Destroy}:       ownOrAll,

	{Rating, List}:          public,
	{Rating, Retrieve}:      public,
	{Rating, Create}:        ownOrAll,
	{Rating, Update}:        ownOrAll,
	{Rating, PartialUpdate}: ownOrAll,
	{Rating, Destroy}:       ownOrAll,

	{Feedback, List}:          public,
	{Feedback, Retrieve}:      public,
	{Feedback, Create}:        ownOrAll,
	{Feedback, Update}:        ownOrAll,
	{Feedback, PartialUpdate}: ownOrAll,
	{Feedback, Destroy}:       ownOrAll,

	{BasicProductReview, List}:     public,
	{BasicProductReview, Retrieve}: public,
}

// Lookup 未定义的 (资源, 动作) 返回 false
func Lookup(res Resource, act Action) (Rule, bool) {
	r, ok := table[key{res, act}]
	return r, ok
}

// Authorize 判断请求方能否执行该动作。
// 未登录 → ErrUnauthorized；角色不足 → DeniedError（同样是 401）。
func Authorize(res Resource, act Action, req Requester) error {
	rule, ok := Lookup(res, act)
	if !ok {
		return domain.ErrMethodNotAllowed
	}
	if rule.Auth && req == nil {
		return domain.ErrUnauthorized
	}
	if rule.Check != nil {
		return rule.Check(res, act, req)
	}
	return nil
}

// Visible 请求方在该动作下能看到的行范围
func Visible(res Resource, act Action, req Requester) Visibility {
	rule, ok := Lookup(res, act)
	if !ok || rule.Scope == nil {
		return None
	}
	return rule.Scope(req)
}

func everyone(Requester) Visibility { return All }
func nobody(Requester) Visibility   { return None }

func self(req Requester) Visibility {
	if req == nil {
		return None
	}
	return Own
}

func moderatorAllElseOwn(req Requester) Visibility {
	if req == nil {
		return None
	}
	if req.IsModerator() {
		return All
	}
	return Own
}

func moderatorAllElseNone(req Requester) Visibility {
	if req.IsModerator() {
		return All
	}
	return None
}

func requireModerator(res Resource, act Action, req Requester) error {
	if req.IsModerator() {
		return nil
	}
	return domain.Denied(verb(act), res.DisplayName())
}

func deny(res Resource, act Action, _ Requester) error {
	return domain.Denied(verb(act), res.DisplayName())
}

func verb(act Action) string {
	switch act {
	case Create:
		return "create"
	case Update, PartialUpdate:
		return "update"
	case Destroy:
		return "delete"
	}
	return "view"
}
