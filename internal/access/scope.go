package access

import "gorm.io/gorm"

// Apply 把可见范围落到查询上。ownerColumn 为空的资源没有归属，Own 退化为 None。
func Apply(q *gorm.DB, vis Visibility, ownerColumn string, req Requester) *gorm.DB {
	switch vis {
	case All:
		return q
	case Own:
		if ownerColumn != "" && req != nil {
			return q.Where(ownerColumn+" = ?", req.UserID)
		}
	}
	return q.Where("1 = 0")
}
