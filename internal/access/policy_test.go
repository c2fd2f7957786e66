package access

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"wwreviews/internal/domain"
)

var (
	anon      Requester
	regular   = &domain.Identity{UserID: 1, Role: domain.RoleUser}
	moderator = &domain.Identity{UserID: 2, Role: domain.RoleModerator}
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name string
		res  Resource
		act  Action
		req  Requester
		want error // nil | ErrUnauthorized | ErrNotPermitted | ErrMethodNotAllowed
	}{
		{"anon lists products", Product, List, anon, nil},
		{"anon creates product", Product, Create, anon, domain.ErrUnauthorized},
		{"user creates product", Product, Create, regular, domain.ErrNotPermitted},
		{"moderator creates product", Product, Create, moderator, nil},
		{"user creates category", Category, Create, regular, domain.ErrNotPermitted},
		{"moderator creates category", Category, Create, moderator, nil},
		{"user patches product passes check", Product, PartialUpdate, regular, nil},
		{"anon patches product", Product, PartialUpdate, anon, domain.ErrUnauthorized},
		{"moderator creates action", ProductAction, Create, moderator, domain.ErrNotPermitted},
		{"anon creates action", ProductAction, Create, anon, domain.ErrNotPermitted},
		{"anon reads actions", ProductAction, List, anon, nil},
		{"anon lists suggestions", SuggestedProduct, List, anon, domain.ErrUnauthorized},
		{"user creates suggestion", SuggestedProduct, Create, regular, nil},
		{"anon reads ratings", Rating, List, anon, nil},
		{"anon rates", Rating, Create, anon, domain.ErrUnauthorized},
		{"user rates", Rating, Create, regular, nil},
		{"user leaves feedback", Feedback, Create, regular, nil},
		{"anon lists members", Member, List, anon, domain.ErrUnauthorized},
		{"user lists members", Member, List, regular, nil},
		{"member is read only", Member, Create, moderator, domain.ErrMethodNotAllowed},
		{"reviews are public", BasicProductReview, List, anon, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.res, tt.act, tt.req)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestAuthorize_DeniedMessage(t *testing.T) {
	err := Authorize(Product, Create, regular)
	assert.EqualError(t, err, "You are not authorized to create a 'Product' resource.")

	err = Authorize(ProductAction, Create, moderator)
	assert.EqualError(t, err, "You are not authorized to create a 'ProductAction' resource.")
}

func TestVisible(t *testing.T) {
	tests := []struct {
		name string
		res  Resource
		act  Action
		req  Requester
		want Visibility
	}{
		{"member self", Member, List, regular, Own},
		{"products for all", Product, Retrieve, anon, All},
		{"user cannot see products to delete", Product, Destroy, regular, None},
		{"moderator edits any product", Product, PartialUpdate, moderator, All},
		{"actions never editable", ProductAction, PartialUpdate, moderator, None},
		{"user sees own suggestions", SuggestedProduct, List, regular, Own},
		{"moderator sees all suggestions", SuggestedProduct, List, moderator, All},
		{"ratings listed for everyone", Rating, List, anon, All},
		{"user edits own ratings", Rating, PartialUpdate, regular, Own},
		{"moderator edits any feedback", Feedback, Destroy, moderator, All},
		{"unknown action", Member, Destroy, moderator, None},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Visible(tt.res, tt.act, tt.req))
		})
	}
}
