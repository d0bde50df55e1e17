package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		id   Identity
		want Capabilities
	}{
		{
			name: "reviewer sees all, mutates nothing",
			id:   Identity{Email: "r@example.com", Role: RoleReviewer},
			want: Capabilities{CanViewAll: true},
		},
		{
			name: "rater sees all and rates",
			id:   Identity{Email: "r@example.com", Role: RoleRater},
			want: Capabilities{CanViewAll: true, CanRate: true},
		},
		{
			name: "admin sees all and deletes",
			id:   Identity{Email: "a@example.com", Role: RoleAdmin},
			want: Capabilities{CanViewAll: true, CanDelete: true},
		},
		{
			name: "self reviewer pinned to own records",
			id:   Identity{Email: "s@example.com", Role: RoleSelfReviewer},
			want: Capabilities{Ownership: []string{"s@example.com"}},
		},
		{
			name: "self reviewer plus includes delegate",
			id:   Identity{Email: "s@example.com", Role: RoleSelfReviewerPlus, DelegateEmail: "d@example.com"},
			want: Capabilities{Ownership: []string{"s@example.com", "d@example.com"}},
		},
		{
			name: "self reviewer plus without delegate",
			id:   Identity{Email: "s@example.com", Role: RoleSelfReviewerPlus},
			want: Capabilities{Ownership: []string{"s@example.com"}},
		},
		{
			name: "unknown role gets most restricted view",
			id:   Identity{Email: "x@example.com", Role: "mystery"},
			want: Capabilities{Ownership: []string{"x@example.com"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.id))
		})
	}
}

func TestOwnsRestriction(t *testing.T) {
	assert.False(t, Capabilities{CanViewAll: true}.OwnsRestriction())
	assert.True(t, Capabilities{Ownership: []string{"s@example.com"}}.OwnsRestriction())
}
