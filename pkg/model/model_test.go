package model

import "testing"

func TestUser_IsAdmin(t *testing.T) {
	tests := []struct {
		name string
		role Role
		want bool
	}{
		{"admin", RoleAdmin, true},
		{"ordinary user", RoleUser, false},
		{"empty role", Role(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{Role: tt.role}
			if got := u.IsAdmin(); got != tt.want {
				t.Errorf("IsAdmin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPaginated_HasMore(t *testing.T) {
	tests := []struct {
		name            string
		page, size, tot int
		want            bool
	}{
		{"first of many", 1, 20, 55, true},
		{"last page", 3, 20, 55, false},
		{"exact fit", 2, 20, 40, false},
		{"empty", 1, 20, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Paginated[Task]{Page: tt.page, PageSize: tt.size, Total: tt.tot}
			if got := p.HasMore(); got != tt.want {
				t.Errorf("HasMore() = %v, want %v", got, tt.want)
			}
		})
	}
}
