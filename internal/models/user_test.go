package models

import "testing"

func TestParseRole(t *testing.T) {
	tests := []struct {
		raw     string
		want    UserRole
		wantErr bool
	}{
		{raw: "admin", want: RoleAdmin},
		{raw: " Finance ", want: RoleFinance},
		{raw: "office_user", want: RoleOfficeUser},
		{raw: "office", want: RoleOffice},
		{raw: "office_bangalore", want: UserRole("office_bangalore")},
		{raw: "office_new_york", want: UserRole("office_new_york")},
		{raw: "office_", wantErr: true},
		{raw: "office__pune", wantErr: true},
		{raw: "office_pune_", wantErr: true},
		{raw: "office_pune1", wantErr: true},
		{raw: "wizard", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseRole(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseRole(%q) = %q, want error", tt.raw, got)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("ParseRole(%q) = %q, %v; want %q", tt.raw, got, err, tt.want)
			}
		})
	}
}

func TestIsOfficeVariant(t *testing.T) {
	tests := []struct {
		role UserRole
		want bool
	}{
		{role: "office_delhi", want: true},
		{role: "office_new_york", want: true},
		{role: RoleOfficeUser, want: false},
		{role: RoleOffice, want: false},
		{role: RoleStaff, want: false},
	}

	for _, tt := range tests {
		if got := tt.role.IsOfficeVariant(); got != tt.want {
			t.Errorf("%s.IsOfficeVariant() = %v, want %v", tt.role, got, tt.want)
		}
	}
}
