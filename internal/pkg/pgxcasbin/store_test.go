package pgxcasbin

import (
	"errors"
	"reflect"
	"testing"
)

func TestStore_Row(t *testing.T) {
	s := &store{table: DefaultTable}

	got, err := s.row("p", []string{"Users", "profiles", "read"})
	if err != nil {
		t.Fatalf("row() error = %v", err)
	}
	want := []any{"p", "Users", "profiles", "read", "", "", ""}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("row() = %v, want %v", got, want)
	}

	if _, err := s.row("", nil); !errors.Is(err, ErrEmptyPtype) {
		t.Fatalf("row() error = %v, want ErrEmptyPtype", err)
	}
	if _, err := s.row("p", make([]string, 7)); !errors.Is(err, ErrRuleTooLong) {
		t.Fatalf("row() error = %v, want ErrRuleTooLong", err)
	}
}

func TestWhere(t *testing.T) {
	tests := []struct {
		name     string
		ptype    string
		from     int
		values   []string
		wantSQL  string
		wantArgs []any
		wantErr  bool
	}{
		{name: "all", wantSQL: ""},
		{name: "ptype only", ptype: "g", wantSQL: " WHERE ptype = $1", wantArgs: []any{"g"}},
		{
			name: "skips blanks", ptype: "p", from: 1, values: []string{"", "read"},
			wantSQL: " WHERE ptype = $1 AND v2 = $2", wantArgs: []any{"p", "read"},
		},
		{name: "too long", ptype: "p", from: 3, values: make([]string, 4), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := where(tt.ptype, tt.from, tt.values)

			if (err != nil) != tt.wantErr {
				t.Fatalf("where() error = %v", err)
			}
			if sql != tt.wantSQL {
				t.Fatalf("sql = %q, want %q", sql, tt.wantSQL)
			}
			if len(args) != len(tt.wantArgs) || (len(args) > 0 && !reflect.DeepEqual(args, tt.wantArgs)) {
				t.Fatalf("args = %v, want %v", args, tt.wantArgs)
			}
		})
	}
}

func TestTrimBlank(t *testing.T) {
	got := trimBlank([]string{"g", "42", "Users", "", "", ""})
	if !reflect.DeepEqual(got, []string{"g", "42", "Users"}) {
		t.Fatalf("trimBlank() = %v", got)
	}
}
