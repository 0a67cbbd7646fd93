package pagination

import "testing"

func TestNew(t *testing.T) {
	tests := []struct {
		name          string
		limit, offset int
		want          Params
	}{
		{"defaults", 0, 0, Params{Limit: DefaultLimit, Offset: 0}},
		{"explicit", 5, 10, Params{Limit: 5, Offset: 10}},
		{"over max", 500, 0, Params{Limit: MaxLimit, Offset: 0}},
		{"negative", -3, -1, Params{Limit: DefaultLimit, Offset: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(tt.limit, tt.offset); got != tt.want {
				t.Errorf("New(%d, %d) = %+v, want %+v", tt.limit, tt.offset, got, tt.want)
			}
		})
	}
}

func TestPage(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}

	first := Page(items, New(2, 0))
	if len(first.Data) != 2 || first.Data[0] != "a" || !first.HasMore || first.Total != 5 {
		t.Errorf("first page = %+v", first)
	}

	last := Page(items, New(2, 4))
	if len(last.Data) != 1 || last.Data[0] != "e" || last.HasMore {
		t.Errorf("last page = %+v", last)
	}

	past := Page(items, New(2, 9))
	if len(past.Data) != 0 || past.HasMore {
		t.Errorf("page past the end = %+v", past)
	}

	empty := Page([]string(nil), New(0, 0))
	if len(empty.Data) != 0 || empty.Total != 0 {
		t.Errorf("empty page = %+v", empty)
	}
}

func TestHasNext(t *testing.T) {
	p := Params{Limit: 10, Offset: 0}
	if !p.HasNext(20) {
		t.Error("expected HasNext=true when offset+limit < total")
	}
	if p.HasNext(10) {
		t.Error("expected HasNext=false when offset+limit == total")
	}
	if p.HasNext(5) {
		t.Error("expected HasNext=false when offset+limit > total")
	}
}

func TestHasPrevious(t *testing.T) {
	if (Params{Limit: 10, Offset: 0}).HasPrevious() {
		t.Error("expected HasPrevious=false when offset is 0")
	}
	if !(Params{Limit: 10, Offset: 10}).HasPrevious() {
		t.Error("expected HasPrevious=true when offset > 0")
	}
}

func TestOffsets(t *testing.T) {
	p := Params{Limit: 10, Offset: 5}
	if got := p.NextOffset(); got != 15 {
		t.Errorf("NextOffset() = %d, want 15", got)
	}
	if got := p.PreviousOffset(); got != 0 {
		t.Errorf("PreviousOffset() = %d, want 0", got)
	}
	if got := (Params{Limit: 10, Offset: 30}).PreviousOffset(); got != 20 {
		t.Errorf("PreviousOffset() = %d, want 20", got)
	}
}
