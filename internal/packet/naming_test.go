package packet

import "testing"

func TestFileName(t *testing.T) {
	tests := map[int]string{
		1:     "packet0001.json",
		42:    "packet0042.json",
		9999:  "packet9999.json",
		10000: "packet10000.json",
	}
	for idx, want := range tests {
		if got := FileName(idx); got != want {
			t.Fatalf("FileName(%d) = %q, want %q", idx, got, want)
		}
	}
}

func TestParseIndex(t *testing.T) {
	tests := []struct {
		name   string
		want   int
		wantOK bool
	}{
		{"packet0001.json", 1, true},
		{"/tmp/movie/packet0012.json", 12, true},
		{"packet10000.json", 10000, true},
		{"PACKET0003.JSON", 3, true},
		{"packet.json", 0, false},
		{"packet0001.json.tmp", 0, false},
		{".complete", 0, false},
		{"notes.txt", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseIndex(tt.name)
		if ok != tt.wantOK || got != tt.want {
			t.Fatalf("ParseIndex(%q) = %d, %v; want %d, %v", tt.name, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseIndexRoundTripsFileName(t *testing.T) {
	for i := 1; i <= 120; i++ {
		got, ok := ParseIndex(FileName(i))
		if !ok || got != i {
			t.Fatalf("ParseIndex(FileName(%d)) = %d, %v", i, got, ok)
		}
	}
}

func TestSortFilesUsesNumericOrder(t *testing.T) {
	files := []File{
		{Path: "packet10.json", Index: 10},
		{Path: "packet2.json", Index: 2},
		{Path: "packet0001.json", Index: 1},
	}
	SortFiles(files)
	for i, want := range []int{1, 2, 10} {
		if files[i].Index != want {
			t.Fatalf("position %d has index %d, want %d", i, files[i].Index, want)
		}
	}
}
