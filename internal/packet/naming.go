package packet

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Extension is the packet file extension.
const Extension = ".json"

// FileName returns the file name for a 1-based packet index.
func FileName(index int) string {
	return fmt.Sprintf("packet%04d%s", index, Extension)
}

// ParseIndex extracts the numeric suffix of a packet file name. Names that
// are not JSON files or carry no trailing digits are not packets.
func ParseIndex(name string) (int, bool) {
	base := filepath.Base(name)
	if !strings.EqualFold(filepath.Ext(base), Extension) {
		return 0, false
	}
	stem := base[:len(base)-len(Extension)]
	end := len(stem)
	start := end
	for start > 0 && stem[start-1] >= '0' && stem[start-1] <= '9' {
		start--
	}
	if start == end {
		return 0, false
	}
	idx, err := strconv.Atoi(stem[start:end])
	if err != nil {
		return 0, false
	}
	return idx, true
}

// File is a packet file located on disk.
type File struct {
	Path  string
	Index int
}

// SortFiles orders packet files by numeric index; ties fall back to the name
// so the order stays deterministic.
func SortFiles(files []File) {
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Index != files[j].Index {
			return files[i].Index < files[j].Index
		}
		return filepath.Base(files[i].Path) < filepath.Base(files[j].Path)
	})
}
