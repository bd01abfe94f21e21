package nav

import "sort"

// SortThreads orders entries by thread id ascending. Ids are strings and
// compare byte-wise, so "100" sorts before "99".
func SortThreads(entries []ThreadEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ID < entries[j].ID
	})
}
