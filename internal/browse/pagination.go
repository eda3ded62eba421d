package browse

// DefaultVisiblePages is how many page buttons the list screen shows.
const DefaultVisiblePages = 5

// VisiblePageWindow returns the page numbers to show for pagination
// controls: centred on current with two pages of lookback, clamped to
// [1, total], and shifted left near the end so it stays full when it can.
func VisiblePageWindow(current, total, maxVisible int) []int {
	if total < 1 {
		return []int{}
	}
	if maxVisible <= 0 {
		maxVisible = DefaultVisiblePages
	}
	if current < 1 {
		current = 1
	}
	if current > total {
		current = total
	}

	start := max(1, current-2)
	end := min(total, start+maxVisible-1)
	if end-start+1 < maxVisible {
		start = max(1, end-maxVisible+1)
	}

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}
