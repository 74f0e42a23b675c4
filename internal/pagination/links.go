package pagination

// Link is one entry of the page selector. Ellipsis entries carry no page.
type Link struct {
	Page     int  `json:"page,omitempty"`
	Current  bool `json:"current,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

// Links renders the first and last page, the neighbours of current, and an
// ellipsis two pages away from current on either side.
func Links(current, total int) []Link {
	out := make([]Link, 0, 7)
	for p := 1; p <= total; p++ {
		switch {
		case p == 1 || p == total || (p >= current-1 && p <= current+1):
			out = append(out, Link{Page: p, Current: p == current})
		case p == current-2 || p == current+2:
			out = append(out, Link{Ellipsis: true})
		}
	}
	return out
}
