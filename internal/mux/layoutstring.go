package mux

import (
	"fmt"
	"sort"
	"strings"

	"github.com/panefit/panefit/internal/model"
)

// BuildLayoutString renders a calculated layout in tmux's native layout
// format: a 16-bit checksum, then a recursive cell description where
// {} holds side-by-side cells and [] holds stacked cells. The result
// can be fed straight to select-layout.
func BuildLayoutString(layout model.Layout) string {
	var body string
	if len(layout.Panes) == 0 {
		body = fmt.Sprintf("%dx%d,0,0", layout.WindowWidth, layout.WindowHeight)
	} else {
		body = layoutCell(layout.Panes, 0, 0, layout.WindowWidth, layout.WindowHeight)
	}
	return fmt.Sprintf("%04x,%s", layoutChecksum(body), body)
}

// layoutCell renders the region (x,y,w,h) holding the given rects.
// Multi-pane regions are split with guillotine cuts: full-height
// vertical cuts make a {} row, full-width horizontal cuts make a []
// column, recursing into each segment.
func layoutCell(rects []model.Rect, x, y, w, h int) string {
	if len(rects) == 1 {
		r := rects[0]
		return fmt.Sprintf("%dx%d,%d,%d,%s", r.Width, r.Height, r.X, r.Y, paneNumber(r.ID))
	}

	if cols := splitSegments(rects, x, w, func(r model.Rect) (int, int) { return r.X, r.Width }); len(cols) > 1 {
		parts := make([]string, len(cols))
		for i, seg := range cols {
			parts[i] = layoutCell(seg.rects, seg.start, y, seg.length, h)
		}
		return fmt.Sprintf("%dx%d,%d,%d{%s}", w, h, x, y, strings.Join(parts, ","))
	}

	if rows := splitSegments(rects, y, h, func(r model.Rect) (int, int) { return r.Y, r.Height }); len(rows) > 1 {
		parts := make([]string, len(rows))
		for i, seg := range rows {
			parts[i] = layoutCell(seg.rects, x, seg.start, w, seg.length)
		}
		return fmt.Sprintf("%dx%d,%d,%d[%s]", w, h, x, y, strings.Join(parts, ","))
	}

	// No clean cut exists; list the cells side by side as a best effort.
	parts := make([]string, len(rects))
	for i, r := range rects {
		parts[i] = fmt.Sprintf("%dx%d,%d,%d,%s", r.Width, r.Height, r.X, r.Y, paneNumber(r.ID))
	}
	return fmt.Sprintf("%dx%d,%d,%d{%s}", w, h, x, y, strings.Join(parts, ","))
}

type segment struct {
	start  int
	length int
	rects  []model.Rect
}

// splitSegments partitions rects along one axis at cut positions no
// rect spans across. It returns one segment when no such cut exists.
func splitSegments(rects []model.Rect, start, length int, axis func(model.Rect) (int, int)) []segment {
	cuts := map[int]bool{}
	for _, r := range rects {
		pos, _ := axis(r)
		if pos > start {
			cuts[pos] = true
		}
	}
	valid := []int{start}
	for cut := range cuts {
		ok := true
		for _, r := range rects {
			pos, size := axis(r)
			if pos < cut && cut < pos+size {
				ok = false
				break
			}
		}
		if ok {
			valid = append(valid, cut)
		}
	}
	sort.Ints(valid)

	segments := make([]segment, len(valid))
	for i, cut := range valid {
		end := start + length
		if i+1 < len(valid) {
			end = valid[i+1]
		}
		segments[i] = segment{start: cut, length: end - cut}
	}
	for _, r := range rects {
		pos, _ := axis(r)
		for i := len(segments) - 1; i >= 0; i-- {
			if pos >= segments[i].start {
				segments[i].rects = append(segments[i].rects, r)
				break
			}
		}
	}
	return segments
}

// layoutChecksum is tmux's rotating one-byte-at-a-time checksum over
// the layout body.
func layoutChecksum(body string) uint16 {
	var csum uint16
	for i := 0; i < len(body); i++ {
		csum = (csum >> 1) + ((csum & 1) << 15)
		csum += uint16(body[i])
	}
	return csum
}

func paneNumber(id string) string {
	return strings.TrimPrefix(id, "%")
}
