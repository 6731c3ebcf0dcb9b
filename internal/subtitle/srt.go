package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"math"
)

// WriteSRT exports cues as a SubRip file. Colours are carried in <font>
// tags, which most players honour.
func WriteSRT(w io.Writer, cues Cues) error {
	bw := bufio.NewWriter(w)
	for i, c := range cues {
		fmt.Fprintf(bw, "%d\n%s --> %s\n", i+1, srtTimestamp(c.Start), srtTimestamp(c.End))
		if c.Color != "" && c.Color != DefaultColor {
			fmt.Fprintf(bw, "<font color=\"%s\">%s</font>\n\n", c.Color, c.Text)
		} else {
			fmt.Fprintf(bw, "%s\n\n", c.Text)
		}
	}
	return bw.Flush()
}

func srtTimestamp(seconds float64) string {
	ms := int64(math.Round(seconds * 1000))
	h := ms / 3_600_000
	ms -= h * 3_600_000
	m := ms / 60_000
	ms -= m * 60_000
	s := ms / 1000
	ms -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
