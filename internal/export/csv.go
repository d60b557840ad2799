package export

import (
	"fmt"
	"strings"
	"time"

	"micromeasure/internal/measure"
)

// csvHeader names the measurement columns. The px/µm columns hold a length
// for lines and a diameter for circles.
const csvHeader = "filename,tool,length_px/diameter_px,length_um/diameter_um,scale_um_per_px,timestamp"

// CSV serializes the measurement set as delimited text: header row first,
// one row per measurement, newline-terminated.
func CSV(filename string, ms []measure.Measured, scaleUmPerPx float64, now time.Time) string {
	var b strings.Builder
	b.WriteString(csvHeader)
	b.WriteByte('\n')

	timestamp := now.Format("2006-01-02T15:04:05")
	for _, m := range ms {
		fmt.Fprintf(&b, "%s,%s,%.4f,%.4f,%.9f,%s\n",
			filename, m.Tool, m.Px, m.Um, scaleUmPerPx, timestamp)
	}
	return b.String()
}
