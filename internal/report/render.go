package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const barWidth = 30

// WriteText renders v as an aligned table with a proportional bar per bucket.
func WriteText(w io.Writer, v View) error {
	labelWidth, valueWidth := 0, 0
	var peak int64
	for i, l := range v.Labels {
		labelWidth = max(labelWidth, utf8.RuneCountInString(l))
		valueWidth = max(valueWidth, len(v.FormatValue(i)))
		if v.Values[i] > peak {
			peak = v.Values[i]
		}
	}

	if _, err := fmt.Fprintf(w, "%s\n", v.Title); err != nil {
		return err
	}
	if len(v.Labels) == 0 {
		_, err := fmt.Fprintln(w, "  (no data)")
		return err
	}
	for i, l := range v.Labels {
		bar := 0
		if peak > 0 && v.Values[i] > 0 {
			bar = int(v.Values[i] * barWidth / peak)
			if bar == 0 {
				bar = 1
			}
		}
		pad := labelWidth - utf8.RuneCountInString(l)
		line := fmt.Sprintf("  %s%s  %*s  %s",
			l, strings.Repeat(" ", pad), valueWidth, v.FormatValue(i), strings.Repeat("#", bar))
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}
