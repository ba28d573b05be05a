package hostinfo

import "fmt"

const bytesPerGiB = 1 << 30

// ToGiB converts a byte count to gibibytes.
func ToGiB(b uint64) float64 {
	return float64(b) / bytesPerGiB
}

// FormatGiB renders a byte count as gibibytes with exactly two decimals,
// e.g. "15.62 GiB".
func FormatGiB(b uint64) string {
	return fmt.Sprintf("%.2f GiB", ToGiB(b))
}

// FormatPercent renders a percentage with one decimal, e.g. "42.5%".
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}
