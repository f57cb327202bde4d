package classify

// RGB is an 8-bit color.
type RGB struct {
	R, G, B uint8
}

// Hex renders the color as #rrggbb.
func (c RGB) Hex() string {
	const digits = "0123456789abcdef"
	b := []byte{'#', 0, 0, 0, 0, 0, 0}
	for i, v := range []uint8{c.R, c.G, c.B} {
		b[1+i*2] = digits[v>>4]
		b[2+i*2] = digits[v&0x0f]
	}
	return string(b)
}

var (
	Green  = RGB{16, 185, 129}  // #10b981
	Blue   = RGB{59, 130, 246}  // #3b82f6
	Amber  = RGB{245, 158, 11}  // #f59e0b
	Red    = RGB{239, 68, 68}   // #ef4444
	Violet = RGB{139, 92, 246}  // #8b5cf6
	Ink    = RGB{17, 24, 39}    // #111827
	Muted  = RGB{107, 114, 128} // #6b7280
	Rule   = RGB{229, 231, 235} // #e5e7eb
	Stripe = RGB{249, 250, 251} // #f9fafb
	White  = RGB{255, 255, 255}
)

// LevelColor is the fixed four-color palette for quality bands.
func LevelColor(l Level) RGB {
	switch l {
	case Excellent:
		return Green
	case Good:
		return Blue
	case Moderate:
		return Amber
	default:
		return Red
	}
}

// ZoneColor colors an intensity zone.
func ZoneColor(z Zone) RGB {
	switch z {
	case ZoneHigh:
		return Red
	case ZoneModerate:
		return Amber
	default:
		return Green
	}
}
