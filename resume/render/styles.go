package render

// RunStyle captures the inline run formatting applied to a layout line.
type RunStyle struct {
	Bold   bool
	Italic bool
	Size   int
	Color  string
}

const (
	HeadingColor = "1F2937"
	NameColor    = "111111"
	HeadingSize  = 24
	NameSize     = 32
	BodySize     = 21
)

// StyleMap centralizes the formatting for each kind of layout line.
// Sizes are half-points, matching WordprocessingML.
var StyleMap = map[lineStyle]RunStyle{
	styleName: {
		Bold:  true,
		Size:  NameSize,
		Color: NameColor,
	},
	styleHeading: {
		Bold:  true,
		Size:  HeadingSize,
		Color: HeadingColor,
	},
	styleRole: {
		Bold: true,
		Size: BodySize,
	},
	styleMeta: {
		Italic: true,
		Size:   BodySize,
	},
	styleBody: {
		Size: BodySize,
	},
	styleBullet: {
		Size: BodySize,
	},
}
