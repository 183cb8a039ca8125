package mapview

import "strings"

const (
	IconRed    = "red"
	IconGreen  = "green"
	IconBlue   = "blue"
	IconOrange = "orange"
	IconYellow = "yellow"
	IconViolet = "violet"
)

// SelectionIcon marks the location picked for a new marker.
const SelectionIcon = IconRed

// iconColors buckets the friend palette into the icon set. Several hex
// colours share one icon.
var iconColors = map[string]string{
	"#FF6B6B": IconRed,
	"#4ECDC4": IconGreen,
	"#45B7D1": IconBlue,
	"#FFA07A": IconOrange,
	"#98D8C8": IconGreen,
	"#F7B731": IconYellow,
	"#5F27CD": IconViolet,
	"#00D2D3": IconBlue,
	"#FF9FF3": IconRed,
	"#54A0FF": IconBlue,
	"#48DBFB": IconBlue,
	"#1DD1A1": IconGreen,
	"#F368E0": IconRed,
	"#FF9F43": IconOrange,
	"#00B894": IconGreen,
	"#6C5CE7": IconViolet,
	"#FD79A8": IconRed,
	"#FDCB6E": IconYellow,
	"#74B9FF": IconBlue,
	"#A29BFE": IconViolet,
}

// IconColor quantises a hex colour to a renderable icon. Markers without a
// colour, and colours outside the table, use blue.
func IconColor(hex string) string {
	if c, ok := iconColors[strings.ToUpper(hex)]; ok {
		return c
	}
	return IconBlue
}

func IconURL(icon string) string {
	return "https://raw.githubusercontent.com/pointhi/leaflet-color-markers/master/img/marker-icon-2x-" + icon + ".png"
}
