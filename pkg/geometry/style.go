package geometry

import (
	"fmt"

	"github.com/vanderheijden86/planetarium/pkg/model"
)

// Style is the per-type visual treatment of a connection. Colors are hex
// strings so SVG, PNG and terminal renderers can each convert once.
type Style struct {
	Color string
	Width float64
	Dash  bool
	Glow  bool
}

// connectionStyles is the complete style table. Exactly one entry per
// connection type; there is deliberately no default entry.
var connectionStyles = map[model.ConnectionType]Style{
	model.ConnectionHierarchy:     {Color: "#ffd700", Width: 2.5, Dash: false, Glow: true},
	model.ConnectionCollaboration: {Color: "#00ff88", Width: 1.8, Dash: true, Glow: false},
	model.ConnectionInformation:   {Color: "#00bfff", Width: 1.5, Dash: true, Glow: false},
}

// StyleFor returns the fixed style for a connection type. An unknown type
// is a contract violation and fails with ErrUnknownConnectionType rather
// than silently defaulting.
func StyleFor(typ model.ConnectionType) (Style, error) {
	style, ok := connectionStyles[typ]
	if !ok {
		return Style{}, fmt.Errorf("%w: %q", model.ErrUnknownConnectionType, typ)
	}
	return style, nil
}
