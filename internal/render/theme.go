package render

// Theme holds colors for graph rendering.
type Theme struct {
	Background string
	NodeFill   string
	NodeBorder string
	TextColor  string

	// Edge colors by control-flow kind.
	EdgeTaken       string // conditional branch taken
	EdgeFallthrough string // conditional branch not taken
	EdgeSwitch      string // switch case or default
	EdgeCatch       string // into an exception handler
	EdgeDirect      string // goto or plain fallthrough

	// Node accents.
	TermFill     string // blocks ending in return or athrow
	InjectedFill string // blocks holding woven code
	InjectedText string

	// Patch strategy colors.
	StrategyReplace  string
	StrategyWrap     string
	StrategyRedirect string
	StrategyInject   string

	// Cluster styling.
	ClusterBorder string // subgraph cluster border
	ClusterLabel  string // subgraph cluster label text
}

// NASA is the NASA/Bauhaus theme: geometric, monochrome, sparse color.
var NASA = Theme{
	Background: "#F5F5F5",
	NodeFill:   "white",
	NodeBorder: "#1A1A1A",
	TextColor:  "#1A1A1A",

	EdgeTaken:       "#0B3D91", // NASA blue
	EdgeFallthrough: "#FC3D21", // NASA red
	EdgeSwitch:      "#00695C", // teal
	EdgeCatch:       "#E65100", // deep orange
	EdgeDirect:      "#424242", // dark gray

	TermFill:     "#ECEFF1", // blue-gray 50
	InjectedFill: "#FFF3E0", // orange 50
	InjectedText: "#E65100",

	StrategyReplace:  "#FC3D21",
	StrategyWrap:     "#0B3D91",
	StrategyRedirect: "#00695C",
	StrategyInject:   "#E65100",

	ClusterBorder: "#BDBDBD",
	ClusterLabel:  "#757575",
}
