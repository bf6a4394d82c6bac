package vis

type nodeColor struct {
	Background string `json:"background"`
	Border     string `json:"border"`
}

type nodeFont struct {
	Color string `json:"color"`
}

type nodeData struct {
	ID               int       `json:"id"`
	Label            string    `json:"label"`
	Title            string    `json:"title"`
	X                float64   `json:"x"`
	Y                float64   `json:"y"`
	Shape            string    `json:"shape"`
	WidthConstraint  float64   `json:"widthConstraint"`
	HeightConstraint float64   `json:"heightConstraint"`
	Color            nodeColor `json:"color"`
	Font             nodeFont  `json:"font"`
}

type node struct {
	Type string   `json:"type"` // always "node"
	Data nodeData `json:"data"`
}

func newNode() node {
	return node{Type: "node"}
}

type edgeColor struct {
	Color string `json:"color"`
}

type edgeData struct {
	ID    int       `json:"id"`
	From  int       `json:"from"`
	To    int       `json:"to"`
	Width float64   `json:"width"`
	Title string    `json:"title"`
	Color edgeColor `json:"color"`
}

type edge struct {
	Type string   `json:"type"` // always "edge"
	Data edgeData `json:"data"`
}

func newEdge() edge {
	return edge{Type: "edge"}
}
