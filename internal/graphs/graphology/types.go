package graphology

type NodeAttributes struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Size  float64 `json:"size"`
	Label string  `json:"label"`
	Color string  `json:"color"`

	// Width and Height are the drawn box in layout units.
	Width        float64  `json:"width"`
	Height       float64  `json:"height"`
	Appearances  int      `json:"appearances"`
	Interactions int      `json:"interactions"`
	Sentiment    *float64 `json:"sentiment"`
}

type Node struct {
	Key        string         `json:"key"`
	Attributes NodeAttributes `json:"attributes"`
}

type EdgeAttributes struct {
	Size      float64  `json:"size"`
	Color     string   `json:"color"`
	Count     int      `json:"count"`
	Sentiment *float64 `json:"sentiment"`
}

type Edge struct {
	Key        string         `json:"key"`
	Source     string         `json:"source"`
	Target     string         `json:"target"`
	Undirected bool           `json:"undirected"`
	Attributes EdgeAttributes `json:"attributes"`
}

type Options struct {
	Type           string `json:"type"`
	Multi          bool   `json:"multi"`
	AllowSelfLoops bool   `json:"allowSelfLoops"`
}

type SerializedGraph struct {
	Options Options `json:"options"`
	Nodes   []Node  `json:"nodes"`
	Edges   []Edge  `json:"edges"`
}
