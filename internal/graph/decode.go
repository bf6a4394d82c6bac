package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Counts and values are capped at 1e9 so rounding them to int cannot
// overflow.
type wireNode struct {
	ID    json.RawMessage `json:"id"`
	Value *float64        `json:"value" validate:"omitempty,gte=0,lte=1000000000"`
	Count *float64        `json:"count" validate:"omitempty,gte=0,lte=1000000000"`
	Color string          `json:"color"`
}

type wireLink struct {
	Source    *Endpoint `json:"source" validate:"required"`
	Target    *Endpoint `json:"target" validate:"required"`
	Count     *float64  `json:"count" validate:"omitempty,gte=1,lte=1000000000"`
	Sentiment *float64  `json:"sentiment_score" validate:"omitempty,gte=-1,lte=1"`
	Color     string    `json:"color"`
	Width     *float64  `json:"width" validate:"omitempty,gte=0"`
}

// Decode reads a {nodes, links} payload from r.
func Decode(r io.Reader) (*Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return Parse(data)
}

// Parse validates and converts a {nodes, links} payload. Links that reference
// ids missing from nodes are accepted; see Graph.Resolve.
func Parse(data []byte) (*Graph, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil || top == nil {
		return nil, invalid("", "payload is not a JSON object")
	}

	rawNodes, err := array(top, "nodes")
	if err != nil {
		return nil, err
	}
	rawLinks, err := array(top, "links")
	if err != nil {
		return nil, err
	}

	nodes := make([]*Node, 0, len(rawNodes))
	seen := make(map[string]struct{}, len(rawNodes))
	for i, raw := range rawNodes {
		field := fmt.Sprintf("nodes[%d]", i)
		n, err := parseNode(field, raw)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[n.ID]; dup {
			return nil, invalid(field+".id", "duplicate id %q", n.ID)
		}
		seen[n.ID] = struct{}{}
		nodes = append(nodes, n)
	}

	links := make([]*Link, 0, len(rawLinks))
	for i, raw := range rawLinks {
		l, err := parseLink(fmt.Sprintf("links[%d]", i), raw)
		if err != nil {
			return nil, err
		}
		links = append(links, l)
	}

	return New(nodes, links), nil
}

func array(top map[string]json.RawMessage, key string) ([]json.RawMessage, error) {
	raw, ok := top[key]
	if !ok {
		return nil, invalid(key, "missing")
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, invalid(key, "not an array")
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, invalid(key, "%v", err)
	}
	return items, nil
}

func parseNode(field string, raw json.RawMessage) (*Node, error) {
	var w wireNode
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, invalid(field, "%v", err)
	}
	if err := validate.Struct(w); err != nil {
		return nil, fromValidator(field, err)
	}
	id, err := parseID(w.ID)
	if err != nil {
		return nil, invalid(field+".id", "%v", err)
	}

	n := &Node{ID: id, Color: w.Color}
	switch {
	case w.Count != nil:
		n.Value = int(math.Round(*w.Count))
	case w.Value != nil:
		n.Value = int(math.Round(*w.Value))
	}
	return n, nil
}

func parseID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", errors.New("required")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return "", errors.New("empty")
		}
		return s, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return "", errors.New("must be a string or a number")
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}

func parseLink(field string, raw json.RawMessage) (*Link, error) {
	var w wireLink
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, invalid(field, "%v", err)
	}
	if err := validate.Struct(w); err != nil {
		return nil, fromValidator(field, err)
	}
	if w.Source.ID() == "" {
		return nil, invalid(field+".source", "empty id")
	}
	if w.Target.ID() == "" {
		return nil, invalid(field+".target", "empty id")
	}

	l := &Link{
		Source:    *w.Source,
		Target:    *w.Target,
		Count:     1,
		Sentiment: w.Sentiment,
		Color:     w.Color,
		Width:     w.Width,
	}
	if w.Count != nil {
		l.Count = int(math.Round(*w.Count))
	}
	return l, nil
}

func fromValidator(field string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		reason := fe.Tag()
		if fe.Param() != "" {
			reason += "=" + fe.Param()
		}
		return invalid(field+"."+jsonName(fe.StructField()), "%s", reason)
	}
	return invalid(field, "%v", err)
}

func jsonName(structField string) string {
	switch structField {
	case "Sentiment":
		return "sentiment_score"
	default:
		if structField == "" {
			return structField
		}
		return string(bytes.ToLower([]byte(structField[:1]))) + structField[1:]
	}
}
