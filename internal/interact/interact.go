// Package interact tracks what the pointer is hovering and answers the
// highlight questions the renderer asks every frame.
package interact

import (
	"fmt"

	"github.com/psidex/chargraph/internal/graph"
	"github.com/psidex/chargraph/internal/render"
	"github.com/psidex/chargraph/internal/sentiment"
	"github.com/psidex/chargraph/internal/stats"
)

type Kind int

const (
	None Kind = iota
	HoveredNode
	HoveredLink
)

// Context is the current highlight focus. At most one of NodeID and Link is
// set, matching Kind.
type Context struct {
	Kind   Kind
	NodeID string
	Link   *graph.Link
}

// Controller holds the highlight context. Events are applied by the frame
// loop only, so it needs no locking; the last event before a paint wins.
type Controller struct {
	ctx Context
}

func NewController() *Controller {
	return &Controller{}
}

func (c *Controller) Context() Context {
	return c.ctx
}

// EnterNode focuses a node and drops any hovered link.
func (c *Controller) EnterNode(id string) {
	c.ctx = Context{Kind: HoveredNode, NodeID: id}
}

// LeaveNode clears the context only if id is the hovered node.
func (c *Controller) LeaveNode(id string) {
	if c.ctx.Kind == HoveredNode && c.ctx.NodeID == id {
		c.ctx = Context{}
	}
}

// EnterLink focuses a link and drops any hovered node.
func (c *Controller) EnterLink(l *graph.Link) {
	if l == nil {
		return
	}
	c.ctx = Context{Kind: HoveredLink, Link: l}
}

// LeaveLink clears the context only if l is the hovered link.
func (c *Controller) LeaveLink(l *graph.Link) {
	if c.ctx.Kind == HoveredLink && c.ctx.Link == l {
		c.ctx = Context{}
	}
}

func (c *Controller) Reset() {
	c.ctx = Context{}
}

// Pointer turns a pick result into leave and enter events. It reports
// whether the context changed.
func (c *Controller) Pointer(t render.Target) bool {
	before := c.ctx
	switch {
	case t.Node != nil:
		if before.Kind != HoveredNode || before.NodeID != t.Node.ID {
			c.leaveCurrent()
			c.EnterNode(t.Node.ID)
		}
	case t.Link != nil:
		if before.Kind != HoveredLink || before.Link != t.Link {
			c.leaveCurrent()
			c.EnterLink(t.Link)
		}
	default:
		c.leaveCurrent()
	}
	return c.ctx != before
}

func (c *Controller) leaveCurrent() {
	switch c.ctx.Kind {
	case HoveredNode:
		c.LeaveNode(c.ctx.NodeID)
	case HoveredLink:
		c.LeaveLink(c.ctx.Link)
	}
}

// IsLinkHighlighted is true for the hovered link and for every link touching
// the hovered node.
func (c *Controller) IsLinkHighlighted(l *graph.Link) bool {
	switch c.ctx.Kind {
	case HoveredLink:
		return l == c.ctx.Link
	case HoveredNode:
		return l.Source.ID() == c.ctx.NodeID || l.Target.ID() == c.ctx.NodeID
	}
	return false
}

// IsNodeHighlighted is true for the hovered node and for both endpoints of
// the hovered link.
func (c *Controller) IsNodeHighlighted(id string) bool {
	switch c.ctx.Kind {
	case HoveredNode:
		return id == c.ctx.NodeID
	case HoveredLink:
		return id == c.ctx.Link.Source.ID() || id == c.ctx.Link.Target.ID()
	}
	return false
}

// OutlineScore is the hovered link's score for its endpoints, and the node's
// own average otherwise.
func (c *Controller) OutlineScore(id string, avg *float64) *float64 {
	if c.ctx.Kind == HoveredLink && (id == c.ctx.Link.Source.ID() || id == c.ctx.Link.Target.ID()) {
		return c.ctx.Link.Sentiment
	}
	return avg
}

// Tooltip describes the hovered target, or returns "" when nothing is hovered.
func (c *Controller) Tooltip(res stats.Result) string {
	switch c.ctx.Kind {
	case HoveredNode:
		id := c.ctx.NodeID
		return fmt.Sprintf("%s\ninteractions: %d\nsentiment: %s",
			id, res.InteractionsOf[id], sentiment.LabelFor(res.AvgSentimentOf[id]))
	case HoveredLink:
		l := c.ctx.Link
		return fmt.Sprintf("%s – %s\ncount: %d\nsentiment: %s",
			l.Source.ID(), l.Target.ID(), l.Count, sentiment.LabelFor(l.Sentiment))
	}
	return ""
}
