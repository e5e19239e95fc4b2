package camera

import (
	"strings"
	"time"

	kerrors "github.com/matzehuels/kinfolk/pkg/errors"
	"github.com/matzehuels/kinfolk/pkg/layout"
)

// MinSearchRunes is the shortest query the tree search runs.
const MinSearchRunes = 2

// Search returns the nodes whose display or full name contains q,
// case-insensitively, in layout order. The query is trimmed first; queries
// shorter than [MinSearchRunes] match nothing.
func Search(nodes []layout.Node, q string) []layout.Node {
	q, err := kerrors.ValidateSearchQuery(q, MinSearchRunes)
	if err != nil {
		return nil
	}
	var out []layout.Node
	for _, n := range nodes {
		if strings.Contains(strings.ToLower(n.Name), q) || strings.Contains(strings.ToLower(n.FullName), q) {
			out = append(out, n)
		}
	}
	return out
}

// FlyToNode starts a fly-to animation towards n.
func (c *Controller) FlyToNode(n layout.Node, now time.Time) {
	c.FlyTo(n.ID, n.X, n.Y, now)
}
