package sim

import "sort"

// RouteRule is one probabilistic forwarding edge between two nodes.
type RouteRule struct {
	Source      string
	Target      string
	Probability float64
}

// routeEntry is a compiled rule; cum is the cumulative probability up to and
// including this entry's share.
type routeEntry struct {
	target string
	cum    float64
}

// RoutingTable resolves where a customer goes after finishing service.
// Rules are grouped by source, sorted ascending by probability, and folded
// into cumulative thresholds once at construction. A source whose rules sum
// below 1.0 sends the residual mass out of the network.
type RoutingTable struct {
	entries map[string][]routeEntry
}

// NewRoutingTable compiles routing rules. The sort is stable, so rules with
// equal probability keep their declaration order.
func NewRoutingTable(rules []RouteRule) *RoutingTable {
	grouped := make(map[string][]RouteRule)
	for _, r := range rules {
		grouped[r.Source] = append(grouped[r.Source], r)
	}
	t := &RoutingTable{entries: make(map[string][]routeEntry, len(grouped))}
	for source, rs := range grouped {
		sort.SliceStable(rs, func(i, j int) bool {
			return rs[i].Probability < rs[j].Probability
		})
		cum := 0.0
		compiled := make([]routeEntry, 0, len(rs))
		for _, r := range rs {
			cum += r.Probability
			compiled = append(compiled, routeEntry{target: r.Target, cum: cum})
		}
		t.entries[source] = compiled
	}
	return t
}

// Pick resolves the destination for a customer leaving source. A source with
// no outgoing rules reports no destination without consuming a deviate.
// Otherwise exactly one deviate u is drawn and the first entry with u < cum
// wins; u at or beyond the total mass means the customer exits the network.
// The comparison is strictly less-than: a deviate exactly on a boundary
// selects the next entry.
func (t *RoutingTable) Pick(source string, src DeviateSource) (string, bool, error) {
	entries := t.entries[source]
	if len(entries) == 0 {
		return "", false, nil
	}
	u, err := src.Next()
	if err != nil {
		return "", false, err
	}
	for _, e := range entries {
		if u < e.cum {
			return e.target, true, nil
		}
	}
	return "", false, nil
}
