package causality

import "FCCMonitorAPI/internal/models"

type frame struct {
	causes []Link
	next   int
}

// FindCausalChain returns the links leading into target, followed depth-first by
// the links leading into each cause.
//
// A tag is expanded at most once per call. Its incoming links are recorded when it
// is expanded, and a cause reached a second time is not expanded again, so on
// diamond-shaped graphs only the first path discovered is walked below the shared
// node. Unknown targets yield an empty chain.
func FindCausalChain(g Graph, target string) []Link {
	chain := []Link{}
	visited := map[string]bool{target: true}

	root := directCauses(g, target)
	chain = append(chain, root...)
	stack := []*frame{{causes: root}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next >= len(top.causes) {
			stack = stack[:len(stack)-1]
			continue
		}

		from := top.causes[top.next].From
		top.next++
		if visited[from] {
			continue
		}
		visited[from] = true

		causes := directCauses(g, from)
		chain = append(chain, causes...)
		stack = append(stack, &frame{causes: causes})
	}

	return chain
}

func directCauses(g Graph, target string) []Link {
	var causes []Link
	for _, l := range g.Links {
		if l.To == target {
			causes = append(causes, l)
		}
	}
	return causes
}

// UpstreamTags lists the distinct cause tags of a chain in discovery order.
func UpstreamTags(chain []Link) []string {
	seen := make(map[string]bool, len(chain))
	tags := make([]string, 0, len(chain))
	for _, l := range chain {
		if !seen[l.From] {
			seen[l.From] = true
			tags = append(tags, l.From)
		}
	}
	return tags
}

// IsCriticalLink reports whether the cause side of a link is currently out of its normal band.
func IsCriticalLink(link Link, tags map[string]models.Tag) bool {
	tag, ok := tags[link.From]
	if !ok {
		return false
	}
	return tag.Status == models.StatusWarning || tag.Status == models.StatusAlarm
}
