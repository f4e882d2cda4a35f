package slack

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/macrat/cfmon/internal/cloudflare"
	"github.com/macrat/cfmon/internal/region"
)

// DefaultGroups is the region groups shown in the summary.
// The names must match the group components of the Cloudflare status page.
var DefaultGroups = []string{
	"Africa",
	"Asia",
	"Europe",
	"Latin America & the Caribbean",
}

// Labels of statuses in the summary.
// Cloudflare reports re-routed data-centers as partial_outage, and partially re-routed ones as under_maintenance.
const (
	LabelReRouted          = "Re-routed"
	LabelPartiallyReRouted = "Partially Re-routed"
)

// GroupIssues is the re-routed regions in a group.
type GroupIssues struct {
	Group             string
	ReRouted          []string
	PartiallyReRouted []string
}

// Empty reports whether the group has no issues.
func (g GroupIssues) Empty() bool {
	return len(g.ReRouted) == 0 && len(g.PartiallyReRouted) == 0
}

// Summarize collects re-routed regions of each group.
// The result is in the same order as groups, and region names are sorted.
func Summarize(components []cloudflare.Component, groups []string) []GroupIssues {
	members := cloudflare.Groups(components, groups)

	result := make([]GroupIssues, 0, len(groups))
	for _, g := range groups {
		gi := GroupIssues{Group: g}

		for _, c := range members[g] {
			switch c.Status {
			case region.StatusPartialOutage:
				gi.ReRouted = append(gi.ReRouted, c.Name)
			case region.StatusUnderMaintenance:
				gi.PartiallyReRouted = append(gi.PartiallyReRouted, c.Name)
			}
		}

		sort.Strings(gi.ReRouted)
		sort.Strings(gi.PartiallyReRouted)
		result = append(result, gi)
	}

	return result
}

func listSection(label string, names []string) string {
	if len(names) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*%s* (%d)\n", label, len(names))
	for _, n := range names {
		fmt.Fprintf(&b, "• %s\n", n)
	}
	return b.String()
}

// BuildMessage makes the Slack message of the summary.
func BuildMessage(issues []GroupIssues, at time.Time) Message {
	blocks := []Block{
		{Type: "header", Text: &Text{Type: "plain_text", Text: "🌍 Cloudflare Reroute Snapshot", Emoji: true}},
		{Type: "divider"},
	}

	hasIssue := false
	for _, gi := range issues {
		if gi.Empty() {
			continue
		}
		hasIssue = true

		text := fmt.Sprintf("*%s*\n", gi.Group) +
			listSection(LabelReRouted, gi.ReRouted) +
			listSection(LabelPartiallyReRouted, gi.PartiallyReRouted)

		blocks = append(blocks, Block{
			Type: "section",
			Text: &Text{Type: "mrkdwn", Text: strings.TrimRight(text, "\n")},
		})
	}

	fallback := "Cloudflare reroute snapshot"
	if !hasIssue {
		blocks = append(blocks, Block{
			Type: "section",
			Text: &Text{Type: "mrkdwn", Text: "✅ No *Re-routed* or *Partially Re-routed* regions right now.\nAll monitored regions are operational."},
		})
		fallback += ": all monitored regions are operational"
	}

	blocks = append(blocks, Block{
		Type: "context",
		Elements: []Text{
			{Type: "mrkdwn", Text: fmt.Sprintf("Source: <https://www.cloudflarestatus.com|cloudflarestatus.com> • %s", at.UTC().Format("2006-01-02 15:04 MST"))},
		},
	})

	return Message{Text: fallback, Blocks: blocks}
}
