package domain

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

type MemberLine struct {
	Username string
	Role     Role
}

// Report is a snapshot of a group: members in membership order, messages in
// append order.
type Report struct {
	Name     string
	Creator  string
	Members  []MemberLine
	Messages []Message
}

func (g *Group) ShowInfo() Report {
	creator := ""
	if g.Creator != nil {
		creator = g.Creator.Username
	}
	return Report{
		Name:    g.Name,
		Creator: creator,
		Members: lo.Map(g.Members(), func(m Membership, _ int) MemberLine {
			return MemberLine{Username: m.User.Username, Role: m.Role}
		}),
		Messages: g.Messages(),
	}
}

func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Group %s:\n", r.Name)
	fmt.Fprintf(&b, "Creator: %s\n", r.Creator)
	b.WriteString("Members:\n")
	for _, m := range r.Members {
		fmt.Fprintf(&b, "- %s (%s)\n", m.Username, m.Role)
	}
	b.WriteString("Messages:\n")
	for _, msg := range r.Messages {
		b.WriteString(msg.String())
		b.WriteString("\n")
	}
	return b.String()
}
