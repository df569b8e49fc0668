// Package emailpref defines the email notification categories a user can subscribe to and
// which of them a given user is eligible to manage.
package emailpref

// Gate names the eligibility flag a group depends on.
type Gate int

const (
	// GateNone marks a general group shown to every user.
	GateNone Gate = iota
	// GateSponsor requires membership of a sponsor.
	GateSponsor
	// GateTalent requires a completed talent profile.
	GateTalent
)

// Category is one toggleable email notification.
type Category struct {
	ID    string
	Title string
}

// Group is a titled set of categories behind one gate.
type Group struct {
	Title      string
	Gate       Gate
	Categories []Category
}

// Eligibility carries the two independent flags from the user snapshot.
type Eligibility struct {
	Sponsor bool
	Talent  bool
}

// Allows reports whether g is open for e.
func (e Eligibility) Allows(g Gate) bool {
	switch g {
	case GateSponsor:
		return e.Sponsor
	case GateTalent:
		return e.Talent
	default:
		return true
	}
}

var groups = []Group{
	{
		Title: "Sponsor alerts",
		Gate:  GateSponsor,
		Categories: []Category{
			{ID: "submissionSponsor", Title: "New submissions received for your listing"},
			{ID: "commentSponsor", Title: "Comments received on your listing"},
			{ID: "deadlineSponsor", Title: "Deadline related reminders"},
		},
	},
	{
		Title: "Talent alerts",
		Gate:  GateTalent,
		Categories: []Category{
			{ID: "weeklyListingRoundup", Title: "Weekly roundup of new listings"},
			{ID: "createListing", Title: "New listings added for my skills"},
			{ID: "commentOrLikeSubmission", Title: "Likes and comments on my submissions"},
			{ID: "scoutInvite", Title: "Sponsor invitation emails (Scout)"},
		},
	},
	{
		Title: "General alerts",
		Gate:  GateNone,
		Categories: []Category{
			{ID: "replyOrTagComment", Title: "Comment replies and tags"},
			{ID: "productAndNewsletter", Title: "Product updates and newsletters"},
		},
	},
}

var gateByID = func() map[string]Gate {
	m := make(map[string]Gate)
	for _, g := range groups {
		for _, c := range g.Categories {
			m[c.ID] = g.Gate
		}
	}
	return m
}()

// Groups returns every group in display order.
func Groups() []Group {
	out := make([]Group, len(groups))
	copy(out, groups)
	return out
}

// VisibleGroups returns the groups e may manage, in display order.
func VisibleGroups(e Eligibility) []Group {
	var out []Group
	for _, g := range groups {
		if e.Allows(g.Gate) {
			out = append(out, g)
		}
	}
	return out
}

// Known reports whether id is a catalogued category.
func Known(id string) bool {
	_, ok := gateByID[id]
	return ok
}

// Visible reports whether id is a known category that e may manage.
func Visible(e Eligibility, id string) bool {
	gate, ok := gateByID[id]
	return ok && e.Allows(gate)
}

// Merge applies a subscription update. Within the categories e may manage, the result is
// exactly requested; categories outside e's reach keep their current state. Order follows
// current, then requested, without duplicates.
func Merge(e Eligibility, current, requested []string) []string {
	want := make(map[string]bool, len(requested))
	for _, id := range requested {
		if Visible(e, id) {
			want[id] = true
		}
	}
	seen := make(map[string]bool)
	out := make([]string, 0, len(current)+len(requested))
	for _, id := range current {
		if seen[id] {
			continue
		}
		if Visible(e, id) && !want[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	for _, id := range requested {
		if want[id] && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
