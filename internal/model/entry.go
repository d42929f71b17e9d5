package model

import "strconv"

// Unassigned is the placeholder used for a repo or branch that was never set.
const Unassigned = ""

// Entry is a single row of the times table.
// Repo and Branch are nil for segments opened by "start" before any job.
type Entry struct {
	ID       int64   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Repo     *string `gorm:"column:repo" json:"repo"`
	Branch   *string `gorm:"column:branch" json:"branch"`
	Start    int64   `gorm:"column:time" json:"start"`
	Duration int64   `gorm:"column:duration" json:"duration"`
}

// TableName keeps the table name compatible with existing timesheet databases.
func (Entry) TableName() string {
	return "times"
}

// Identity returns the (repo, branch) pair the entry's time is credited to.
// Missing fields degrade to Unassigned.
func (e Entry) Identity() Identity {
	id := Identity{Repo: Unassigned, Branch: Unassigned}
	if e.Repo != nil {
		id.Repo = *e.Repo
	}
	if e.Branch != nil {
		id.Branch = *e.Branch
	}
	return id
}

// Identity is the (repo, branch) pair time is credited to.
type Identity struct {
	Repo   string `json:"repo"`
	Branch string `json:"branch"`
}

// String formats the identity as "repo"/"branch".
func (id Identity) String() string {
	return strconv.Quote(id.Repo) + "/" + strconv.Quote(id.Branch)
}

// Total is the summed duration of one identity over a report interval.
type Total struct {
	Repo    string `gorm:"column:repo" json:"repo"`
	Branch  string `gorm:"column:branch" json:"branch"`
	Seconds int64  `gorm:"column:total" json:"seconds"`
}
