package models

import "sort"

// xpPerLevel is the bucket size of the level curve: every full 1000 XP
// advances one level, starting at level 1.
const xpPerLevel = 1000

// LevelForXP derives the level from cumulative XP.
func LevelForXP(xp int) int {
	level := xp/xpPerLevel + 1
	if level < 1 {
		level = 1
	}
	return level
}

// RankThreshold maps a minimum XP to a rank label.
type RankThreshold struct {
	MinXP int    `json:"min_xp"`
	Label string `json:"label"`
}

// RankTable is a sorted list of thresholds evaluated by finding the greatest
// MinXP that does not exceed the given XP. The table is a configuration
// concern; DefaultRankTable only supplies placeholders.
type RankTable []RankThreshold

// DefaultRankTable returns the built-in thresholds used when the config file
// does not override them.
func DefaultRankTable() RankTable {
	return RankTable{
		{MinXP: 0, Label: "Bronce"},
		{MinXP: 1000, Label: "Plata"},
		{MinXP: 5000, Label: "Oro"},
		{MinXP: 10000, Label: "Platino"},
		{MinXP: 20000, Label: "Diamante"},
	}
}

// Normalize sorts the table by MinXP ascending. Tables loaded from config go
// through this once so RankFor can binary search.
func (t RankTable) Normalize() RankTable {
	sorted := make(RankTable, len(t))
	copy(sorted, t)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinXP < sorted[j].MinXP })
	return sorted
}

// RankFor returns the label of the greatest threshold not exceeding xp.
// An empty table or an xp below the first threshold yields the first label
// (or "" for an empty table).
func (t RankTable) RankFor(xp int) string {
	if len(t) == 0 {
		return ""
	}
	idx := sort.Search(len(t), func(i int) bool { return t[i].MinXP > xp })
	if idx == 0 {
		return t[0].Label
	}
	return t[idx-1].Label
}
