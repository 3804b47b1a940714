package robots

// selectGroup picks the group governing agent: the first group that names
// the agent explicitly, otherwise the default group. "*" groups are skipped
// during the scan so that a specific group declared after a wildcard group
// still wins. The iterator is closed on return.
func selectGroup(groups *GroupIterator, agent string) *RuleGroup {
	defer groups.Close()
	for groups.Next() {
		group := groups.Group()
		if group.matchesName(agent) {
			return group
		}
	}
	return groups.Default()
}
