package growthtree

// refIndex maps tree-activity ids to real activity ids. It is rebuilt from
// a single batched query per load, so node resolution never goes N+1.
type refIndex map[string]string

func newRefIndex(refs []TreeActivityRef) refIndex {
	idx := make(refIndex, len(refs))
	for _, ref := range refs {
		if ref.RealActivityID != "" {
			idx[ref.ID] = ref.RealActivityID
		}
	}
	return idx
}

// treeActivityIDs collects the tree-activity ids referenced by the given
// nodes, in document order.
func treeActivityIDs(nodes []LearningNode) []string {
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if n.IsActivity() && n.TreeActivityID != "" {
			ids = append(ids, n.TreeActivityID)
		}
	}
	return ids
}

// resolveNodes fills in each activity node's real activity id from the
// index. An activity that cannot be resolved keeps an empty id and will
// always read as "to do".
func resolveNodes(nodes []LearningNode, refs refIndex) {
	for i := range nodes {
		if !nodes[i].IsActivity() || nodes[i].TreeActivityID == "" {
			continue
		}
		nodes[i].RealActivityID = refs[nodes[i].TreeActivityID]
	}
}

// realActivityIDs collects the resolved activity ids of the given nodes.
func realActivityIDs(nodes []LearningNode) []string {
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if n.RealActivityID != "" {
			ids = append(ids, n.RealActivityID)
		}
	}
	return ids
}

// recordsByActivity groups a student's records by canonical activity id.
func recordsByActivity(recs []StudentActivityRecord) map[string][]StudentActivityRecord {
	byActivity := make(map[string][]StudentActivityRecord, len(recs))
	for _, rec := range recs {
		byActivity[rec.ActivityID] = append(byActivity[rec.ActivityID], rec)
	}
	return byActivity
}

// aggregate reduces all of a student's records for one activity:
// completed iff there is at least one record and all are completed;
// in progress iff any record is in progress and not all are completed.
func aggregate(recs []StudentActivityRecord) (completed, inProgress bool) {
	if len(recs) == 0 {
		return false, false
	}
	completed = true
	for _, rec := range recs {
		if rec.Status != StatusCompleted {
			completed = false
		}
		if rec.Status == StatusInProgress {
			inProgress = true
		}
	}
	if completed {
		inProgress = false
	}
	return completed, inProgress
}

// annotate recomputes each node's per-student statuses from the student's
// activity records. Start/end nodes are structural and read as passed.
// Prerequisite gating is not enforced, so nothing is ever locked.
func annotate(nodes []LearningNode, recs []StudentActivityRecord) {
	byActivity := recordsByActivity(recs)
	for i := range nodes {
		n := &nodes[i]
		n.Locked = false
		if !n.IsActivity() {
			n.Completed = true
			n.InProgress = false
			continue
		}
		if n.RealActivityID == "" {
			n.Completed = false
			n.InProgress = false
			continue
		}
		n.Completed, n.InProgress = aggregate(byActivity[n.RealActivityID])
	}
}

// inProgressSet indexes the activity ids that currently have an in-progress
// record, driving the no-double-offer rule.
func inProgressSet(recs []StudentActivityRecord) map[string]bool {
	set := make(map[string]bool)
	for _, rec := range recs {
		if rec.Status == StatusInProgress {
			set[rec.ActivityID] = true
		}
	}
	return set
}
