package growthtree

// progressOf summarizes completion over the activity nodes of a path.
// Start/end nodes are structural and never count.
func progressOf(nodes []LearningNode) Progress {
	var p Progress
	for _, n := range nodes {
		if !n.IsActivity() {
			continue
		}
		p.Total++
		if n.Completed {
			p.Completed++
		}
	}
	if p.Total > 0 {
		p.Percentage = int(float64(p.Completed)/float64(p.Total)*100 + 0.5)
	}
	return p
}

// selectNext finds the single activity to offer next: the first incomplete,
// unlocked activity node in document order whose resolved activity is not
// already in progress for the student. nil means there is nothing new to
// offer — either the path is fully completed or every remaining activity
// is already in progress.
func selectNext(nodes []LearningNode, inProgress map[string]bool) *NextActivity {
	progress := progressOf(nodes)

	for _, n := range nodes {
		if !n.IsActivity() || n.Completed || n.Locked {
			continue
		}
		if n.RealActivityID != "" && inProgress[n.RealActivityID] {
			continue
		}
		return &NextActivity{
			Title:          n.Title,
			Description:    n.Description,
			Duration:       n.Duration,
			Kind:           n.Kind,
			ActualID:       n.TreeActivityID,
			RealActivityID: n.RealActivityID,
			Progress:       progress,
		}
	}
	return nil
}
