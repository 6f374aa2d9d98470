package domain

// ProjectBoard groups tasks into one bucket per board column. All five
// buckets are always present, even when empty. A non-empty selectedProjectID
// keeps only tasks whose project_id matches it exactly; an empty selection
// keeps every task. The result is derived fresh from its inputs on every
// call and holds no state of its own.
func ProjectBoard(tasks []Task, selectedProjectID string) map[TaskStatus][]Task {
	board := make(map[TaskStatus][]Task, len(TaskStatuses))
	for _, s := range TaskStatuses {
		board[s] = []Task{}
	}
	for _, t := range tasks {
		if selectedProjectID != "" && t.ProjectID != selectedProjectID {
			continue
		}
		if !t.Status.Valid() {
			continue
		}
		board[t.Status] = append(board[t.Status], t)
	}
	return board
}
