package domain

import (
	"reflect"
	"testing"
)

func TestProjectBoardFiltersBySelectedProject(t *testing.T) {
	t1 := Task{ID: "t1", Status: StatusTodo, ProjectID: "p1"}
	t2 := Task{ID: "t2", Status: StatusDone, ProjectID: "p2"}

	board := ProjectBoard([]Task{t1, t2}, "p1")

	want := map[TaskStatus][]Task{
		StatusTodo:       {t1},
		StatusInProgress: {},
		StatusDone:       {},
		StatusBlocked:    {},
		StatusCancelled:  {},
	}
	if !reflect.DeepEqual(board, want) {
		t.Fatalf("unexpected board: %#v", board)
	}
}

func TestProjectBoardNoSelectionIncludesAllTasks(t *testing.T) {
	tasks := []Task{
		{ID: "t1", Status: StatusTodo, ProjectID: "p1"},
		{ID: "t2", Status: StatusDone, ProjectID: "p2"},
		{ID: "t3", Status: StatusDone},
	}

	board := ProjectBoard(tasks, "")

	total := 0
	for _, bucket := range board {
		total += len(bucket)
	}
	if total != len(tasks) {
		t.Fatalf("expected %d tasks across buckets, got %d", len(tasks), total)
	}
	if !reflect.DeepEqual(board[StatusDone], []Task{tasks[1], tasks[2]}) {
		t.Fatalf("unexpected done bucket: %#v", board[StatusDone])
	}
}

func TestProjectBoardPartition(t *testing.T) {
	tasks := []Task{
		{ID: "a", Status: StatusTodo},
		{ID: "b", Status: StatusInProgress},
		{ID: "c", Status: StatusDone},
		{ID: "d", Status: StatusBlocked},
		{ID: "e", Status: StatusCancelled},
		{ID: "f", Status: StatusTodo},
	}

	board := ProjectBoard(tasks, "")

	if len(board) != len(TaskStatuses) {
		t.Fatalf("expected %d buckets, got %d", len(TaskStatuses), len(board))
	}
	seen := map[string]int{}
	for status, bucket := range board {
		for _, task := range bucket {
			if task.Status != status {
				t.Fatalf("task %s with status %s landed in bucket %s", task.ID, task.Status, status)
			}
			seen[task.ID]++
		}
	}
	for _, task := range tasks {
		if seen[task.ID] != 1 {
			t.Fatalf("task %s appears %d times", task.ID, seen[task.ID])
		}
	}
}

func TestProjectBoardAlwaysHasEveryBucket(t *testing.T) {
	board := ProjectBoard(nil, "")
	for _, s := range TaskStatuses {
		bucket, ok := board[s]
		if !ok {
			t.Fatalf("missing bucket %s", s)
		}
		if bucket == nil {
			t.Fatalf("bucket %s is nil", s)
		}
	}
}

func TestProjectNameDanglingReference(t *testing.T) {
	projects := []Project{{ID: "p1", Name: "Notes"}}

	if name := ProjectName(projects, Task{ID: "t1", ProjectID: "p-deleted"}); name != "" {
		t.Fatalf("expected dangling reference to degrade to empty name, got %q", name)
	}
	if name := ProjectName(projects, Task{ID: "t2"}); name != "" {
		t.Fatalf("expected empty project id to resolve to empty name, got %q", name)
	}
	if name := ProjectName(projects, Task{ID: "t3", ProjectID: "p1"}); name != "Notes" {
		t.Fatalf("expected Notes, got %q", name)
	}
}
