package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDeadline(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2025-03-10", "2025-03-10", true},
		{"2025-03-10T14:00:00Z", "2025-03-10", true},
		{"2025-03-10T14:00:00.000Z", "2025-03-10", true},
		{"2025-03-10T14:00:00", "2025-03-10", true},
		{"2025-03-10 14:00:00", "2025-03-10", true},
		{"next friday", "next friday", false},
	}
	for _, tc := range cases {
		got, ok := NormalizeDeadline(tc.in)
		assert.Equal(t, tc.want, got, tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
	}
}

func TestParsePriority(t *testing.T) {
	assert.Equal(t, PriorityHigh, ParsePriority("high"))
	assert.Equal(t, PriorityLow, ParsePriority("low"))
	assert.Equal(t, PriorityMedium, ParsePriority("HIGH"))
	assert.Equal(t, PriorityMedium, ParsePriority(""))
	assert.False(t, IsValidPriority("urgent"))
	assert.True(t, IsValidPriority("medium"))
}

func TestNewTaskView_CountsSubtasks(t *testing.T) {
	empty := NewTaskView(&Task{Title: "x"})
	assert.NotNil(t, empty.Subtasks)
	assert.Equal(t, 0, empty.SubtasksCount)

	v := NewTaskView(&Task{Subtasks: []Subtask{{Completed: true}, {}, {Completed: true}}})
	assert.Equal(t, 3, v.SubtasksCount)
	assert.Equal(t, 2, v.CompletedSubtasks)
}
