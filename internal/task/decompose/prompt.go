// Package decompose turns a task into a structured plan with the help of an
// LLM: it builds the request prompt, cleans the model's reply and parses it,
// substituting a deterministic plan whenever the reply cannot be used.
package decompose

import (
	"fmt"
	"strings"
)

const outputFormat = `{
  "task": {
    "title": "Task title",
    "priority": "medium",
    "deadline": "2025-01-15"
  },
  "subtasks": [
    {"text": "First subtask"},
    {"text": "Second subtask"}
  ]
}`

// BuildPrompt returns the instruction block asking the model to decompose a new task
func BuildPrompt(title, priority, deadline, notes string) string {
	var b strings.Builder
	b.WriteString("You are an AI assistant that breaks complex tasks into actionable steps. ")
	b.WriteString("Analyse the user's task and answer strictly in JSON.\n\n")
	writeRequirements(&b)
	b.WriteString("\nTASK TO ANALYSE:\n")
	writeTaskContext(&b, title, priority, deadline, notes)
	return b.String()
}

// BuildOptimizePrompt asks the model to improve an existing task's plan.
// The current subtasks are listed so the model can restructure them.
func BuildOptimizePrompt(title, priority, deadline, notes string, currentSubtasks []string) string {
	var b strings.Builder
	b.WriteString("You are an AI assistant that optimizes task plans. ")
	b.WriteString("Review the user's existing task and propose an improved plan, answering strictly in JSON.\n\n")
	writeRequirements(&b)
	b.WriteString("\nTASK TO OPTIMIZE:\n")
	writeTaskContext(&b, title, priority, deadline, notes)
	if len(currentSubtasks) > 0 {
		b.WriteString("Current subtasks:\n")
		for _, s := range currentSubtasks {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}
	return b.String()
}

func writeRequirements(b *strings.Builder) {
	b.WriteString("REQUIREMENTS:\n")
	b.WriteString("1. priority: classify as low, medium or high based on the estimated amount of work.\n")
	b.WriteString("2. deadline: propose a realistic date in YYYY-MM-DD format.\n")
	b.WriteString("3. subtasks: split the task into 3-8 concrete steps, each completable in 2-4 hours.\n\n")
	b.WriteString("IMPORTANT: return ONLY the JSON object, with no explanations, comments or code fences.\n")
	b.WriteString("Response format (strict JSON):\n")
	b.WriteString(outputFormat)
	b.WriteString("\n")
}

func writeTaskContext(b *strings.Builder, title, priority, deadline, notes string) {
	b.WriteString(title)
	b.WriteString("\n")
	if priority != "" {
		fmt.Fprintf(b, "Priority suggested by the user: %s\n", priority)
	}
	if deadline != "" {
		fmt.Fprintf(b, "Deadline suggested by the user: %s\n", deadline)
	}
	if notes != "" {
		fmt.Fprintf(b, "Additional notes: %s\n", notes)
	}
}
