package prompt

import (
	"fmt"
	"strings"
)

// #region input
// Input bundles everything an instruction block needs.
type Input struct {
	Task       TaskType
	Subject    string // topic, learning item, or question text
	Context    string // formatted retrieval context (FormatContext output)
	HasVideo   bool   // context includes video-sourced material
	Generation GenerationContext
}

// #endregion input

// #region grounding-rules
const groundingRules = `Rules:
- Answer ONLY from the provided context. Never invent facts outside it.
- If the context is insufficient, say so explicitly instead of guessing.`

const videoRule = `- The context includes VIDEO SOURCE material. When you use it, say so literally ("from the video").`

// #endregion grounding-rules

// #region assemble
// Assemble wraps the formatted context with the task's fixed instruction
// block and the caller-supplied generation hints.
func Assemble(in Input) string {
	var b strings.Builder

	b.WriteString(instructionFor(in.Task, in.Subject))
	b.WriteString("\n\n")
	b.WriteString(groundingRules)
	if in.HasVideo {
		b.WriteString("\n")
		b.WriteString(videoRule)
	}

	if hints := generationHints(in.Generation); hints != "" {
		b.WriteString("\n\n")
		b.WriteString(hints)
	}

	b.WriteString("\n\nContext:\n")
	if in.Context == "" {
		b.WriteString("(no study material matched)")
	} else {
		b.WriteString(in.Context)
	}
	return b.String()
}

// #endregion assemble

// #region instructions
func instructionFor(task TaskType, subject string) string {
	switch task {
	case TaskTopicOverview:
		return fmt.Sprintf(
			"You are an exam tutor. Produce a focused, exam-oriented overview of the topic %q as a JSON object {\"overview\", \"keyPoints\": [], \"questionAngles\": [], \"workedExample\"}.", subject)
	case TaskLearnItem:
		return fmt.Sprintf(
			"You are an exam tutor. Teach the learning item %q from the context as a JSON object {\"explanation\", \"whyItMatters\", \"summaryLine\"}.", subject)
	case TaskFreeformQA:
		return fmt.Sprintf(
			"You are an exam tutor. Answer the student's question using the context.\n\nQuestion: %s", subject)
	case TaskExamSet:
		return fmt.Sprintf(
			"You are an exam setter. From the context on %q, produce a JSON object {\"questions\": [{\"question\", \"answer\", \"marks\"}]} with 4-6 exam-style questions and model answers.", subject)
	case TaskMicroQuiz:
		return fmt.Sprintf(
			"You are an exam tutor. From the context on %q, produce a JSON object {\"questions\": [{\"question\", \"options\", \"correctIndex\", \"explanation\"}]} with exactly 3 multiple-choice questions.", subject)
	case TaskCrashCourse:
		return fmt.Sprintf(
			"You are an exam tutor. Build a compressed crash-course outline for %q from the context, ordered by exam payoff.", subject)
	}
	// Planning tasks share one generic instruction; their output shape is
	// caller-defined.
	return fmt.Sprintf("You are an exam-preparation planner. Task %q for input: %s", task, subject)
}

// #endregion instructions

// #region hints
// generationHints renders the non-empty GenerationContext fields.
func generationHints(g GenerationContext) string {
	var lines []string
	if g.CurrentChapter != "" {
		lines = append(lines, "Current chapter: "+g.CurrentChapter)
	}
	if g.ExamTimeRemaining != "" {
		lines = append(lines, "Time until exam: "+g.ExamTimeRemaining)
	}
	if g.StudyMode != "" {
		lines = append(lines, "Study mode: "+g.StudyMode)
	}
	if g.ExamMode {
		lines = append(lines, "Exam mode: answer in strict exam register, mark allocations included.")
	}
	if g.UserIntent != "" {
		lines = append(lines, "Student intent: "+g.UserIntent)
	}
	if len(lines) == 0 {
		return ""
	}
	return "Student context:\n" + strings.Join(lines, "\n")
}

// #endregion hints
