// Package prompt renders selected chunks plus generation context into a
// provider-ready prompt per task type.
package prompt

// #region task-type
// TaskType identifies a generation task.
type TaskType string

const (
	TaskTopicOverview TaskType = "topic_overview"
	TaskLearnItem     TaskType = "learn_item"
	TaskFreeformQA    TaskType = "freeform_qa"
	TaskExamSet       TaskType = "exam_set"
	TaskMicroQuiz     TaskType = "micro_quiz"

	// Planning tasks always routed to the smart tier.
	TaskFullStrategy   TaskType = "full_strategy"
	TaskChapterRanking TaskType = "chapter_ranking"
	TaskReadinessScore TaskType = "readiness_score"
	TaskCrashCourse    TaskType = "crash_course"
	TaskTopicRanking   TaskType = "topic_ranking"
	TaskAdaptivePath   TaskType = "adaptive_path"
)

// #endregion task-type

// #region generation-context
// GenerationContext carries caller-supplied hints. Pure input, no lifecycle.
type GenerationContext struct {
	CurrentChapter    string
	ExamTimeRemaining string
	StudyMode         string
	ExamMode          bool
	UserIntent        string
	ScopeID           string
	ChapterWeightage  string // free-form weightage hint, parsed by the estimator
	DebugRetrieval    bool
	ExpandQuery       bool
}

// #endregion generation-context
