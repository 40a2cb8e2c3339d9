package driven

// PromptStore serves the editable prompt texts by name.
type PromptStore interface {
	// Load returns the named prompt. File-backed stores fall back to the
	// built-in text and report why.
	Load(name string) (string, error)

	// Reload drops cached prompts so the next Load reads storage again.
	Reload()
}

// Prompt names.
const (
	// PromptAnswerSystem is the system instruction for answer generation.
	PromptAnswerSystem = "answer_system"

	// PromptDummyAnswer is the canned reply of the dummy generator and /query_dummy.
	PromptDummyAnswer = "dummy_answer"
)

// PromptStoreAware is implemented by generators that read their own prompts.
type PromptStoreAware interface {
	SetPromptStore(store PromptStore)
}
