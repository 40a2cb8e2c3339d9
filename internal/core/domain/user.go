package domain

import "time"

// User is a registered account.
type User struct {
	Email        string
	Username     string
	Role         string
	PasswordHash string
}

// ChatTitleLength is the number of characters of the opening question kept as title.
const ChatTitleLength = 50

// Chat is a persisted conversation transcript.
type Chat struct {
	ID        int64
	Title     string
	UserEmail string
	Messages  []string
	CreatedAt time.Time
}

// TitleFromQuestion returns the first ChatTitleLength characters of question.
func TitleFromQuestion(question string) string {
	r := []rune(question)
	if len(r) > ChatTitleLength {
		r = r[:ChatTitleLength]
	}
	return string(r)
}

// DependencyStatus is the health of one backing service.
type DependencyStatus struct {
	OK    bool
	Error string
}

// HealthReport aggregates dependency checks.
type HealthReport struct {
	OK     bool
	Checks map[string]DependencyStatus
	Uptime time.Duration
	Time   time.Time
}
