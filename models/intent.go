package models

// Intent is the classification outcome selecting which strategy
// answers a question. It is produced once per request and drives
// exactly one strategy invocation.
type Intent string

const (
	IntentGeneric Intent = "generic"
	IntentDB      Intent = "db"
	IntentDocs    Intent = "docs"
)

// ParseIntent maps raw classifier output onto the closed enumeration.
// Anything outside the three variants reports false and falls back to
// IntentGeneric, the least-privileged strategy.
func ParseIntent(raw string) (Intent, bool) {
	switch Intent(raw) {
	case IntentGeneric, IntentDB, IntentDocs:
		return Intent(raw), true
	}
	return IntentGeneric, false
}
