package chatpod

// Role tags a Turn with its speaker.
type Role string

const (
	// RoleSystem is the persona prompt pinned at the start of every session.
	RoleSystem Role = "system"
	// RoleUser is a message from the end user.
	RoleUser Role = "user"
	// RoleAssistant is a completed answer from the model.
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation. Turns are immutable values; the
// session store replaces slices rather than editing turns in place.
type Turn struct {
	Role    Role
	Content string
}

func SystemTurn(content string) Turn {
	return Turn{Role: RoleSystem, Content: content}
}

func UserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

func AssistantTurn(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content}
}
