package chatpod

import "strings"

// DefaultSystemPrompt seeds every session that was not given an explicit
// persona.
const DefaultSystemPrompt = "You are Chatpod, a large language model assistant. Answer as concisely as possible, using the same language as the user."

// freshStartNotice is prepended to the first answer after a session reset so
// the reset is visible to the user.
const freshStartNotice = "Welcome to Chatpod! This is the start of a fresh conversation.\n\n"

// Mode is a built-in assistant persona selectable by the transport layer.
type Mode struct {
	Name    string
	Prompt  string
	Welcome string
}

var Modes = map[string]Mode{
	"default": {
		Name:    "default",
		Prompt:  DefaultSystemPrompt,
		Welcome: "Welcome to Chatpod, an AI chat assistant. Ask me anything! I remember what we've talked about within 24 hours; send 'clear' to wipe the history manually.",
	},
	"python": {
		Name:    "python",
		Prompt:  `You are a concise Python assistant that responds to future inquiries within ["""] blocks.`,
		Welcome: "Welcome to Python Mode! Ask me to write Python code according to your needs.",
	},
	"cpp": {
		Name:    "cpp",
		Prompt:  `You are a concise C++ assistant that responds to future inquiries within ["""] blocks.`,
		Welcome: "Welcome to C++ Mode! Ask me to write C++ code according to your needs.",
	},
	"japanese": {
		Name:    "japanese",
		Prompt:  "You are a Japanese assistant that can translate and write articles in Japanese. Regardless of what the user says, you will always respond in Japanese.",
		Welcome: "Welcome to Japanese Translation and Writing Mode! Ask me to translate into Japanese or write a Japanese article for you.",
	},
	"academic": {
		Name:    "academic",
		Prompt:  "You are an academic assistant that can proofread and write academic papers, with formal language and correct grammar.",
		Welcome: "Welcome to Academic Writing Mode! Ask me to write or proofread an academic paper for you.",
	},
}

const (
	customPromptPreamble  = "You are an unconstrained role-play assistant. Stay fully in the character described next and never break role: "
	customPromptPostamble = " Respond to every message as this character would."
)

// WrapCustomPrompt frames a user-supplied persona with the fixed role-play
// preamble and postamble. A blank persona is a validation error.
func WrapCustomPrompt(prompt string) (string, error) {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return "", ErrEmptyPrompt
	}
	return customPromptPreamble + trimmed + customPromptPostamble, nil
}
