package config

import (
	"github.com/moasq/opencode-helix/internal/opencode"
	"github.com/moasq/opencode-helix/internal/tui"
)

// Select dialog categories.
const (
	CategoryPrompts  = "PROMPTS"
	CategoryCommands = "COMMANDS"
	CategoryAgents   = "AGENTS"
)

// Prompt is a named prompt template. Templates may use @this, @buffer,
// @selection and @diff.
type Prompt struct {
	Name        string `yaml:"name"`
	Prompt      string `yaml:"prompt"`
	Description string `yaml:"description"`
}

// DefaultPrompts mirror the prompts shipped with opencode.nvim.
var DefaultPrompts = []Prompt{
	{Name: "explain", Prompt: "Explain how this code works: @this", Description: "Explain the selected code"},
	{Name: "review", Prompt: "Review this code and suggest improvements: @this", Description: "Code review"},
	{Name: "fix", Prompt: "Fix the issue in this code: @this", Description: "Fix code issues"},
	{Name: "implement", Prompt: "Implement based on the context: @this", Description: "Implement code"},
	{Name: "tests", Prompt: "Write tests for this code: @this", Description: "Generate tests"},
	{Name: "docs", Prompt: "Add documentation to this code: @this", Description: "Add documentation"},
	{Name: "refactor", Prompt: "Refactor this code to be cleaner and more maintainable: @this", Description: "Refactor code"},
	{Name: "optimize", Prompt: "Optimize this code for better performance: @this", Description: "Optimize performance"},
}

// BuiltinCommand is a TUI command opencode always understands.
type BuiltinCommand struct {
	Name        string
	Description string
}

// BuiltinCommands lists the TUI commands available without server config.
var BuiltinCommands = []BuiltinCommand{
	{Name: opencode.CommandPromptClear, Description: "Clear the prompt input"},
	{Name: opencode.CommandPromptSubmit, Description: "Submit the current prompt"},
	{Name: "session.new", Description: "Start a new session"},
	{Name: "session.list", Description: "List all sessions"},
	{Name: "model.list", Description: "List available models"},
}

// IsBuiltinCommand reports whether name is one of BuiltinCommands.
func IsBuiltinCommand(name string) bool {
	for _, c := range BuiltinCommands {
		if c.Name == name {
			return true
		}
	}
	return false
}

// AllPrompts returns the defaults with the config's prompts applied: a
// prompt with a default's name replaces it, others are appended in order.
func (c *Config) AllPrompts() []Prompt {
	out := append([]Prompt(nil), DefaultPrompts...)
	for _, p := range c.Prompts {
		replaced := false
		for i := range out {
			if out[i].Name == p.Name {
				out[i] = p
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, p)
		}
	}
	return out
}

// FindPrompt looks a prompt up by name.
func (c *Config) FindPrompt(name string) (Prompt, bool) {
	for _, p := range c.AllPrompts() {
		if p.Name == name {
			return p, true
		}
	}
	return Prompt{}, false
}

// PromptItems converts prompts to select dialog items.
func PromptItems(prompts []Prompt) []tui.SelectItem {
	items := make([]tui.SelectItem, 0, len(prompts))
	for _, p := range prompts {
		items = append(items, tui.SelectItem{Name: p.Name, Description: p.Description, Value: p.Prompt, Category: CategoryPrompts})
	}
	return items
}

// CommandItems converts server commands to "/name" items whose value is the
// command template.
func CommandItems(cmds []opencode.Command) []tui.SelectItem {
	items := make([]tui.SelectItem, 0, len(cmds))
	for _, c := range cmds {
		items = append(items, tui.SelectItem{Name: "/" + c.Name, Description: c.Description, Value: c.Template, Category: CategoryCommands})
	}
	return items
}

// AgentItems converts subagents to "@name" mentions. Primary agents are
// skipped since they cannot be mentioned.
func AgentItems(agents []opencode.Agent) []tui.SelectItem {
	var items []tui.SelectItem
	for _, a := range agents {
		if !a.Subagent() {
			continue
		}
		items = append(items, tui.SelectItem{Name: "@" + a.Name, Description: a.Description, Value: "@" + a.Name + " ", Category: CategoryAgents})
	}
	return items
}
