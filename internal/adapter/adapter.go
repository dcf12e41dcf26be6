// Package adapter translates between the calling environments and the mode
// controller. Adapters parse requests and serialize outcomes; they make no
// policy decisions.
package adapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Integration names a calling environment.
type Integration string

const (
	Validator  Integration = "validator"
	ClaudeCode Integration = "claude-code"
	Windsurf   Integration = "windsurf"
	Cursor     Integration = "cursor"
	OpenCode   Integration = "opencode"
	Shell      Integration = "shell"
)

// ToolHint names the project configuration directory family of a hook
// integration. Validator and shell requests carry no hint.
func (i Integration) ToolHint() string {
	switch i {
	case ClaudeCode:
		return "claude"
	case Cursor, Windsurf, OpenCode:
		return string(i)
	default:
		return ""
	}
}

var ErrUnknownFormat = errors.New("unrecognized hook payload")

// ParseIntegration accepts the names used on the command line.
func ParseIntegration(s string) (Integration, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "validator":
		return Validator, nil
	case "claude-code", "claude", "claudecode":
		return ClaudeCode, nil
	case "windsurf":
		return Windsurf, nil
	case "cursor":
		return Cursor, nil
	case "opencode", "open-code":
		return OpenCode, nil
	case "shell":
		return Shell, nil
	}
	return "", fmt.Errorf("unknown integration %q", s)
}

// Request is one command submitted for a decision.
type Request struct {
	Integration Integration
	Command     string
	Cwd         string

	// Pass is set when the payload is not a shell command (another tool,
	// another hook event) and must be let through untouched.
	Pass bool
}

// hookPayload is the union of every hook's stdin JSON.
//
//	Claude Code: {"hook_event_name":"PreToolUse","tool_name":"Bash","tool_input":{"command":"..."}}
//	Windsurf:    {"agent_action_name":"pre_run_command","tool_info":{"command_line":"...","cwd":"..."}}
//	Cursor:      {"command":"...","cwd":"..."}
//	OpenCode:    {"tool":"bash","args":{"command":"..."}}
type hookPayload struct {
	HookEventName string `json:"hook_event_name"`
	ToolName      string `json:"tool_name"`
	ToolInput     struct {
		Command string `json:"command"`
	} `json:"tool_input"`
	Cwd string `json:"cwd"`

	AgentActionName string `json:"agent_action_name"`
	ToolInfo        struct {
		CommandLine string `json:"command_line"`
		Cwd         string `json:"cwd"`
	} `json:"tool_info"`

	Command string `json:"command"`

	Tool string `json:"tool"`
	Args struct {
		Command string `json:"command"`
	} `json:"args"`
}

func decode(data []byte) (*hookPayload, error) {
	var p hookPayload
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrUnknownFormat)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode hook payload: %w", err)
	}
	return &p, nil
}

// Detect infers the integration from the payload's fields.
func Detect(data []byte) (Integration, error) {
	p, err := decode(data)
	if err != nil {
		return "", err
	}
	return detect(p)
}

func detect(p *hookPayload) (Integration, error) {
	switch {
	case p.HookEventName != "" || p.ToolName != "":
		return ClaudeCode, nil
	case p.AgentActionName != "":
		return Windsurf, nil
	case p.Tool != "" || p.Args.Command != "":
		return OpenCode, nil
	case p.Command != "":
		return Cursor, nil
	}
	return "", ErrUnknownFormat
}

// ParseHook decodes a hook payload. An empty integration auto-detects.
func ParseHook(integration Integration, data []byte) (Request, error) {
	p, err := decode(data)
	if err != nil {
		return Request{Integration: integration}, err
	}
	if integration == "" {
		if integration, err = detect(p); err != nil {
			return Request{}, err
		}
	}

	req := Request{Integration: integration}
	switch integration {
	case ClaudeCode:
		if p.ToolName != "" && p.ToolName != "Bash" {
			req.Pass = true
			return req, nil
		}
		req.Command = p.ToolInput.Command
		req.Cwd = p.Cwd
	case Windsurf:
		if p.AgentActionName != "pre_run_command" {
			req.Pass = true
			return req, nil
		}
		req.Command = p.ToolInfo.CommandLine
		req.Cwd = p.ToolInfo.Cwd
	case Cursor:
		req.Command = p.Command
		req.Cwd = p.Cwd
	case OpenCode:
		if p.Tool != "" && !strings.EqualFold(p.Tool, "bash") {
			req.Pass = true
			return req, nil
		}
		req.Command = p.Args.Command
		if req.Command == "" {
			req.Command = p.Command
		}
		req.Cwd = p.Cwd
	default:
		return req, fmt.Errorf("integration %q does not read hook payloads", integration)
	}
	return req, nil
}

// ParseShellArgs accepts the `-c "command"` convention used when llmsec
// replaces the agent's shell. Anything after the command string is ignored
// as the shell's positional parameters.
func ParseShellArgs(args []string) (Request, error) {
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "-c":
			if i+1 >= len(args) {
				return Request{}, errors.New("-c: option requires an argument")
			}
			return Request{Integration: Shell, Command: args[i+1]}, nil
		case strings.HasPrefix(a, "-") && !strings.HasPrefix(a, "--") && strings.Contains(a, "c"):
			// Combined flags such as -lc or -ic.
			if i+1 >= len(args) {
				return Request{}, fmt.Errorf("%s: option requires an argument", a)
			}
			return Request{Integration: Shell, Command: args[i+1]}, nil
		}
	}
	return Request{}, errors.New("usage: -c <command>")
}
