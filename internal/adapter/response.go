package adapter

import (
	"encoding/json"

	"github.com/gzhole/llmsec/internal/policy"
	"github.com/gzhole/llmsec/internal/shell"
)

// ExitHookBlock is the exit code Claude Code and Windsurf treat as "block".
const ExitHookBlock = 2

// Response is what the adapter hands back to the caller.
type Response struct {
	Stdout   []byte
	Stderr   string
	ExitCode int
}

type cursorResponse struct {
	Permission   string `json:"permission"`
	AgentMessage string `json:"agentMessage,omitempty"`
	UserMessage  string `json:"userMessage,omitempty"`
}

type openCodeResponse struct {
	Cancel bool   `json:"cancel,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Respond serializes an outcome for integration. The denial explanation has
// already been written to stderr by the controller.
func Respond(integration Integration, out shell.Outcome) Response {
	if !out.Refused() {
		return Allow(integration, out.ExitCode)
	}
	if integration == ClaudeCode || integration == Windsurf {
		return Response{ExitCode: ExitHookBlock}
	}
	if integration == Shell || integration == Validator {
		return Response{ExitCode: out.ExitCode}
	}
	return Refuse(integration, userMessage(out.Verdict), policy.Summary(out.Verdict))
}

// Allow is the pass-through response. code matters only for the validator
// and shell integrations.
func Allow(integration Integration, code int) Response {
	switch integration {
	case Cursor:
		return Response{Stdout: mustJSON(cursorResponse{Permission: "allow"})}
	case OpenCode:
		return Response{Stdout: []byte("{}\n")}
	case ClaudeCode, Windsurf:
		return Response{}
	}
	return Response{ExitCode: code}
}

// Refuse blocks the request. userMsg is short and shown to the human;
// agentMsg carries the full explanation for the model.
func Refuse(integration Integration, userMsg, agentMsg string) Response {
	switch integration {
	case Cursor:
		return Response{Stdout: mustJSON(cursorResponse{
			Permission:   "deny",
			AgentMessage: agentMsg,
			UserMessage:  userMsg,
		})}
	case OpenCode:
		return Response{Stdout: mustJSON(openCodeResponse{Cancel: true, Reason: agentMsg})}
	case ClaudeCode, Windsurf:
		return Response{Stderr: agentMsg + "\n", ExitCode: ExitHookBlock}
	}
	return Response{ExitCode: shell.ExitRefused}
}

func userMessage(v policy.Verdict) string {
	if v.Rule != nil && v.Rule.Message != "" {
		return "🛑 Blocked by llmsec: " + v.Rule.Message
	}
	if v.Decision == policy.DecisionAsk {
		return "🛑 Blocked by llmsec: confirmation declined"
	}
	return "🛑 Blocked by llmsec: " + v.Command
}

func mustJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		// Only plain string fields; cannot fail.
		panic(err)
	}
	return append(data, '\n')
}
