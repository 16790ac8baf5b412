package mcp

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const protocolVersion = "2024-11-05"

// JSON-RPC 2.0 error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
)

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *errorObj       `json:"error,omitempty"`
}

type errorObj struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type promptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

type prompt struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Arguments   []promptArgument `json:"arguments"`
}

type promptMessage struct {
	Role    string      `json:"role"`
	Content textContent `json:"content"`
}

type textContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type resourceContents struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

// Server answers prompt and resource requests for a fixed command set.
type Server struct {
	name     string
	commands map[string]Command
}

func NewServer(name string, commands map[string]Command) *Server {
	return &Server{name: name, commands: commands}
}

// Serve reads newline-delimited JSON-RPC requests from in and writes one
// response per request to out, until EOF. Unparseable lines get a parse
// error response; they never kill the loop.
func (s *Server) Serve(in io.Reader, out io.Writer) error {
	enc := json.NewEncoder(out)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var req request
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			if err := enc.Encode(errorResponse(nil, codeParseError, "parse error")); err != nil {
				return err
			}
			continue
		}
		if err := enc.Encode(s.handle(req)); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func (s *Server) handle(req request) response {
	switch req.Method {
	case "initialize":
		return s.initialize(req)
	case "prompts/list":
		return s.listPrompts(req)
	case "prompts/get":
		return s.getPrompt(req)
	case "resources/list":
		return s.listResources(req)
	case "resources/read":
		return s.readResource(req)
	default:
		return errorResponse(req.ID, codeMethodNotFound, fmt.Sprintf("method not found: %s", req.Method))
	}
}

func (s *Server) initialize(req request) response {
	return okResponse(req.ID, map[string]interface{}{
		"protocolVersion": protocolVersion,
		"serverInfo": map[string]string{
			"name": s.name,
		},
		"capabilities": map[string]interface{}{
			"prompts":   map[string]interface{}{},
			"resources": map[string]interface{}{},
		},
	})
}

func (s *Server) listPrompts(req request) response {
	prompts := make([]prompt, 0, len(s.commands))
	for _, name := range sortedNames(s.commands) {
		cmd := s.commands[name]
		prompts = append(prompts, prompt{
			Name:        cmd.Name,
			Description: cmd.Description,
			Arguments: []promptArgument{{
				Name:        "arguments",
				Description: "User input/arguments for the command",
				Required:    false,
			}},
		})
	}
	return okResponse(req.ID, map[string]interface{}{"prompts": prompts})
}

func (s *Server) getPrompt(req request) response {
	var params struct {
		Name      string            `json:"name"`
		Arguments map[string]string `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
		return errorResponse(req.ID, codeInvalidParams, "missing prompt name")
	}

	cmd, ok := s.commands[params.Name]
	if !ok {
		return errorResponse(req.ID, codeInvalidParams, fmt.Sprintf("unknown prompt: %s", params.Name))
	}

	return okResponse(req.ID, map[string]interface{}{
		"description": cmd.Description,
		"messages": []promptMessage{{
			Role: "user",
			Content: textContent{
				Type: "text",
				Text: cmd.Render(params.Arguments["arguments"]),
			},
		}},
	})
}

func (s *Server) listResources(req request) response {
	resources := []resource{{
		URI:         "commands://list",
		Name:        "Available Commands",
		Description: "List of all available commands",
	}}
	for _, name := range sortedNames(s.commands) {
		cmd := s.commands[name]
		resources = append(resources, resource{
			URI:         "commands://" + cmd.Name,
			Name:        cmd.Name,
			Description: cmd.Description,
		})
	}
	return okResponse(req.ID, map[string]interface{}{"resources": resources})
}

func (s *Server) readResource(req request) response {
	var params struct {
		URI string `json:"uri"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil || params.URI == "" {
		return errorResponse(req.ID, codeInvalidParams, "missing resource uri")
	}

	if params.URI == "commands://list" {
		var b strings.Builder
		b.WriteString("# Available Commands\n\n")
		for _, name := range sortedNames(s.commands) {
			desc := s.commands[name].Description
			if desc == "" {
				desc = "No description"
			}
			fmt.Fprintf(&b, "- **%s**: %s\n", name, desc)
		}
		return okResponse(req.ID, map[string]interface{}{
			"contents": []resourceContents{{
				URI:      params.URI,
				MimeType: "text/markdown",
				Text:     b.String(),
			}},
		})
	}

	name := strings.TrimPrefix(params.URI, "commands://")
	if name == params.URI {
		return errorResponse(req.ID, codeInvalidParams, fmt.Sprintf("unknown resource: %s", params.URI))
	}
	cmd, ok := s.commands[name]
	if !ok {
		return errorResponse(req.ID, codeInvalidParams, fmt.Sprintf("unknown command: %s", name))
	}
	return okResponse(req.ID, map[string]interface{}{
		"contents": []resourceContents{{
			URI:      params.URI,
			MimeType: "text/markdown",
			Text:     cmd.Body,
		}},
	})
}

func okResponse(id json.RawMessage, result interface{}) response {
	return response{JSONRPC: "2.0", ID: id, Result: result}
}

func errorResponse(id json.RawMessage, code int, message string) response {
	return response{JSONRPC: "2.0", ID: id, Error: &errorObj{Code: code, Message: message}}
}
