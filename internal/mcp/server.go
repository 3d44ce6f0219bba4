// Package mcp implements the MCP protocol surface for planmcp: a tool and
// resource registry and the stdio and HTTP transports that serve it.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Tool is the interface every planmcp tool implements.
type Tool interface {
	// Name returns the tool name (e.g. "plan_create_atomic").
	Name() string

	// Description returns a human-readable description of what the tool does.
	Description() string

	// InputSchema returns the JSON Schema for the tool's parameters.
	InputSchema() json.RawMessage

	// Execute runs the tool with the given parameters and returns the result.
	Execute(ctx context.Context, params json.RawMessage) (*ToolsCallResult, error)
}

// Resource is the interface for MCP resources.
type Resource interface {
	// Definition returns the resource metadata.
	Definition() ResourceDefinition

	// Read returns the resource content.
	Read() (*ResourcesReadResult, error)
}

// Server dispatches MCP requests to registered tools and resources. Register
// everything before serving; the registry is not synchronized after that.
type Server struct {
	info      ServerInfo
	logger    *slog.Logger
	tools     map[string]Tool
	toolOrder []string
	resources map[string]Resource // keyed by URI
	resOrder  []string
}

// NewServer creates an MCP server with the given identity.
func NewServer(info ServerInfo, logger *slog.Logger) *Server {
	return &Server{
		info:      info,
		logger:    logger,
		tools:     make(map[string]Tool),
		resources: make(map[string]Resource),
	}
}

// Register adds a tool. Panics on a duplicate name; tool names are static.
func (s *Server) Register(t Tool) {
	name := t.Name()
	if _, exists := s.tools[name]; exists {
		panic(fmt.Sprintf("tool %q already registered", name))
	}
	s.tools[name] = t
	s.toolOrder = append(s.toolOrder, name)
}

// RegisterResource adds a resource. Panics on a duplicate URI.
func (s *Server) RegisterResource(res Resource) {
	uri := res.Definition().URI
	if _, exists := s.resources[uri]; exists {
		panic(fmt.Sprintf("resource %q already registered", uri))
	}
	s.resources[uri] = res
	s.resOrder = append(s.resOrder, uri)
}

// Run reads JSON-RPC requests from stdin and writes responses to stdout.
// It blocks until stdin is closed. A cancelled context is noticed when the
// next line arrives; a read that is waiting for input is not interrupted.
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(os.Stdin)
	// Library imports can be large.
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024)
	encoder := json.NewEncoder(os.Stdout)

	s.logger.Info("planmcp server started", "name", s.info.Name, "version", s.info.Version)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		if resp := s.HandleMessage(ctx, line); resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.logger.Error("failed to write response", "error", err)
				return fmt.Errorf("writing response: %w", err)
			}
		}
	}

	if err := scanner.Err(); err != nil && err != io.EOF {
		return fmt.Errorf("reading stdin: %w", err)
	}

	s.logger.Info("planmcp server stopped (stdin closed)")
	return nil
}

// HandleMessage parses one JSON-RPC message and dispatches it. Notifications
// return nil.
func (s *Server) HandleMessage(ctx context.Context, data []byte) *Response {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		s.logger.Error("failed to parse request", "error", err)
		return &Response{
			JSONRPC: "2.0",
			Error:   &RPCError{Code: ErrCodeParse, Message: "Parse error", Data: err.Error()},
		}
	}

	if req.ID == nil {
		s.logger.Debug("received notification", "method", req.Method)
		return nil
	}

	s.logger.Debug("handling request", "method", req.Method, "id", string(req.ID))

	result, rpcErr := s.dispatch(ctx, &req)
	resp := &Response{JSONRPC: "2.0", ID: req.ID}
	if rpcErr != nil {
		resp.Error = rpcErr
	} else {
		resp.Result = result
	}
	return resp
}

func (s *Server) dispatch(ctx context.Context, req *Request) (any, *RPCError) {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req.Params)
	case "tools/list":
		return s.handleToolsList(), nil
	case "tools/call":
		return s.handleToolsCall(ctx, req.Params)
	case "resources/list":
		return s.handleResourcesList(), nil
	case "resources/read":
		return s.handleResourcesRead(req.Params)
	default:
		return nil, &RPCError{
			Code:    ErrCodeMethodNotFound,
			Message: fmt.Sprintf("method not found: %s", req.Method),
		}
	}
}

func (s *Server) handleInitialize(params json.RawMessage) (any, *RPCError) {
	var initParams InitializeParams
	if params != nil {
		if err := json.Unmarshal(params, &initParams); err != nil {
			return nil, &RPCError{Code: ErrCodeInvalidParams, Message: "Invalid initialize params", Data: err.Error()}
		}
	}

	s.logger.Info("client connecting",
		"client", initParams.ClientInfo.Name,
		"client_version", initParams.ClientInfo.Version,
		"protocol_version", initParams.ProtocolVersion,
	)

	caps := ServerCapability{Tools: &ToolsCapability{}}
	if len(s.resources) > 0 {
		caps.Resources = &ResourcesCapability{}
	}

	return &InitializeResult{
		ProtocolVersion: "2024-11-05",
		Capabilities:    caps,
		ServerInfo:      s.info,
	}, nil
}

func (s *Server) handleToolsList() any {
	defs := make([]ToolDefinition, 0, len(s.toolOrder))
	for _, name := range s.toolOrder {
		t := s.tools[name]
		defs = append(defs, ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.InputSchema(),
		})
	}
	return &ToolsListResult{Tools: defs}
}

func (s *Server) handleToolsCall(ctx context.Context, params json.RawMessage) (any, *RPCError) {
	var callParams ToolsCallParams
	if err := json.Unmarshal(params, &callParams); err != nil {
		return nil, &RPCError{Code: ErrCodeInvalidParams, Message: "Invalid tools/call params", Data: err.Error()}
	}

	tool, ok := s.tools[callParams.Name]
	if !ok {
		return nil, &RPCError{
			Code:    ErrCodeMethodNotFound,
			Message: fmt.Sprintf("tool not found: %s", callParams.Name),
		}
	}

	s.logger.Info("calling tool", "tool", callParams.Name)

	result, err := tool.Execute(ctx, callParams.Arguments)
	if err != nil {
		s.logger.Error("tool execution failed", "tool", callParams.Name, "error", err)
		return ErrorResult(fmt.Sprintf("tool execution failed: %v", err)), nil
	}
	return result, nil
}

func (s *Server) handleResourcesList() any {
	defs := make([]ResourceDefinition, 0, len(s.resOrder))
	for _, uri := range s.resOrder {
		defs = append(defs, s.resources[uri].Definition())
	}
	return &ResourcesListResult{Resources: defs}
}

func (s *Server) handleResourcesRead(params json.RawMessage) (any, *RPCError) {
	var readParams ResourcesReadParams
	if err := json.Unmarshal(params, &readParams); err != nil {
		return nil, &RPCError{Code: ErrCodeInvalidParams, Message: "Invalid resources/read params", Data: err.Error()}
	}

	resource, ok := s.resources[readParams.URI]
	if !ok {
		return nil, &RPCError{
			Code:    ErrCodeMethodNotFound,
			Message: fmt.Sprintf("resource not found: %s", readParams.URI),
		}
	}

	result, err := resource.Read()
	if err != nil {
		return nil, &RPCError{Code: ErrCodeInternal, Message: fmt.Sprintf("resource read error: %v", err)}
	}
	return result, nil
}
