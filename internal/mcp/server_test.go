package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoTool struct{}

func (echoTool) Name() string        { return "echo" }
func (echoTool) Description() string { return "echoes its input" }
func (echoTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{"type":"object","properties":{"text":{"type":"string"}}}`)
}
func (echoTool) Execute(ctx context.Context, params json.RawMessage) (*ToolsCallResult, error) {
	var p struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return ErrorResult("bad params"), nil
	}
	return &ToolsCallResult{Content: []ContentBlock{TextContent(p.Text)}}, nil
}

func newTestServer() *Server {
	s := NewServer(ServerInfo{Name: "test", Version: "0.0.1"}, slog.New(slog.DiscardHandler))
	s.Register(echoTool{})
	return s
}

func TestHandleInitialize(t *testing.T) {
	s := newTestServer()
	resp := s.HandleMessage(context.Background(),
		[]byte(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"clientInfo":{"name":"c"}}}`))
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(*InitializeResult)
	require.True(t, ok)
	assert.Equal(t, "test", result.ServerInfo.Name)
	assert.NotNil(t, result.Capabilities.Tools)
}

func TestHandleToolsListAndCall(t *testing.T) {
	s := newTestServer()

	resp := s.HandleMessage(context.Background(),
		[]byte(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`))
	require.Nil(t, resp.Error)
	list, ok := resp.Result.(*ToolsListResult)
	require.True(t, ok)
	require.Len(t, list.Tools, 1)
	assert.Equal(t, "echo", list.Tools[0].Name)

	resp = s.HandleMessage(context.Background(),
		[]byte(`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"echo","arguments":{"text":"hi"}}}`))
	require.Nil(t, resp.Error)
	call, ok := resp.Result.(*ToolsCallResult)
	require.True(t, ok)
	require.Len(t, call.Content, 1)
	assert.Equal(t, "hi", call.Content[0].Text)
}

func TestHandleUnknownToolAndMethod(t *testing.T) {
	s := newTestServer()

	resp := s.HandleMessage(context.Background(),
		[]byte(`{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"nope"}}`))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeMethodNotFound, resp.Error.Code)

	resp = s.HandleMessage(context.Background(),
		[]byte(`{"jsonrpc":"2.0","id":5,"method":"bogus/method"}`))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeMethodNotFound, resp.Error.Code)
}

func TestNotificationsGetNoResponse(t *testing.T) {
	s := newTestServer()
	resp := s.HandleMessage(context.Background(),
		[]byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`))
	assert.Nil(t, resp)
}

func TestParseError(t *testing.T) {
	s := newTestServer()
	resp := s.HandleMessage(context.Background(), []byte(`{not json`))
	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeParse, resp.Error.Code)
}
