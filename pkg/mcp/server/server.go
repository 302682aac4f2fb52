// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/msoukhomlinov/autotask-mcp/pkg/mcp/protocol"
	"github.com/msoukhomlinov/autotask-mcp/pkg/mcp/transport"
	"github.com/msoukhomlinov/autotask-mcp/pkg/observability"
)

// notifyBuffer bounds queued server notifications.
const notifyBuffer = 16

// MethodHandler answers one JSON-RPC method. id is nil for notifications.
type MethodHandler func(ctx context.Context, id json.RawMessage, params json.RawMessage) (interface{}, error)

// MCPServer dispatches JSON-RPC messages to method handlers.
type MCPServer struct {
	info         protocol.Implementation
	capabilities protocol.ServerCapabilities
	instructions string
	handlers     map[string]MethodHandler
	logger       *zap.Logger
	tracer       observability.Tracer

	mu         sync.RWMutex
	clientInfo *protocol.Implementation
	version    string

	serving  atomic.Bool
	notifyCh chan []byte
}

// Option configures an MCPServer.
type Option func(*MCPServer)

// WithToolProvider serves tools/list and tools/call from p.
func WithToolProvider(p ToolProvider) Option {
	return func(s *MCPServer) {
		s.capabilities.Tools = &protocol.ListChangedCapability{ListChanged: true}
		s.RegisterHandler(protocol.MethodToolsList, s.toolsList(p))
		s.RegisterHandler(protocol.MethodToolsCall, s.toolsCall(p))
	}
}

// WithResourceProvider serves resources/list and resources/read from p, and
// resources/templates/list when p implements ResourceTemplateProvider.
func WithResourceProvider(p ResourceProvider) Option {
	return func(s *MCPServer) {
		s.capabilities.Resources = &protocol.ResourcesCapability{ListChanged: true}
		s.RegisterHandler(protocol.MethodResourcesList, resourcesList(p))
		s.RegisterHandler(protocol.MethodResourcesRead, resourcesRead(p))
		if tp, ok := p.(ResourceTemplateProvider); ok {
			s.RegisterHandler(protocol.MethodResourcesTemplatesList, resourceTemplatesList(tp))
		}
	}
}

// WithInstructions sets the usage hint returned by initialize.
func WithInstructions(text string) Option {
	return func(s *MCPServer) { s.instructions = text }
}

// WithTracer sets the tracer for tool spans.
func WithTracer(tracer observability.Tracer) Option {
	return func(s *MCPServer) { s.tracer = tracer }
}

// NewMCPServer creates a server identified by name and version.
func NewMCPServer(name, version string, logger *zap.Logger, opts ...Option) *MCPServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &MCPServer{
		info:     protocol.Implementation{Name: name, Version: version},
		handlers: make(map[string]MethodHandler),
		logger:   logger,
		tracer:   observability.NewNoOpTracer(),
		notifyCh: make(chan []byte, notifyBuffer),
	}

	s.RegisterHandler(protocol.MethodInitialize, s.handleInitialize)
	s.RegisterHandler(protocol.MethodInitialized, s.handleInitialized)
	s.RegisterHandler(protocol.MethodPing, func(context.Context, json.RawMessage, json.RawMessage) (interface{}, error) {
		return struct{}{}, nil
	})

	for _, opt := range opts {
		opt(s)
	}
	if s.tracer == nil {
		s.tracer = observability.NewNoOpTracer()
	}
	return s
}

// RegisterHandler installs or replaces the handler for method.
func (s *MCPServer) RegisterHandler(method string, handler MethodHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = handler
}

// HandleMessage processes one raw message and returns the encoded response,
// or nil for notifications.
func (s *MCPServer) HandleMessage(ctx context.Context, msg []byte) ([]byte, error) {
	var req protocol.Request
	if err := json.Unmarshal(msg, &req); err != nil {
		return marshalResponse(nil, nil, protocol.NewError(protocol.ParseError, "invalid JSON", nil))
	}
	if err := protocol.ValidateRequest(&req); err != nil {
		return marshalResponse(req.ID, nil, protocol.NewError(protocol.InvalidRequest, err.Error(), nil))
	}

	s.mu.RLock()
	handler, ok := s.handlers[req.Method]
	s.mu.RUnlock()

	if !ok {
		if req.IsNotification() {
			return nil, nil
		}
		return marshalResponse(req.ID, nil,
			protocol.NewError(protocol.MethodNotFound, fmt.Sprintf("method not found: %s", req.Method), nil))
	}

	var rawID json.RawMessage
	if req.ID != nil {
		idBytes, err := json.Marshal(req.ID)
		if err != nil {
			return marshalResponse(nil, nil, protocol.NewError(protocol.InternalError, "failed to marshal request id", nil))
		}
		rawID = idBytes
	}

	start := time.Now()
	result, err := handler(ctx, rawID, req.Params)
	duration := time.Since(start)

	if err != nil {
		s.logger.Warn("Handler failed",
			zap.String("method", req.Method),
			zap.Duration("duration", duration),
			zap.Error(err))
		if req.IsNotification() {
			return nil, nil
		}
		var rpcErr *protocol.Error
		if errors.As(err, &rpcErr) {
			return marshalResponse(req.ID, nil, rpcErr)
		}
		return marshalResponse(req.ID, nil, protocol.NewError(protocol.InternalError, err.Error(), nil))
	}

	s.logger.Debug("Request handled",
		zap.String("method", req.Method),
		zap.Stringer("id", req.ID),
		zap.Duration("duration", duration))
	if req.IsNotification() {
		return nil, nil
	}
	return marshalResponse(req.ID, result, nil)
}

// Serve reads messages from t until ctx is cancelled or t fails, answering
// requests in order and interleaving queued notifications.
func (s *MCPServer) Serve(ctx context.Context, t transport.Transport) error {
	s.serving.Store(true)
	defer s.serving.Store(false)
	s.logger.Info("MCP server starting", zap.String("name", s.info.Name), zap.String("version", s.info.Version))

	msgCh := make(chan []byte)
	errCh := make(chan error, 1)
	go func() {
		for {
			msg, err := t.Receive(ctx)
			if err != nil {
				errCh <- err
				return
			}
			select {
			case msgCh <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("MCP server stopping")
			return ctx.Err()

		case err := <-errCh:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("receive: %w", err)

		case msg := <-msgCh:
			resp, err := s.HandleMessage(ctx, msg)
			if err != nil {
				s.logger.Error("Failed to build response", zap.Error(err))
				continue
			}
			if resp == nil {
				continue
			}
			if err := t.Send(ctx, resp); err != nil {
				return fmt.Errorf("send: %w", err)
			}

		case notif := <-s.notifyCh:
			if err := t.Send(ctx, notif); err != nil {
				return fmt.Errorf("send notification: %w", err)
			}
		}
	}
}

// NotifyToolListChanged tells a connected client to re-fetch tools/list.
func (s *MCPServer) NotifyToolListChanged() {
	s.notify(protocol.NotificationToolsListChanged)
}

// NotifyResourceListChanged tells a connected client to re-fetch
// resources/list.
func (s *MCPServer) NotifyResourceListChanged() {
	s.notify(protocol.NotificationResourcesListChanged)
}

// notify queues a notification for the Serve loop. Without a running loop
// (the HTTP transport) there is no channel to the client and it is dropped.
func (s *MCPServer) notify(method string) {
	if !s.serving.Load() {
		s.logger.Debug("No streaming client, dropping notification", zap.String("method", method))
		return
	}
	notif, err := json.Marshal(protocol.NewNotification(method, nil))
	if err != nil {
		s.logger.Error("Failed to marshal notification", zap.String("method", method), zap.Error(err))
		return
	}
	select {
	case s.notifyCh <- notif:
	default:
		s.logger.Warn("Notification queue full, dropping", zap.String("method", method))
	}
}

// ClientInfo returns the client identity from initialize, or nil.
func (s *MCPServer) ClientInfo() *protocol.Implementation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clientInfo
}

// NegotiatedVersion returns the protocol revision agreed at initialize.
func (s *MCPServer) NegotiatedVersion() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *MCPServer) handleInitialize(_ context.Context, _ json.RawMessage, params json.RawMessage) (interface{}, error) {
	var init protocol.InitializeParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &init); err != nil {
			return nil, protocol.NewError(protocol.InvalidParams, fmt.Sprintf("invalid initialize params: %v", err), nil)
		}
	}

	version := protocol.NegotiateVersion(init.ProtocolVersion)
	if init.ProtocolVersion != "" && version != init.ProtocolVersion {
		s.logger.Warn("Client requested an unsupported protocol version",
			zap.String("requested", init.ProtocolVersion),
			zap.String("using", version))
	}

	s.mu.Lock()
	s.version = version
	if init.ClientInfo.Name != "" {
		info := init.ClientInfo
		s.clientInfo = &info
	}
	s.mu.Unlock()

	s.logger.Info("Client connected",
		zap.String("client", init.ClientInfo.Name),
		zap.String("client_version", init.ClientInfo.Version),
		zap.String("protocol_version", version))

	return protocol.InitializeResult{
		ProtocolVersion: version,
		Capabilities:    s.capabilities,
		ServerInfo:      s.info,
		Instructions:    s.instructions,
	}, nil
}

func (s *MCPServer) handleInitialized(context.Context, json.RawMessage, json.RawMessage) (interface{}, error) {
	s.logger.Debug("Client initialized")
	return nil, nil
}

func marshalResponse(id *protocol.RequestID, result interface{}, rpcErr *protocol.Error) ([]byte, error) {
	resp := protocol.Response{JSONRPC: protocol.JSONRPCVersion, ID: id, Error: rpcErr}
	if rpcErr == nil {
		raw, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal result: %w", err)
		}
		resp.Result = raw
	}
	return json.Marshal(resp)
}
