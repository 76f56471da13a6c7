package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

const (
	defaultDialTimeout = 2 * time.Second
	// maxMessageSize bounds a single CBOR value in either direction. A
	// handoff carries both documents inline.
	maxMessageSize = 32 * 1024 * 1024
)

// AgentError is returned when the agent answered with ok=false.
type AgentError struct {
	Action  string
	Message string
}

func (e *AgentError) Error() string {
	return fmt.Sprintf("agent error on %q: %s", e.Action, e.Message)
}

// Client talks to the local agent over its unix socket. Every call opens a
// fresh connection, sends one request and reads one response.
type Client struct {
	socketPath  string
	dialTimeout time.Duration
}

// NewClient returns a client for the agent listening at socketPath.
func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath, dialTimeout: defaultDialTimeout}
}

// SocketPath reports where the client dials.
func (c *Client) SocketPath() string {
	return c.socketPath
}

// Ping asks the agent whether it is reachable.
func (c *Client) Ping(ctx context.Context) (PingResult, error) {
	var result PingResult
	err := c.Call(ctx, ActionPing, nil, &result)
	return result, err
}

// Handoff delivers msg to the agent and returns its acknowledgement.
func (c *Client) Handoff(ctx context.Context, msg HandoffMessage) (DeliveryResult, error) {
	var result DeliveryResult
	if err := c.Call(ctx, ActionHandoff, map[string]any{"message": msg}, &result); err != nil {
		return DeliveryResult{}, err
	}
	if !result.Accepted {
		return result, &AgentError{Action: ActionHandoff, Message: "handoff not accepted"}
	}
	return result, nil
}

// Call sends action plus fields and decodes the response data into result.
// fields must not contain an "action" key.
func (c *Client) Call(ctx context.Context, action string, fields map[string]any, result any) error {
	request := make(map[string]any, len(fields)+1)
	for key, value := range fields {
		request[key] = value
	}
	request["action"] = action

	response, err := c.send(ctx, request)
	if err != nil {
		return fmt.Errorf("calling %q on %s: %w", action, c.socketPath, err)
	}
	if !response.OK {
		return &AgentError{Action: action, Message: response.Error}
	}
	if result != nil && len(response.Data) > 0 {
		if err := Unmarshal(response.Data, result); err != nil {
			return fmt.Errorf("decoding response data for %q: %w", action, err)
		}
	}
	return nil
}

func (c *Client) send(ctx context.Context, request any) (*Response, error) {
	if c.socketPath == "" {
		return nil, errors.New("agent socket not configured")
	}
	dialer := net.Dialer{Timeout: c.dialTimeout}
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return nil, fmt.Errorf("connecting: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if err := newEncoder(conn).Encode(request); err != nil {
		return nil, fmt.Errorf("writing request: %w", err)
	}
	if unixConn, ok := conn.(*net.UnixConn); ok {
		unixConn.CloseWrite()
	}

	var response Response
	if err := newDecoder(io.LimitReader(conn, maxMessageSize)).Decode(&response); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return &response, nil
}
