package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *Client) call(method string, req any, resp any) error {
	return c.client.Call(ServiceName+"."+method, req, resp)
}

// StartCreating starts the producer.
func (c *Client) StartCreating() (*AckResponse, error) {
	var resp AckResponse
	if err := c.call("StartCreating", WorkerRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StopCreating stops the producer.
func (c *Client) StopCreating() (*AckResponse, error) {
	var resp AckResponse
	if err := c.call("StopCreating", WorkerRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetCreationInterval changes the producer period.
func (c *Client) SetCreationInterval(ms int) (*AckResponse, error) {
	var resp AckResponse
	if err := c.call("SetCreationInterval", IntervalRequest{IntervalMillis: ms}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StartDeleting starts the consumer.
func (c *Client) StartDeleting() (*AckResponse, error) {
	var resp AckResponse
	if err := c.call("StartDeleting", WorkerRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StopDeleting stops the consumer.
func (c *Client) StopDeleting() (*AckResponse, error) {
	var resp AckResponse
	if err := c.call("StopDeleting", WorkerRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetDeletionInterval changes the consumer period.
func (c *Client) SetDeletionInterval(ms int) (*AckResponse, error) {
	var resp AckResponse
	if err := c.call("SetDeletionInterval", IntervalRequest{IntervalMillis: ms}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Toggle starts both workers if neither is running, otherwise stops both.
func (c *Client) Toggle() (*ToggleResponse, error) {
	var resp ToggleResponse
	if err := c.call("Toggle", ToggleRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdatePath switches the monitored directory.
func (c *Client) UpdatePath(path string) (*UpdatePathResponse, error) {
	var resp UpdatePathResponse
	if err := c.call("UpdatePath", UpdatePathRequest{Path: path}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CurrentFiles lists the monitored directory.
func (c *Client) CurrentFiles() (*CurrentFilesResponse, error) {
	var resp CurrentFilesResponse
	if err := c.call("CurrentFiles", CurrentFilesRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.call("Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EmptyFolder removes every regular file in the monitored directory.
func (c *Client) EmptyFolder() (*EmptyFolderResponse, error) {
	var resp EmptyFolderResponse
	if err := c.call("EmptyFolder", EmptyFolderRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Journal fetches recent activity entries.
func (c *Client) Journal(limit int) (*JournalResponse, error) {
	var resp JournalResponse
	if err := c.call("Journal", JournalRequest{Limit: limit}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
