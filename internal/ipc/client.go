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

// Stop requests the daemon to stop processing.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Dlassist.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Dlassist.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ProcessExisting asks the daemon to sweep the downloads folder now.
func (c *Client) ProcessExisting() (*ProcessExistingResponse, error) {
	var resp ProcessExistingResponse
	if err := c.client.Call("Dlassist.ProcessExisting", ProcessExistingRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RecentIntakes returns recent journal entries, newest first.
func (c *Client) RecentIntakes(limit int) (*RecentIntakesResponse, error) {
	var resp RecentIntakesResponse
	req := RecentIntakesRequest{Limit: limit}
	if err := c.client.Call("Dlassist.RecentIntakes", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// QuarantineEntries lists the quarantine folder contents.
func (c *Client) QuarantineEntries() (*QuarantineEntriesResponse, error) {
	var resp QuarantineEntriesResponse
	if err := c.client.Call("Dlassist.QuarantineEntries", QuarantineEntriesRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ConfigGet resolves one dotted configuration key.
func (c *Client) ConfigGet(key string) (*ConfigGetResponse, error) {
	var resp ConfigGetResponse
	req := ConfigGetRequest{Key: key}
	if err := c.client.Call("Dlassist.ConfigGet", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ConfigSet updates one dotted configuration key.
func (c *Client) ConfigSet(key string, value any) (*ConfigSetResponse, error) {
	var resp ConfigSetResponse
	req := ConfigSetRequest{Key: key, Value: value}
	if err := c.client.Call("Dlassist.ConfigSet", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ConfigAll fetches the full configuration tree.
func (c *Client) ConfigAll() (*ConfigAllResponse, error) {
	var resp ConfigAllResponse
	if err := c.client.Call("Dlassist.ConfigAll", ConfigAllRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification triggers a notification test via the daemon.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	var resp TestNotificationResponse
	if err := c.client.Call("Dlassist.TestNotification", TestNotificationRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
