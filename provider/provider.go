// Copyright 2024 The sierra-analyzer Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package provider fetches contract classes from a Starknet JSON-RPC
// node.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Default RPC endpoints per network.
const (
	MainnetAPIURL = "https://starknet-mainnet.public.blastapi.io/rpc/v0_7"
	SepoliaAPIURL = "https://starknet-sepolia.public.blastapi.io/rpc/v0_7"
)

// Client is a minimal Starknet JSON-RPC client.
type Client struct {
	endpoint string
	httpc    *http.Client
}

// NewClient creates a client for the given RPC endpoint.
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		httpc:    &http.Client{Timeout: 30 * time.Second},
	}
}

// ForNetwork returns a client for a named network (mainnet or sepolia).
func ForNetwork(network string) (*Client, error) {
	switch network {
	case "mainnet":
		return NewClient(MainnetAPIURL), nil
	case "sepolia":
		return NewClient(SepoliaAPIURL), nil
	}
	return nil, errors.Errorf("unsupported network type %q", network)
}

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      int         `json:"id"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// GetClass downloads the contract class declared under classHash at the
// latest block and returns the raw class JSON.
func (c *Client) GetClass(ctx context.Context, classHash string) (json.RawMessage, error) {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "starknet_getClass",
		Params: map[string]interface{}{
			"block_id":   "latest",
			"class_hash": classHash,
		},
		ID: 1,
	})
	if err != nil {
		return nil, errors.Wrap(err, "encoding request")
	}

	logrus.WithFields(logrus.Fields{
		"endpoint":   c.endpoint,
		"class_hash": classHash,
	}).Debug("fetching contract class")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "calling RPC")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading RPC response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("RPC status %s", resp.Status)
	}

	var decoded rpcResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, errors.Wrap(err, "decoding RPC response")
	}
	if decoded.Error != nil {
		return nil, errors.Errorf("RPC error %d: %s", decoded.Error.Code, decoded.Error.Message)
	}
	return decoded.Result, nil
}
