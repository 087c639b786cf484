package jsonrpc

import "encoding/json"

var Version = "2.0"

// Ids are kept raw, so numeric and string ids are echoed back unchanged.
type Request struct {
	JsonRpc string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Id      json.RawMessage `json:"id,omitempty"`
	Params  json.RawMessage `json:"params"`
}

type Response struct {
	JsonRpc string          `json:"jsonrpc"`
	Id      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
}

type Error struct {
	JsonRpc string          `json:"jsonrpc"`
	Id      json.RawMessage `json:"id"`
	Error   ErrorBody       `json:"error"`
}

type ErrorBody struct {
	Code    int32           `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}
