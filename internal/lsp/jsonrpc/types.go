package jsonrpc

import (
	"encoding/json"
	"fmt"
)

const JSONRPC_VERSION = "2.0"

type BaseMessage struct {
	Jsonrpc string `json:"jsonrpc"`
}

type RequestMessage struct {
	BaseMessage
	ID     interface{}     `json:"id"` // may be int or string
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"` // params, is some struct or slice
}

type NotificationMessage struct {
	BaseMessage
	Method string          `json:"method"` // starts with "/$", server build-in methods.
	Params json.RawMessage `json:"params"` // params, is some struct or slice
}

type ResponseMessage struct {
	BaseMessage
	ID     interface{}     `json:"id"` // may be int or string
	Result interface{}    `json:"result"`
	Error  *ResponseError `json:"error"`
}

// incomingMessage is the union of the messages a peer can send: requests and notifications
// carry a method, responses to server-initiated requests carry a result or an error.
type incomingMessage struct {
	BaseMessage
	ID     interface{}     `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
	Result json.RawMessage `json:"result"`
	Error  *ResponseError  `json:"error"`
}

func (m incomingMessage) isResponse() bool {
	return m.Method == "" && m.ID != nil
}

type ResponseError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func (r ResponseError) Error() string {
	return fmt.Sprintf("code: %d, message: %s, data: %v", r.Code, r.Message, r.Data)
}

const (
	ParseErrorCode       = -32700
	InvalidRequestCode   = -32600
	MethodNotFoundCode   = -32601
	InvalidParamsCode    = -32602
	InternalErrorCode    = -32603
	RequestCancelledCode = -32800
)

var (
	ParseError       = ResponseError{Code: ParseErrorCode, Message: "ParseError"}
	InvalidRequest   = ResponseError{Code: InvalidRequestCode, Message: "InvalidRequest"}
	MethodNotFound   = ResponseError{Code: MethodNotFoundCode, Message: "MethodNotFound"}
	InvalidParams    = ResponseError{Code: InvalidParamsCode, Message: "InvalidParams"}
	InternalError    = ResponseError{Code: InternalErrorCode, Message: "InternalError"}
	RequestCancelled = ResponseError{Code: RequestCancelledCode, Message: "RequestCancelled"}
)
