package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"github.com/breez/lnsign/rpc/codes"
	"github.com/breez/lnsign/rpc/jsonrpc"
	"github.com/breez/lnsign/rpc/status"
	"golang.org/x/exp/slices"
)

var ErrAlreadyServing = errors.New("rpc: already serving")
var BadMessageFormatError string = "bad message format"
var InternalError string = "internal error"
var DefaultMaxSimultaneousRequests = 25

// Message is a single json-rpc message exchanged with a client.
type Message struct {
	ClientId string
	Data     []byte
}

// Transport delivers messages to and from clients. Recv returning io.EOF or
// context.Canceled stops the server.
type Transport interface {
	Recv() (*Message, error)
	Send(*Message) error
}

// ServiceDesc and is constructed from it for internal purposes.
type serviceInfo struct {
	// Contains the implementation for the methods in this service.
	serviceImpl interface{}
	methods     map[string]*MethodDesc
}

type methodInfo struct {
	service *serviceInfo
	method  *MethodDesc
}

type Server struct {
	mu                      sync.Mutex
	serve                   bool
	maxSimultaneousRequests int
	services                map[string]*serviceInfo
	methods                 map[string]*methodInfo
}

func NewServer(maxSimultaneousRequests int) *Server {
	if maxSimultaneousRequests <= 0 {
		maxSimultaneousRequests = DefaultMaxSimultaneousRequests
	}

	return &Server{
		maxSimultaneousRequests: maxSimultaneousRequests,
		services:                make(map[string]*serviceInfo),
		methods:                 make(map[string]*methodInfo),
	}
}

// Serve handles requests from lis until the transport is closed or ctx is
// done. Requests in flight are finished before Serve returns.
func (s *Server) Serve(ctx context.Context, lis Transport) error {
	s.mu.Lock()
	if s.serve {
		s.mu.Unlock()
		return ErrAlreadyServing
	}
	s.serve = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.serve = false
		s.mu.Unlock()
	}()

	var wg sync.WaitGroup
	defer wg.Wait()

	guard := make(chan struct{}, s.maxSimultaneousRequests)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		msg, err := lis.Recv()
		if err != nil {
			if err == io.EOF {
				log.Printf("rpc: transport closed, stopping.")
				return nil
			}
			if errors.Is(err, context.Canceled) {
				log.Printf("rpc: lis got canceled, stopping.")
				return err
			}

			log.Printf("rpc Serve(): Recv() err != nil: %v", err)
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
			}
			continue
		}

		// Make sure there are no 0 bytes
		if slices.Contains(msg.Data, 0x00) {
			log.Printf("UNUSUAL: Got message containing 0 bytes from client '%s'.", msg.ClientId)
			sendError(lis, msg, nil, status.New(codes.ParseError, BadMessageFormatError))
			continue
		}

		req := new(jsonrpc.Request)
		err = json.Unmarshal(msg.Data, req)
		if err != nil {
			log.Printf("UNUSUAL: Failed to unmarshal message from client '%s': %v", msg.ClientId, err)
			sendError(lis, msg, nil, status.New(codes.ParseError, BadMessageFormatError))
			continue
		}

		if req.JsonRpc != jsonrpc.Version {
			log.Printf("UNUSUAL: jsonrpc version is '%s' in message from client '%s'", req.JsonRpc, msg.ClientId)
			sendError(lis, msg, req, status.Newf(codes.InvalidRequest, "Expected jsonrpc %s, found %s", jsonrpc.Version, req.JsonRpc))
			continue
		}

		m, ok := s.methods[req.Method]
		if !ok {
			log.Printf("UNUSUAL: client '%s' requested method '%s', but it does not exist.", msg.ClientId, req.Method)
			sendError(lis, msg, req, status.New(codes.MethodNotFound, "method not found"))
			continue
		}

		// Deserialization step of the request params. This function is called
		// by method handlers of service implementations to deserialize the
		// typed request object.
		df := func(v interface{}) error {
			params := req.Params
			if len(params) == 0 {
				params = []byte("{}")
			}
			if err := json.Unmarshal(params, v); err != nil {
				return status.Newf(codes.InvalidParams, "invalid params").Err()
			}

			return nil
		}

		// Will block if the guard queue is already filled to ensure
		// maxSimultaneousRequests is not exceeded.
		guard <- struct{}{}
		wg.Add(1)

		// NOTE: The handler is being called asynchonously. This may cause the
		// order of responses to be different from the order in which requests
		// were received.
		go func() {
			// Releases a queued item in the guard, to release a spot for
			// another simultaneous request.
			defer func() {
				<-guard
				wg.Done()
			}()

			// Call the method handler for the requested method.
			r, err := m.method.Handler(m.service.serviceImpl, ctx, df)
			if err != nil {
				st, ok := status.FromError(err)
				if !ok {
					log.Printf("Internal error when processing message '%s' from client '%s': %v", string(msg.Data), msg.ClientId, err)
					st = status.New(codes.InternalError, InternalError)
				}

				sendError(lis, msg, req, st)
				return
			}

			sendResponse(lis, msg, req, r)
		}()
	}
}

func sendResponse(
	lis Transport,
	in *Message,
	req *jsonrpc.Request,
	params interface{},
) {
	rd, err := json.Marshal(params)
	if err != nil {
		log.Printf("Failed to mashal response params '%+v'", params)
		sendError(lis, in, req, status.New(codes.InternalError, InternalError))
		return
	}

	resp := &jsonrpc.Response{
		JsonRpc: jsonrpc.Version,
		Id:      req.Id,
		Result:  rd,
	}
	res, err := json.Marshal(resp)
	if err != nil {
		log.Printf("Failed to mashal response '%+v'", resp)
		sendError(lis, in, req, status.New(codes.InternalError, InternalError))
		return
	}

	msg := &Message{
		ClientId: in.ClientId,
		Data:     res,
	}

	err = lis.Send(msg)
	if err != nil {
		log.Printf("Failed to send response message '%s' to request '%s' to client '%s': %v", string(msg.Data), string(in.Data), msg.ClientId, err)
		return
	}
}

func sendError(
	lis Transport,
	in *Message,
	req *jsonrpc.Request,
	status *status.Status,
) {
	var id json.RawMessage
	if req != nil && len(req.Id) > 0 {
		id = req.Id
	}
	resp := &jsonrpc.Error{
		JsonRpc: jsonrpc.Version,
		Id:      id,
		Error: jsonrpc.ErrorBody{
			Code:    int32(status.Code),
			Message: status.Message,
			Data:    nil,
		},
	}

	res, err := json.Marshal(resp)
	if err != nil {
		log.Printf("Failed to mashal response '%+v'", resp)
		return
	}

	msg := &Message{
		ClientId: in.ClientId,
		Data:     res,
	}

	err = lis.Send(msg)
	if err != nil {
		log.Printf("Failed to send message '%s' to client '%s': %v", string(msg.Data), msg.ClientId, err)
		return
	}
}

func (s *Server) RegisterService(desc *ServiceDesc, impl interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log.Printf("RegisterService(%q)", desc.ServiceName)
	if s.serve {
		log.Fatalf("rpc: Server.RegisterService after Server.Serve for %q", desc.ServiceName)
	}
	if _, ok := s.services[desc.ServiceName]; ok {
		log.Fatalf("rpc: Server.RegisterService found duplicate service registration for %q", desc.ServiceName)
	}
	info := &serviceInfo{
		serviceImpl: impl,
		methods:     make(map[string]*MethodDesc),
	}
	for i := range desc.Methods {
		d := &desc.Methods[i]
		if _, ok := s.methods[d.MethodName]; ok {
			log.Fatalf("rpc: Server.RegisterService found duplicate method registration for %q", d.MethodName)
		}
		info.methods[d.MethodName] = d
		s.methods[d.MethodName] = &methodInfo{
			service: info,
			method:  d,
		}
	}
	s.services[desc.ServiceName] = info
}

type ServiceDesc struct {
	ServiceName string
	// The pointer to the service interface. Used to check whether the user
	// provided implementation satisfies the interface requirements.
	HandlerType interface{}
	Methods     []MethodDesc
}

type MethodDesc struct {
	MethodName string
	Handler    methodHandler
}

type methodHandler func(srv interface{}, ctx context.Context, dec func(interface{}) error) (interface{}, error)

// ServiceRegistrar wraps a single method that supports service registration.
type ServiceRegistrar interface {
	// RegisterService registers a service and its implementation to the
	// concrete type implementing this interface. It may not be called
	// once the server has started serving.
	RegisterService(desc *ServiceDesc, impl interface{})
}
