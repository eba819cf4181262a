package ecommerce

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/nemean-dev/cdl-admin/internal/domain/integration"
)

// stubExecutor replays queued responses and records every request
type stubExecutor struct {
	mu        sync.Mutex
	requests  []integration.Request
	responses []stubReply
}

type stubReply struct {
	data string
	err  error
}

func (s *stubExecutor) reply(data string) *stubExecutor {
	s.responses = append(s.responses, stubReply{data: data})
	return s
}

func (s *stubExecutor) fail(err error) *stubExecutor {
	s.responses = append(s.responses, stubReply{err: err})
	return s
}

func (s *stubExecutor) Execute(_ context.Context, req integration.Request) (*integration.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if len(s.responses) == 0 {
		return &integration.Response{Data: json.RawMessage(`{}`)}, nil
	}
	next := s.responses[0]
	s.responses = s.responses[1:]
	if next.err != nil {
		return nil, next.err
	}
	return &integration.Response{Data: json.RawMessage(next.data)}, nil
}
