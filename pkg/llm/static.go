package llm

import (
	"context"
	"sync/atomic"
)

// StaticResponder cycles through fixed replies. It never fails and is
// safe for concurrent use.
type StaticResponder struct {
	replies []string
	next    atomic.Uint64
}

// NewStaticResponder returns a responder that answers with replies in
// order, wrapping around. With no replies it answers "".
func NewStaticResponder(replies ...string) *StaticResponder {
	return &StaticResponder{replies: append([]string(nil), replies...)}
}

// Respond implements Responder.
func (s *StaticResponder) Respond(ctx context.Context, _ Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	if len(s.replies) == 0 {
		return Response{Model: "static"}, nil
	}
	i := s.next.Add(1) - 1
	return Response{
		Content: s.replies[i%uint64(len(s.replies))],
		Model:   "static",
	}, nil
}
