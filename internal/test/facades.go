package test

import (
	"fmt"
	"strings"
	"sync"

	pkgAuth "github.com/polkiloo/hubsai/internal/pkg/auth"
)

// ClientTokenStub issues "token-<id>" client tokens with sequential ids.
type ClientTokenStub struct {
	mu sync.Mutex

	IssueErr error
	ParseErr error
	Issued   int
}

// IssueClientToken returns the next client id and its token.
func (s *ClientTokenStub) IssueClientToken() (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.IssueErr != nil {
		return "", "", s.IssueErr
	}
	s.Issued++
	id := fmt.Sprintf("client-%d", s.Issued)
	return id, "token-" + id, nil
}

// ParseClientToken accepts tokens produced by IssueClientToken.
func (s *ClientTokenStub) ParseClientToken(token string) (string, error) {
	if s.ParseErr != nil {
		return "", s.ParseErr
	}
	id, ok := strings.CutPrefix(token, "token-")
	if !ok || id == "" {
		return "", pkgAuth.ErrInvalidToken
	}
	return id, nil
}
