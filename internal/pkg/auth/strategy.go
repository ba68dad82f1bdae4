package auth

import "time"

// Strategy issues and verifies client tokens. The subject is the client id.
type Strategy interface {
	IssueToken(subject string) (string, error)
	ParseToken(token string) (string, error)
	Name() string
}

type Options struct {
	TTL time.Duration
}
