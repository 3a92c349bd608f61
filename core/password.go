package core

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyPassword is returned when an empty plaintext is offered for hashing.
var ErrEmptyPassword = errors.New("empty password")

// PasswordHasher hashes plaintext passwords and verifies candidates against
// stored hashes.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// BcryptHasher implements PasswordHasher with a configurable work factor.
// Each Hash call uses a fresh random salt, so equal inputs produce distinct
// hashes. Verify relies on bcrypt's constant-time comparison.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (h *BcryptHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// HashPool bounds concurrent bcrypt work so a burst of expensive hash calls
// cannot monopolize the process. Slot acquisition honors ctx cancellation.
type HashPool struct {
	hasher PasswordHasher
	slots  chan struct{}
}

func NewHashPool(hasher PasswordHasher, concurrency int) *HashPool {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &HashPool{
		hasher: hasher,
		slots:  make(chan struct{}, concurrency),
	}
}

func (p *HashPool) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := p.acquire(ctx); err != nil {
		return "", err
	}
	defer p.release()
	return p.hasher.Hash(plaintext)
}

func (p *HashPool) Verify(ctx context.Context, plaintext, hash string) (bool, error) {
	if err := p.acquire(ctx); err != nil {
		return false, err
	}
	defer p.release()
	return p.hasher.Verify(plaintext, hash), nil
}

func (p *HashPool) acquire(ctx context.Context) error {
	select {
	case p.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *HashPool) release() {
	<-p.slots
}
