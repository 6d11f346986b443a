package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"

	"github.com/GSMS-B/ProjectQR/internal/app/repository"
	"github.com/bits-and-blooms/bloom/v3"
)

const (
	codeAlphabet      = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	defaultCodeLength = 6
	maxCodeAttempts   = 10

	bloomExpectedCodes    = 1_000_000
	bloomFalsePositiveRat = 0.01

	// Random bytes at or above this limit are rejected; 256 is not a
	// multiple of the alphabet size, so folding them in would skew the
	// first characters.
	unbiasedByteLimit = 256 - 256%len(codeAlphabet)
)

// CodeGenerator mints unique short codes. A bloom filter seeded from the
// links table answers "definitely unused" without a round trip; only
// probable collisions hit the database.
type CodeGenerator struct {
	repo repository.LinkRepository

	mu     sync.Mutex
	filter *bloom.BloomFilter
}

// NewCodeGenerator builds a generator and seeds its filter with every
// existing short code.
func NewCodeGenerator(ctx context.Context, repo repository.LinkRepository) (*CodeGenerator, error) {
	g := &CodeGenerator{
		repo:   repo,
		filter: bloom.NewWithEstimates(bloomExpectedCodes, bloomFalsePositiveRat),
	}

	codes, err := repo.AllCodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("shortcode: seed filter: %w", err)
	}
	for _, code := range codes {
		g.filter.AddString(code)
	}

	return g, nil
}

// Generate returns an unused short code, growing the length when a run of
// collisions suggests the space at the current length is crowded.
func (g *CodeGenerator) Generate(ctx context.Context) (string, error) {
	length := defaultCodeLength
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := randomCode(length)
		if err != nil {
			return "", err
		}

		g.mu.Lock()
		maybeUsed := g.filter.TestString(code)
		g.mu.Unlock()

		if maybeUsed {
			// Possible false positive; confirm against the table.
			exists, err := g.repo.CodeExists(ctx, code)
			if err != nil {
				return "", fmt.Errorf("shortcode: existence check: %w", err)
			}
			if exists {
				if attempt >= maxCodeAttempts/2 {
					length++
				}
				continue
			}
		}

		g.Reserve(code)
		return code, nil
	}
	return "", fmt.Errorf("shortcode: exhausted %d attempts", maxCodeAttempts)
}

// Reserve marks a code as used, covering custom codes supplied by callers.
func (g *CodeGenerator) Reserve(code string) {
	g.mu.Lock()
	g.filter.AddString(code)
	g.mu.Unlock()
}

func randomCode(length int) (string, error) {
	out := make([]byte, 0, length)
	raw := make([]byte, length)
	for len(out) < length {
		if _, err := rand.Read(raw); err != nil {
			return "", fmt.Errorf("shortcode: read random: %w", err)
		}
		for _, b := range raw {
			idx, ok := alphabetIndex(b)
			if !ok {
				continue
			}
			out = append(out, codeAlphabet[idx])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}

// alphabetIndex maps one random byte onto the alphabet, rejecting the tail
// of the byte range so every character is equally likely.
func alphabetIndex(b byte) (int, bool) {
	if int(b) >= unbiasedByteLimit {
		return 0, false
	}
	return int(b) % len(codeAlphabet), true
}
