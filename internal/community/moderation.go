package community

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ScanResult is the advisory outcome of scanning submitted text.
type ScanResult struct {
	Flagged bool   `json:"flagged"`
	Reason  string `json:"reason,omitempty"`
}

// ContentScanner inspects free text before it is stored. Results are advisory:
// callers mark flagged content for review and never reject the submission.
type ContentScanner interface {
	Scan(ctx context.Context, text string) (ScanResult, error)
}

// DenyRule is a deny-listed term or phrase with the reason shown to moderators.
type DenyRule struct {
	Term   string `yaml:"term"`
	Reason string `yaml:"reason"`
}

type rulesFile struct {
	Rules []DenyRule `yaml:"rules"`
}

const defaultDenyReason = "contains deny-listed language"

// RulesFromTerms turns plain terms into rules with the default reason.
func RulesFromTerms(terms []string) []DenyRule {
	out := make([]DenyRule, 0, len(terms))
	for _, t := range terms {
		out = append(out, DenyRule{Term: t})
	}
	return out
}

// LoadDenyRules reads a YAML rules file of the form:
//
//	rules:
//	  - term: scam
//	    reason: possible fraud
func LoadDenyRules(path string) ([]DenyRule, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read moderation rules: %w", err)
	}
	var f rulesFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse moderation rules: %w", err)
	}
	return f.Rules, nil
}

type compiledRule struct {
	tokens []string
	reason string
}

// KeywordScanner flags text containing any deny-listed term as whole words,
// after Unicode normalization and case folding.
type KeywordScanner struct {
	rules []compiledRule
}

// NewKeywordScanner compiles rules, skipping blank terms.
func NewKeywordScanner(rules []DenyRule) *KeywordScanner {
	s := &KeywordScanner{}
	for _, r := range rules {
		tokens := tokenize(r.Term)
		if len(tokens) == 0 {
			continue
		}
		reason := strings.TrimSpace(r.Reason)
		if reason == "" {
			reason = defaultDenyReason
		}
		s.rules = append(s.rules, compiledRule{tokens: tokens, reason: reason})
	}
	return s
}

// Scan reports the first matching rule.
func (s *KeywordScanner) Scan(_ context.Context, text string) (ScanResult, error) {
	if len(s.rules) == 0 {
		return ScanResult{}, nil
	}
	words := tokenize(text)
	for _, r := range s.rules {
		if containsSequence(words, r.tokens) {
			return ScanResult{Flagged: true, Reason: r.reason}, nil
		}
	}
	return ScanResult{}, nil
}

func containsSequence(words, seq []string) bool {
	for i := 0; i+len(seq) <= len(words); i++ {
		match := true
		for j := range seq {
			if words[i+j] != seq[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
