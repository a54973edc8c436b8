package publish

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"gopkg.in/yaml.v3"

	"github.com/hdlforge/hdlforge/internal/logger"
)

// TokenFile is the repository-relative path of the build token consumed by
// the CI pipeline.
const TokenFile = ".ci/build-token.yaml"

// Token is the build trigger record committed to the repository. CI watches
// this file; a new token value requests builds for the listed projects.
type Token struct {
	Token     string    `yaml:"token"`
	Generated time.Time `yaml:"generated"`
	Projects  []string  `yaml:"projects"`
}

// Publisher refreshes the build token and commits it.
type Publisher struct {
	log *logger.Logger
}

// New creates a Publisher.
func New(log *logger.Logger) *Publisher {
	return &Publisher{log: log}
}

// Publish writes a fresh token naming the given projects and commits it to
// the repository at root. It returns the commit hash. Pushing is left to the
// caller's own workflow.
func (p *Publisher) Publish(root string, projects []string) (string, error) {
	repo, err := git.PlainOpen(root)
	if err != nil {
		return "", fmt.Errorf("open repository %s: %w", root, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return "", err
	}

	token, err := newTokenValue()
	if err != nil {
		return "", err
	}

	sorted := append([]string(nil), projects...)
	sort.Strings(sorted)

	record := Token{
		Token:     token,
		Generated: time.Now().UTC(),
		Projects:  sorted,
	}
	data, err := yaml.Marshal(&record)
	if err != nil {
		return "", err
	}

	tokenPath := filepath.Join(root, TokenFile)
	if err := os.MkdirAll(filepath.Dir(tokenPath), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(tokenPath, data, 0o644); err != nil {
		return "", err
	}

	if _, err := wt.Add(TokenFile); err != nil {
		return "", err
	}

	message := fmt.Sprintf("Update build token for %d project(s)", len(sorted))
	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "hdlforge",
			Email: "hdlforge@localhost",
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", err
	}

	p.log.Infof("build token committed as %s", hash.String()[:8])
	return hash.String(), nil
}

// ReadToken loads the current token file, if present.
func ReadToken(root string) (*Token, error) {
	data, err := os.ReadFile(filepath.Join(root, TokenFile))
	if err != nil {
		return nil, err
	}
	var token Token
	if err := yaml.Unmarshal(data, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// newTokenValue derives a fresh opaque token from random bytes.
func newTokenValue() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	sum := sha256.Sum256(buf)
	return hex.EncodeToString(sum[:]), nil
}
