package oracle

import (
	"context"
	"regexp"
	"strconv"
)

var placeholderRe = regexp.MustCompile(`\bL#`)

// Echo is an offline oracle: it returns the input with every L#
// placeholder numbered in order. Useful for dry runs and local testing.
type Echo struct{}

// NewEcho creates an echo oracle.
func NewEcho() *Echo { return &Echo{} }

func (Echo) Name() string { return ProviderEcho }

func (Echo) Transform(ctx context.Context, raw string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	n := 0
	out := placeholderRe.ReplaceAllStringFunc(raw, func(string) string {
		n++
		return "L" + strconv.Itoa(n)
	})
	return cleanOutput(out)
}
