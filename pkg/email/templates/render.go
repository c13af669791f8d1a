// Package templates holds the templ components for outbound notification
// emails. Components are built programmatically with templ.ComponentFunc so
// message shapes stay close to the payloads that feed them.
package templates

import (
	"context"
	"strings"

	"github.com/a-h/templ"
)

// Render renders a templ component to a string.
func Render(ctx context.Context, tpl templ.Component) (string, error) {
	var sb strings.Builder
	if err := tpl.Render(ctx, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}
