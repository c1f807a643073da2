//go:build dreaddebug

package domain

func init() {
	debugAssertions = true
}
