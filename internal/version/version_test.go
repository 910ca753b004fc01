package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetVersionWithCommit(t *testing.T) {
	old := Commit
	Commit = "abc1234"
	t.Cleanup(func() { Commit = old })

	assert.Equal(t, Version+"+abc1234", GetVersion())
}

func TestUserAgent(t *testing.T) {
	ua := UserAgent("hubctl")

	assert.True(t, strings.HasPrefix(ua, "hubctl/"+Version), ua)
	assert.Contains(t, ua, ProjectURL)
}
