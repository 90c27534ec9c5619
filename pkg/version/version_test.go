package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	prev := current
	t.Cleanup(func() { current = prev })

	Set("v1.4.0", "9f2c1e0", "2026-03-02")
	assert.Equal(t, Info{Version: "v1.4.0", Commit: "9f2c1e0", BuildDate: "2026-03-02"}, Get())
	assert.Equal(t, "v1.4.0", Version())
	assert.Equal(t, "ferry/1.4.0", UserAgent())

	Set(" ", "", "2026-03-03")
	assert.Equal(t, "v1.4.0", Version())
	assert.Equal(t, "9f2c1e0", Get().Commit)
	assert.Equal(t, "2026-03-03", Get().BuildDate)
}

func TestInfo_String(t *testing.T) {
	out := Info{Version: "dev", Commit: "unknown", BuildDate: "unknown"}.String()

	assert.Contains(t, out, "ferry dev\n")
	assert.Contains(t, out, "Commit: unknown\n")
	assert.Contains(t, out, "Go: "+runtime.Version())
}
