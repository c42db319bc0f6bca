package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ring "solitaire/domain"
	"solitaire/internal/service/promotion/domain"
)

const rulesYAML = `
rules:
  - name: Sitewide
    percentage: "10"
    start_date: 2024-01-01
  - name: Halo spring
    design: halo
    percentage: "15"
    start_date: 2024-03-01
    end_date: 2024-03-31
  - name: Paused
    percentage: "50"
    start_date: 2024-01-01
    active: false
`

func writeRules(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadRules(t *testing.T) {
	rules, err := loadRules(writeRules(t, rulesYAML))
	require.NoError(t, err)
	require.Len(t, rules, 3)
	assert.Equal(t, ring.DesignHaloSetting, rules[1].Design)
	require.NotNil(t, rules[1].EndDate)
	assert.False(t, rules[2].Active)
	assert.Equal(t, int64(2), rules[1].ID)

	_, err = loadRules(writeRules(t, "rules:\n  - name: bad\n    percentage: lots\n    start_date: 2024-01-01\n"))
	assert.True(t, errors.Is(err, domain.ErrInvalidRule))

	_, err = loadRules(writeRules(t, "rules:\n  - name: bad\n    design: art-deco\n    percentage: \"5\"\n    start_date: 2024-01-01\n"))
	assert.True(t, errors.Is(err, domain.ErrInvalidRule))
}

func TestRunResolve(t *testing.T) {
	path := writeRules(t, rulesYAML)
	now := func() time.Time { return time.Date(2024, 4, 2, 12, 0, 0, 0, time.UTC) }

	for _, tc := range []struct {
		name, design, at, final, rule string
	}{
		{"window rule wins", "halo", "2024-03-15", "final:  6375.00", "Halo spring"},
		{"window closed", "halo", "", "final:  6750.00", "Sitewide"},
		{"other design", "three-stone", "2024-03-15T08:00:00Z", "final:  6750.00", "Sitewide"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			err := runResolve(&out, resolveOptions{
				rulesPath: path, design: tc.design, metal: "platinum", shape: "oval", carat: "1.5", at: tc.at, base: "7500",
			}, now)
			require.NoError(t, err)
			assert.Contains(t, out.String(), tc.final)
			assert.Contains(t, out.String(), tc.rule)
			assert.Contains(t, out.String(), "base:   7500.00")
		})
	}
}

func TestRunResolveRejectsInput(t *testing.T) {
	path := writeRules(t, rulesYAML)
	now := time.Now
	var out bytes.Buffer

	err := runResolve(&out, resolveOptions{rulesPath: path, design: "halo", metal: "copper", shape: "oval", carat: "1.0", base: "100"}, now)
	assert.True(t, errors.Is(err, ring.ErrInvalidAttribute))

	err = runResolve(&out, resolveOptions{rulesPath: path, design: "halo", metal: "platinum", shape: "oval", carat: "1.0", base: "cheap"}, now)
	assert.Error(t, err)

	err = runResolve(&out, resolveOptions{rulesPath: path, design: "halo", metal: "platinum", shape: "oval", carat: "1.0", base: "100", at: "yesterday"}, now)
	assert.Error(t, err)
}
