package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sitepicker/internal/metro"
)

func TestPrintMetro_ExistingMarket(t *testing.T) {
	dir := metro.DefaultDirectory()

	var buf bytes.Buffer
	require.NoError(t, printMetro(&buf, dir.Resolve("TX", "Austin"), dir.FacilitiesIn("TX")))

	out := buf.String()
	assert.Contains(t, out, "Market:          TX - Austin")
	assert.Contains(t, out, "Existing market: yes")
	assert.Contains(t, out, "Tuition:         $40,000")
	assert.Contains(t, out, "Green threshold: $6,000 per student/year")
	assert.Contains(t, out, "Houston")
}

func TestPrintMetro_UnknownState(t *testing.T) {
	dir := metro.DefaultDirectory()

	var buf bytes.Buffer
	require.NoError(t, printMetro(&buf, dir.Resolve("", ""), nil))

	out := buf.String()
	assert.Contains(t, out, "Market:          (none)")
	assert.Contains(t, out, "Tuition:         (unknown)")
	assert.Contains(t, out, "Red threshold:   $15,000 per student/year")
	assert.NotContains(t, out, "Facilities:")
}
