package pipeline_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var fixtureStart = time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)

// writeFlowLog writes a depth/velocity logger export with n rows at two
// minute spacing.
func writeFlowLog(t *testing.T, dir, name string, n int) string {
	t.Helper()
	lines := []string{"Timestamp,100_1|Pipe|Depth|mm,100_1|Pipe|Velocity|m/s"}
	for i := range n {
		ts := fixtureStart.Add(time.Duration(i) * 2 * time.Minute)
		lines = append(lines, fmt.Sprintf("%s,%d,%.2f", ts.Format("02/01/2006 15:04"), 100+10*i, 0.5+0.01*float64(i)))
	}
	return writeFixture(t, dir, name, lines)
}

// writeRainLog writes a tipping-bucket logger export with a single tip.
func writeRainLog(t *testing.T, dir, name string, n int) string {
	t.Helper()
	lines := []string{"Timestamp,200_1|Gauge|Rainfall|mm"}
	for i := range n {
		ts := fixtureStart.Add(time.Duration(i) * 2 * time.Minute)
		v := 0.0
		if i == n-1 {
			v = 0.2
		}
		lines = append(lines, fmt.Sprintf("%s,%.1f", ts.Format("02/01/2006 15:04"), v))
	}
	return writeFixture(t, dir, name, lines)
}

func writeFixture(t *testing.T, dir, name string, lines []string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))
	return path
}
