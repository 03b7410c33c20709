package main

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type exampleHeader struct {
	args   []string
	expect string
}

// readExampleHeader collects the "; args:" and "; expect:" lines at the
// top of an example program.
func readExampleHeader(t *testing.T, path string) exampleHeader {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	var h exampleHeader
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, ";") {
			break
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, ";"))
		if rest, ok := strings.CutPrefix(line, "args:"); ok {
			h.args = strings.Fields(rest)
		} else if rest, ok := strings.CutPrefix(line, "expect:"); ok {
			h.expect = strings.TrimSpace(rest)
		}
	}
	require.NoError(t, scanner.Err())
	require.NotEmpty(t, h.expect, "%s has no expect line", path)
	return h
}

func TestExamples(t *testing.T) {
	paths, err := filepath.Glob("../../examples/*.lasm")
	require.NoError(t, err)
	require.NotEmpty(t, paths)
	for _, path := range paths {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			h := readExampleHeader(t, path)
			out, _, err := execute(t, "", append([]string{"run", path}, h.args...)...)
			require.NoError(t, err)
			require.Equal(t, h.expect+"\n", out)
		})
	}
}
