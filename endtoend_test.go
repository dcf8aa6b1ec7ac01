package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cottand/pixl/pixl"
	"github.com/cottand/pixl/util"
)

// embeds the test folder
//
//go:embed test
var testSet embed.FS

// A program under test starts with directives, one per line:
//
//	//pixl:test x=1, y=2 -> expected
//	//pixl:result [0, 10]
//
// expected is the stores of the run as buf[i]=v followed by the result,
// separated by spaces, or abort when an assertion must fail. result is what
// the simplifier must know about the final expression.
type directives struct {
	runs   []run
	result string
}

type run struct {
	inputs   map[string]int64
	expected string
}

func parseDirectives(t *testing.T, src string) directives {
	var d directives
	for _, line := range strings.Split(src, "\n") {
		switch {
		case strings.HasPrefix(line, "//pixl:test "):
			d.runs = append(d.runs, parseRun(t, strings.TrimPrefix(line, "//pixl:test ")))
		case strings.HasPrefix(line, "//pixl:result "):
			d.result = strings.TrimPrefix(line, "//pixl:result ")
		}
	}
	if len(d.runs) == 0 {
		t.Fatalf("no //pixl:test directive")
	}
	return d
}

func parseRun(t *testing.T, s string) run {
	args, expected, found := strings.Cut(s, "->")
	if !found {
		t.Fatalf("could not parse directive: '%v'", s)
	}
	r := run{inputs: map[string]int64{}, expected: strings.TrimSpace(expected)}
	for _, arg := range strings.Split(args, ",") {
		if strings.TrimSpace(arg) == "" {
			continue
		}
		name, value := util.StringTakeUntil(arg, '=')
		v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		require.NoError(t, err, "in directive '%v'", s)
		r.inputs[strings.TrimSpace(name)] = v
	}
	return r
}

func render(res *pixl.Evaluation) string {
	var parts []string
	for _, buffer := range slices.Sorted(maps.Keys(res.Memory)) {
		for _, index := range slices.Sorted(maps.Keys(res.Memory[buffer])) {
			parts = append(parts, fmt.Sprintf("%s[%d]=%d", buffer, index, res.Memory[buffer][index]))
		}
	}
	if res.Result != nil {
		parts = append(parts, res.Result.String())
	}
	return strings.Join(parts, " ")
}

func TestEndToEnd(t *testing.T) {
	files, err := testSet.ReadDir("test")
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".pxl") {
			continue
		}
		t.Run(f.Name(), func(t *testing.T) {
			content, err := testSet.ReadFile("test/" + f.Name())
			require.NoError(t, err)
			d := parseDirectives(t, string(content))

			opts := pixl.DefaultOptions()
			opts.Filename = f.Name()
			p, err := pixl.Compile(context.Background(), content, opts)
			require.NoError(t, err)
			if d.result != "" {
				assert.Equal(t, d.result, p.Result.String())
			}

			for _, r := range d.runs {
				simplified, err := p.Eval(r.inputs)
				source, errSource := p.EvalSource(r.inputs)
				if r.expected == "abort" {
					var runtimeErr *pixl.RuntimeError
					assert.True(t, errors.As(err, &runtimeErr), "inputs %v: expected abort, got %v", r.inputs, err)
					assert.True(t, errors.As(errSource, &runtimeErr), "inputs %v: expected abort from source, got %v", r.inputs, errSource)
					continue
				}
				require.NoError(t, err, "inputs %v, program:\n%v", r.inputs, p)
				require.NoError(t, errSource, "inputs %v", r.inputs)
				assert.Equal(t, r.expected, render(simplified), "inputs %v, program:\n%v", r.inputs, p)
				assert.Equal(t, r.expected, render(source), "inputs %v", r.inputs)
			}
		})
	}
}
