package cmd

import (
	"context"
	"errors"
	"fmt"
	"go/scanner"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/cottand/pixl/frontend/ir"
	"github.com/cottand/pixl/pixl"
)

const historyFile = ".pixl_history"

var errQuit = errors.New("quit")

// NewReplCmd starts an interactive session. Inputs declared in one entry
// stay declared for the following ones.
func NewReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "repl",
		Short:        "Simplify and evaluate programs interactively",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := compileOptions(cmd, "<repl>")
			if err != nil {
				return err
			}
			return runRepl(cmd.Context(), newSession(opts, cmd.OutOrStdout()))
		},
	}
}

func runRepl(ctx context.Context, s *session) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}
	defer func() {
		if histPath == "" {
			return
		}
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Fprintln(s.out, "pixl repl, :help for commands")
	for {
		src, ok := readEntry(ln, "pixl> ", "  ... ")
		if !ok {
			return nil
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		if err := s.handle(ctx, src); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			fmt.Fprintln(s.out, err)
		}
	}
}

// readEntry keeps reading lines while brackets are left open.
func readEntry(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder
	for {
		p := prompt
		if b.Len() > 0 {
			p = cont
		}
		line, err := ln.Prompt(p)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// aborted with ctrl-c, drop what was typed
			return "", true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if !incomplete(b.String()) {
			return b.String(), true
		}
	}
}

// incomplete reports whether src has more opening than closing brackets.
func incomplete(src string) bool {
	fset := token.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(src))
	var s scanner.Scanner
	s.Init(file, []byte(src), nil, 0)
	depth := 0
	for {
		_, tok, _ := s.Scan()
		switch tok {
		case token.EOF:
			return depth > 0
		case token.LBRACE, token.LPAREN, token.LBRACK:
			depth++
		case token.RBRACE, token.RPAREN, token.RBRACK:
			depth--
		}
	}
}

type session struct {
	opts   pixl.Options
	inputs []*ir.Declare
	values map[string]int64
	out    io.Writer
}

func newSession(opts pixl.Options, out io.Writer) *session {
	return &session{opts: opts, values: map[string]int64{}, out: out}
}

const replHelp = `Enter statements or an expression. Declared inputs are kept between entries.
  :set name=value   give an input a value, so that expressions are evaluated
  :inputs           list declared inputs and their values
  :reset            forget every input
  :quit             leave`

func (s *session) handle(ctx context.Context, src string) error {
	line := strings.TrimSpace(src)
	if strings.HasPrefix(line, ":") {
		return s.command(line)
	}
	opts := s.opts
	opts.Inputs = s.inputs
	p, err := pixl.Compile(ctx, []byte(src), opts)
	if err != nil {
		return err
	}
	known := len(s.inputs)
	s.inputs = p.Inputs()

	newInputs := make(map[string]bool)
	for _, d := range s.inputs[known:] {
		newInputs[d.Name] = true
	}
	for _, f := range p.Facts() {
		if newInputs[f.Name] {
			fmt.Fprintf(s.out, "%s %s: %s %s\n", f.Name, f.Type, f.Bounds, f.Alignment)
		}
	}
	if p.Simplified.Result != nil {
		fmt.Fprintf(s.out, "%s : %v %v\n", ir.ExprString(p.Simplified.Result), p.Simplified.Result.Type(), p.Result)
	}
	if !s.allSet() {
		return nil
	}
	res, err := p.Eval(s.values)
	if err != nil {
		return err
	}
	return printEvaluation(s.out, res)
}

func (s *session) allSet() bool {
	for _, d := range s.inputs {
		if _, ok := s.values[d.Name]; !ok {
			return false
		}
	}
	return true
}

func (s *session) command(line string) error {
	name, arg := line, ""
	if i := strings.IndexByte(line, ' '); i >= 0 {
		name, arg = line[:i], strings.TrimSpace(line[i+1:])
	}
	switch name {
	case ":quit", ":q":
		return errQuit
	case ":help":
		fmt.Fprintln(s.out, replHelp)
	case ":reset":
		s.inputs = nil
		s.values = map[string]int64{}
	case ":inputs":
		for _, d := range s.inputs {
			value := "unset"
			if v, ok := s.values[d.Name]; ok {
				value = fmt.Sprint(v)
			}
			fmt.Fprintf(s.out, "%s %v %v = %s\n", d.Name, d.T, d.Bounds, value)
		}
	case ":set":
		n, v, err := parseAssignment(arg)
		if err != nil {
			return err
		}
		if !slices.ContainsFunc(s.inputs, func(d *ir.Declare) bool { return d.Name == n }) {
			return fmt.Errorf("no input '%s' was declared", n)
		}
		s.values[n] = v
	default:
		return fmt.Errorf("unknown command %s, try :help", name)
	}
	return nil
}
