package iocli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Stdio читает из in и пишет в out. Если in терминал, пароль читается без эха.
type Stdio struct {
	reader *bufio.Reader
	out    io.Writer
	fd     int
	isTerm bool
}

// NewStdio создает IO поверх os.Stdin/os.Stdout
func NewStdio() IO {
	fd := int(os.Stdin.Fd())
	return &Stdio{
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		fd:     fd,
		isTerm: term.IsTerminal(fd),
	}
}

// NewStreams создает IO поверх произвольных потоков (пайпы, тесты)
func NewStreams(in io.Reader, out io.Writer) IO {
	return &Stdio{
		reader: bufio.NewReader(in),
		out:    out,
		fd:     -1,
	}
}

func (s *Stdio) Println(a ...any) {
	_, _ = fmt.Fprintln(s.out, a...)
}

func (s *Stdio) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(s.out, format, a...)
}

func (s *Stdio) Write(p []byte) (int, error) {
	return s.out.Write(p)
}

func (s *Stdio) ReadInput(prompt string) (string, error) {
	s.Printf("%s", prompt)
	return s.readLine()
}

func (s *Stdio) ReadPassword(prompt string) (string, error) {
	s.Printf("%s", prompt)
	if !s.isTerm {
		return s.readLine()
	}

	pwBytes, err := term.ReadPassword(s.fd)
	s.Println("")
	if err != nil {
		return "", err
	}
	return string(pwBytes), nil
}

// readLine читает строку; последняя строка без перевода строки тоже валидна
func (s *Stdio) readLine() (string, error) {
	input, err := s.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && input != "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
