package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/rryowa/foodsafer/internal/client"
	"github.com/rryowa/foodsafer/internal/models"
)

type command interface {
	summary() string
	bind(fs *pflag.FlagSet)
	run(ctx context.Context, c *client.Client, args []string, out io.Writer) error
}

func commands() map[string]command {
	return map[string]command{
		"login":   &loginCmd{},
		"logout":  &logoutCmd{},
		"refresh": &refreshCmd{},
		"whoami":  &whoamiCmd{},
		"query":   &queryCmd{},
		"command": &commandCmd{},
	}
}

type loginCmd struct {
	email    string
	password string
}

func (*loginCmd) summary() string { return "sign in and store the token pair" }

func (l *loginCmd) bind(fs *pflag.FlagSet) {
	fs.StringVarP(&l.email, "email", "e", "", "account email")
	fs.StringVarP(&l.password, "password", "p", os.Getenv("FOODSAFER_PASSWORD"), "account password (prompted when empty)")
}

func (l *loginCmd) run(ctx context.Context, c *client.Client, _ []string, out io.Writer) error {
	if l.email == "" {
		return fmt.Errorf("--email is required")
	}
	if l.password == "" {
		password, err := readPassword(out)
		if err != nil {
			return err
		}
		l.password = password
	}

	if err := c.Login(ctx, l.email, l.password); err != nil {
		return err
	}
	fmt.Fprintln(out, "Logged in as", l.email)
	return nil
}

type logoutCmd struct{}

func (*logoutCmd) summary() string { return "end the session and forget the tokens" }

func (*logoutCmd) bind(*pflag.FlagSet) {}

func (*logoutCmd) run(ctx context.Context, c *client.Client, _ []string, out io.Writer) error {
	if err := c.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, "Logged out")
	return nil
}

type refreshCmd struct{}

func (*refreshCmd) summary() string { return "exchange the refresh token for a new pair" }

func (*refreshCmd) bind(*pflag.FlagSet) {}

func (*refreshCmd) run(ctx context.Context, c *client.Client, _ []string, out io.Writer) error {
	if err := c.Refresh(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, "Tokens refreshed")
	return nil
}

type whoamiCmd struct{}

func (*whoamiCmd) summary() string { return "show the signed-in profile" }

func (*whoamiCmd) bind(*pflag.FlagSet) {}

func (*whoamiCmd) run(ctx context.Context, c *client.Client, _ []string, out io.Writer) error {
	profile, err := client.Query[models.Profile](ctx, c, "me", nil)
	if err != nil {
		return err
	}
	if profile == nil {
		return fmt.Errorf("empty profile")
	}
	fmt.Fprintf(out, "%s (id %d)\n", profile.Email, profile.ID)
	return nil
}

type queryCmd struct {
	params []string
}

func (*queryCmd) summary() string { return "GET /queries/<name> and print the result" }

func (q *queryCmd) bind(fs *pflag.FlagSet) {
	fs.StringArrayVar(&q.params, "param", nil, "query parameter as key=value (repeatable)")
}

func (q *queryCmd) run(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("query takes exactly one name")
	}
	params, err := parseParams(q.params)
	if err != nil {
		return err
	}

	raw, err := client.Query[json.RawMessage](ctx, c, args[0], params)
	if err != nil {
		return err
	}
	return printResult(out, raw)
}

type commandCmd struct {
	data string
}

func (*commandCmd) summary() string { return "POST /commands/<name> with a JSON body" }

func (cc *commandCmd) bind(fs *pflag.FlagSet) {
	fs.StringVarP(&cc.data, "data", "d", "", "JSON request body")
}

func (cc *commandCmd) run(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("command takes exactly one name")
	}

	var body any
	if cc.data != "" {
		if !json.Valid([]byte(cc.data)) {
			return fmt.Errorf("--data is not valid JSON")
		}
		body = json.RawMessage(cc.data)
	}

	raw, err := client.Command[json.RawMessage](ctx, c, args[0], body)
	if err != nil {
		return err
	}
	return printResult(out, raw)
}

func parseParams(pairs []string) (url.Values, error) {
	params := url.Values{}
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --param %q, want key=value", p)
		}
		params.Add(key, value)
	}
	return params, nil
}

func printResult(out io.Writer, raw *json.RawMessage) error {
	if raw == nil {
		return nil
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, *raw, "", "  "); err != nil {
		return fmt.Errorf("format result: %w", err)
	}
	buf.WriteByte('\n')

	_, err := buf.WriteTo(out)
	return err
}

func readPassword(out io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(out, "Password: ")
		password, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(password), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
