package gateway

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/haivivi/sduigate/pkg/cli"
	"github.com/haivivi/sduigate/pkg/sdui"
)

// Console is the optional line-oriented operator console. It can inspect
// sessions and push layouts, updates, or raw frames to any connected
// terminal while the gateway runs.
type Console struct {
	log      *slog.Logger
	registry *Registry
	in       io.Reader
	out      io.Writer
	styles   cli.Styles
}

// NewConsole creates a console reading commands from in and printing to
// out.
func NewConsole(registry *Registry, in io.Reader, out io.Writer, log *slog.Logger) *Console {
	if log == nil {
		log = slog.Default()
	}
	return &Console{
		log:      log,
		registry: registry,
		in:       in,
		out:      out,
		styles:   cli.NewStyles(cli.DefaultTheme),
	}
}

const consoleHelp = `Commands:
  sessions                        List known sessions
  layout <device>                 Re-send the full layout
  update <device> <widget> <text> Update a widget's text
  hide <device> <widget>          Hide a widget
  show <device> <widget>          Show a widget
  raw <device> <json>             Send a raw frame
  help                            Show this help`

// Run reads commands until in is exhausted.
func (c *Console) Run() error {
	fmt.Fprintln(c.out, c.styles.Help.Render("operator console ready, type 'help' for commands"))

	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		c.exec(line)
	}
	return scanner.Err()
}

func (c *Console) exec(line string) {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "help":
		fmt.Fprintln(c.out, c.styles.Help.Render(consoleHelp))

	case "sessions":
		infos := c.registry.Infos()
		if len(infos) == 0 {
			fmt.Fprintln(c.out, c.styles.Help.Render("no sessions"))
			return
		}
		for _, info := range infos {
			data, _ := json.Marshal(info)
			fmt.Fprintf(c.out, "%s %s\n", c.styles.Label.Render(info.ID), data)
		}

	case "layout":
		s, ok := c.resolve(args, 1)
		if !ok {
			return
		}
		c.send(s, sdui.TopicLayout, Render(s.View()))

	case "update":
		s, ok := c.resolve(args, 3)
		if !ok {
			return
		}
		text := strings.Join(args[2:], " ")
		c.send(s, sdui.TopicUpdate, sdui.TextUpdate(args[1], text))

	case "hide", "show":
		s, ok := c.resolve(args, 2)
		if !ok {
			return
		}
		c.send(s, sdui.TopicUpdate, sdui.NewUpdate(args[1], map[string]any{"hidden": cmd == "hide"}))

	case "raw":
		s, ok := c.resolve(args, 2)
		if !ok {
			return
		}
		raw := strings.Join(args[1:], " ")
		var payload any
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			c.errorf("invalid json: %v", err)
			return
		}
		env, _ := payload.(map[string]any)
		topic, _ := env["topic"].(string)
		if topic == "" {
			c.errorf("raw frame needs a topic field")
			return
		}
		c.send(s, topic, env["payload"])

	default:
		c.errorf("unknown command %q, type 'help'", cmd)
	}
}

// resolve looks up the session named by args[0] and checks arity.
func (c *Console) resolve(args []string, want int) (*Session, bool) {
	if len(args) < want {
		c.errorf("missing arguments, type 'help'")
		return nil, false
	}
	s := c.registry.Get(args[0])
	if s == nil {
		c.errorf("unknown device %q", args[0])
		return nil, false
	}
	return s, true
}

func (c *Console) send(s *Session, topic string, payload any) {
	if err := s.Send(topic, payload); err != nil {
		c.errorf("send to %s failed: %v", s.ID, err)
		return
	}
	fmt.Fprintln(c.out, c.styles.Prompt.Render("sent "+topic))
}

func (c *Console) errorf(format string, args ...any) {
	fmt.Fprintln(c.out, c.styles.Error.Render(fmt.Sprintf(format, args...)))
}
