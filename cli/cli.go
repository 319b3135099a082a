// Package cli is a line-oriented terminal front end for a posts controller.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nasermirzaei89/postdesk/contents"
)

const helpText = `Commands:
  list             show posts
  add              create a post
  edit <id>        edit a post
  save             retry saving the open edit
  cancel           discard the open edit
  delete <id>      delete a post
  reload           fetch posts again
  help             show this help
  quit             exit`

type styles struct {
	prompt lipgloss.Style
	title  lipgloss.Style
	meta   lipgloss.Style
	err    lipgloss.Style
	note   lipgloss.Style
}

func newStyles(out io.Writer) styles {
	renderer := lipgloss.NewRenderer(out)

	return styles{
		prompt: renderer.NewStyle().Foreground(lipgloss.Color("63")).Bold(true),
		title:  renderer.NewStyle().Bold(true),
		meta:   renderer.NewStyle().Foreground(lipgloss.Color("241")),
		err:    renderer.NewStyle().Foreground(lipgloss.Color("196")),
		note:   renderer.NewStyle().Foreground(lipgloss.Color("212")),
	}
}

type Session struct {
	controller *contents.Controller
	scanner    *bufio.Scanner
	out        io.Writer
	styles     styles
}

func NewSession(controller *contents.Controller, in io.Reader, out io.Writer) *Session {
	return &Session{
		controller: controller,
		scanner:    bufio.NewScanner(in),
		out:        out,
		styles:     newStyles(out),
	}
}

var errInputClosed = errors.New("input closed")

func (s *Session) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}

func (s *Session) println(text string) {
	_, _ = fmt.Fprintln(s.out, text)
}

// readLine prints prompt and returns the next input line.
func (s *Session) readLine(prompt string) (string, error) {
	s.printf("%s", s.styles.prompt.Render(prompt))

	if !s.scanner.Scan() {
		err := s.scanner.Err()
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}

		return "", errInputClosed
	}

	return s.scanner.Text(), nil
}

// Confirm asks prompt and accepts "y" or "yes". It blocks until the
// operator answers.
func (s *Session) Confirm(_ context.Context, prompt string) (bool, error) {
	answer, err := s.readLine(prompt + " [y/N] ")
	if err != nil {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

var _ contents.Confirmer = (*Session)(nil)

// Run loads the posts and reads commands until quit or end of input.
func (s *Session) Run(ctx context.Context) error {
	s.controller.Load(ctx)
	s.list()

	for {
		if ctx.Err() != nil {
			return nil
		}

		line, err := s.readLine("> ")
		if err != nil {
			if errors.Is(err, errInputClosed) {
				return nil
			}

			return err
		}

		quit, err := s.exec(ctx, line)
		if err != nil {
			if errors.Is(err, errInputClosed) {
				return nil
			}

			return err
		}

		if quit {
			return nil
		}
	}
}

func (s *Session) exec(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "quit", "exit":
		return true, nil
	case "help":
		s.println(helpText)
	case "list":
		s.list()
	case "reload":
		s.controller.Load(ctx)
		s.list()
	case "add":
		return false, s.add(ctx)
	case "edit":
		postID, ok := s.postIDArg(args)
		if ok {
			return false, s.edit(ctx, postID)
		}
	case "save":
		s.save(ctx)
	case "cancel":
		s.controller.CancelEdit()
		s.list()
	case "delete":
		postID, ok := s.postIDArg(args)
		if ok {
			s.delete(ctx, postID)
		}
	default:
		s.println(s.styles.err.Render(fmt.Sprintf("unknown command %q, try help", cmd)))
	}

	return false, nil
}

func (s *Session) postIDArg(args []string) (int, bool) {
	if len(args) != 1 {
		s.println(s.styles.err.Render("expected a post id"))

		return 0, false
	}

	postID, err := strconv.Atoi(args[0])
	if err != nil {
		s.println(s.styles.err.Render(fmt.Sprintf("invalid post id %q", args[0])))

		return 0, false
	}

	return postID, true
}

func (s *Session) list() {
	view := s.controller.View()

	if len(view.Posts) == 0 {
		s.println(s.styles.meta.Render("no posts"))

		return
	}

	for _, post := range view.Posts {
		header := fmt.Sprintf("#%d %s", post.ID, s.styles.title.Render(post.Title))
		if post.Editing {
			header += " " + s.styles.note.Render("(editing)")
		}

		s.println(header)
		s.println("  " + strings.ReplaceAll(post.Body, "\n", "\n  "))
	}
}

func (s *Session) add(ctx context.Context) error {
	for _, field := range []contents.Field{contents.FieldTitle, contents.FieldBody} {
		value, err := s.readLine(fieldLabel(field) + ": ")
		if err != nil {
			return err
		}

		s.controller.SetField(field, value)
	}

	if s.controller.Submit(ctx) {
		s.list()

		return nil
	}

	errs := s.controller.View().Errors
	for _, field := range []contents.Field{contents.FieldTitle, contents.FieldBody} {
		if msg, ok := errs[field]; ok {
			s.println(s.styles.err.Render(fieldLabel(field) + ": " + msg))
		}
	}

	return nil
}

func (s *Session) edit(ctx context.Context, postID int) error {
	err := s.controller.StartEdit(postID)
	if err != nil {
		s.println(s.styles.err.Render(err.Error()))

		return nil
	}

	draft, _ := s.controller.EditSession().Draft()

	for _, field := range []contents.Field{contents.FieldTitle, contents.FieldBody} {
		current := draft.Title
		if field == contents.FieldBody {
			current = draft.Body
		}

		value, err := s.readLine(fmt.Sprintf("%s [%s]: ", fieldLabel(field), current))
		if err != nil {
			return err
		}

		if value != "" {
			_ = s.controller.SetEditField(field, value)
		}
	}

	save, err := s.Confirm(ctx, "Save changes?")
	if err != nil {
		return err
	}

	if !save {
		s.controller.CancelEdit()
		s.list()

		return nil
	}

	s.save(ctx)

	return nil
}

func (s *Session) save(ctx context.Context) {
	if _, editing := s.controller.EditSession().Editing(); !editing {
		s.println(s.styles.err.Render("nothing is being edited"))

		return
	}

	if !s.controller.SaveEdit(ctx) {
		s.println(s.styles.meta.Render("still editing; use save to retry or cancel to discard"))
	}

	s.list()
}

func (s *Session) delete(ctx context.Context, postID int) {
	if _, found := s.controller.Store().Find(postID); !found {
		s.println(s.styles.err.Render(contents.PostNotFoundError{ID: postID}.Error()))

		return
	}

	s.controller.Delete(ctx, postID, s)
	s.list()
}

func fieldLabel(field contents.Field) string {
	if field == contents.FieldBody {
		return "Content"
	}

	return "Title"
}
