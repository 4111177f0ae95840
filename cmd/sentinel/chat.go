package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/sentinel/internal/config"
	"github.com/nao1215/sentinel/internal/model"
	"github.com/nao1215/sentinel/internal/report"
	"github.com/nao1215/sentinel/internal/session"
)

const chatHelp = `Commands:
  /attach <file>  attach a file to the next message
  /send           send the attached files without a message
  /apply          rewrite the report with the proposed changes
  /decline        keep the report as it is
  /history        list report versions
  /quit           leave the conversation`

func newChatCmd(d deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Refine the current report in conversation",
		Long: `Chat opens a conversation about the current report.

Ask questions or request changes. When a reply proposes changes, /apply
rewrites the report and stores it as a new version; /decline keeps the
report unchanged. The transcript is archived with the session, so a later
'sentinel chat' continues where you left off.

` + chatHelp,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChatCmd(cmd, d)
		},
	}

	cmd.Flags().Duration("timeout", config.DefaultTimeout, "Timeout for each reply")

	return cmd
}

// runChatCmd executes the chat command.
func runChatCmd(cmd *cobra.Command, d deps) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("timeout") {
		if cfg.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose)

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	gen, err := d.newGenerator(ctx, cfg, logger)
	if err != nil {
		return err
	}

	ws, err := openWorkspace(ctx, cfg, logger, gen)
	if err != nil {
		return err
	}
	defer func() {
		if err := ws.Close(); err != nil {
			logger.Error("failed to close workspace", "error", err)
		}
	}()
	if err := ws.requireReport(); err != nil {
		return err
	}

	r := &chatREPL{
		session: ws.session,
		in:      cmd.InOrStdin(),
		out:     cmd.OutOrStdout(),
		timeout: cfg.Timeout,
	}
	return r.run(ctx)
}

// chatREPL reads chat turns and commands line by line.
type chatREPL struct {
	session *session.Session
	in      io.Reader
	out     io.Writer
	timeout time.Duration

	pending []model.Attachment
}

func (r *chatREPL) run(ctx context.Context) error {
	loop, err := r.session.EditLoop(ctx)
	if err != nil {
		return fmt.Errorf("failed to open conversation: %w", err)
	}

	for _, msg := range loop.Transcript() {
		r.printMessage(msg)
	}
	fmt.Fprintln(r.out, chatHelp)

	scanner := bufio.NewScanner(r.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fmt.Fprint(r.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		name, arg, _ := strings.Cut(line, " ")
		switch name {
		case "":
		case "/quit", "/exit":
			return nil
		case "/help":
			fmt.Fprintln(r.out, chatHelp)
		case "/attach":
			r.attach(strings.TrimSpace(arg))
		case "/send":
			r.send(ctx, loop, "")
		case "/apply":
			r.apply(ctx, loop)
		case "/decline":
			loop.Decline()
			fmt.Fprintln(r.out, "Proposal declined. The report is unchanged.")
		case "/history":
			if _, err := report.NewSimpleWriter(r.out).WriteHistory(r.session.History()); err != nil {
				return err
			}
		default:
			r.send(ctx, loop, line)
		}
	}
}

func (r *chatREPL) attach(path string) {
	if path == "" {
		fmt.Fprintln(r.out, "Usage: /attach <file>")
		return
	}
	a, err := model.LoadAttachment(path)
	if err != nil {
		fmt.Fprintf(r.out, "Error: %v\n", err)
		return
	}
	r.pending = append(r.pending, a)
	fmt.Fprintf(r.out, "Attached %s (%s)\n", a.Name, a.MIMEType)
}

func (r *chatREPL) send(ctx context.Context, loop *session.EditLoop, text string) {
	turnCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	reply, err := loop.SendTurn(turnCtx, text, r.pending)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrEmptyMessage):
			fmt.Fprintln(r.out, "Nothing to send.")
		case reply.Text != "":
			// The attachments stay pending so the turn can be retried.
			fmt.Fprintln(r.out, reply.Text)
			fmt.Fprintf(r.out, "Error: %v\n", err)
		default:
			fmt.Fprintf(r.out, "Error: %v\n", err)
		}
		return
	}
	r.pending = nil

	fmt.Fprintln(r.out, reply.Text)
	if loop.ProposalOffered() {
		fmt.Fprintln(r.out, "\nType /apply to update the report or /decline to keep it.")
	}
}

func (r *chatREPL) apply(ctx context.Context, loop *session.EditLoop) {
	applyCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := loop.ApplyProposal(applyCtx); err != nil {
		if errors.Is(err, session.ErrNoProposal) {
			fmt.Fprintln(r.out, "There is no proposal to apply.")
			return
		}
		fmt.Fprintln(r.out, session.ApplyFailedMessage)
		fmt.Fprintf(r.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(r.out, session.AppliedMessage)
}

func (r *chatREPL) printMessage(msg model.ChatMessage) {
	who := "sentinel"
	if msg.Role == model.RoleUser {
		who = "you"
	}
	text := msg.Text
	if len(msg.Attachments) > 0 {
		text += " [" + strings.Join(msg.Attachments, ", ") + "]"
	}
	fmt.Fprintf(r.out, "%s: %s\n", who, text)
}
