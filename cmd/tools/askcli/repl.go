package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zhouzirui/park-concierge/backend/internal/model/chat"
	"github.com/zhouzirui/park-concierge/backend/internal/model/faq"
	chatservice "github.com/zhouzirui/park-concierge/backend/internal/service/chat"
	"github.com/zhouzirui/park-concierge/backend/internal/service/concierge"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	guestStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))
	assistStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3C78D8"))
	faqBadgeStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#2E7D32"))
	aiBadgeStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#B8860B"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#D32F2F"))
)

// repl reads one question per line and answers it before reading the next.
type repl struct {
	assistant *concierge.Assistant
	store     *chatservice.Service
	sessionID string
	audioDir  string
	format    string
	out       io.Writer
}

func (r *repl) run(ctx context.Context, in io.Reader) error {
	r.printBanner()

	scanner := bufio.NewScanner(in)
	turn := 0
	for {
		fmt.Fprint(r.out, guestStyle.Render("You")+" > ")
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/history":
			r.printHistory(ctx)
			continue
		case "/say":
			r.sayLast(ctx, turn)
			continue
		}

		turn++
		reply, err := r.assistant.Ask(ctx, r.sessionID, line, r.audioDir != "")
		if err != nil {
			fmt.Fprintln(r.out, errorStyle.Render("error: "+err.Error()))
			continue
		}
		r.printAnswer(reply.Answer)
		r.saveAudio(turn, reply)
	}
}

func (r *repl) printBanner() {
	fmt.Fprintln(r.out, titleStyle.Render("Theme Park Concierge"))
	fmt.Fprintln(r.out, "I can help with:")
	for _, topic := range faq.Topics() {
		fmt.Fprintln(r.out, "  - "+topic)
	}
	fmt.Fprintln(r.out, "Commands: /history, /say, /quit")
}

func (r *repl) printAnswer(msg chat.Message) {
	fmt.Fprintln(r.out, assistStyle.Render("Concierge")+" > "+msg.Content)
	fmt.Fprintln(r.out, badge(msg.Source))
}

func (r *repl) printHistory(ctx context.Context) {
	turns, err := r.store.LoadTranscript(ctx, r.sessionID)
	if err != nil {
		fmt.Fprintln(r.out, errorStyle.Render("error: "+err.Error()))
		return
	}
	for _, t := range turns {
		if t.Role == chat.RoleUser {
			fmt.Fprintln(r.out, guestStyle.Render("You")+" > "+t.Content)
			continue
		}
		r.printAnswer(t)
	}
}

func (r *repl) saveAudio(turn int, reply concierge.Reply) {
	if r.audioDir == "" {
		return
	}
	if reply.AudioError != "" {
		fmt.Fprintln(r.out, errorStyle.Render(reply.AudioError))
		return
	}
	if len(reply.Audio) == 0 {
		return
	}
	r.writeAudio(turn, reply.Audio)
}

func (r *repl) sayLast(ctx context.Context, turn int) {
	if r.audioDir == "" {
		fmt.Fprintln(r.out, errorStyle.Render("speech disabled: start with -audio-dir"))
		return
	}
	audio, err := r.assistant.SpeakLast(ctx, r.sessionID)
	if err != nil {
		fmt.Fprintln(r.out, errorStyle.Render("Error generating audio: "+err.Error()))
		return
	}
	r.writeAudio(turn, audio)
}

func (r *repl) writeAudio(turn int, audio []byte) {
	format := r.format
	if format == "" {
		format = "mp3"
	}
	path := filepath.Join(r.audioDir, fmt.Sprintf("answer-%03d.%s", turn, format))
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		fmt.Fprintln(r.out, errorStyle.Render("error: "+err.Error()))
		return
	}
	fmt.Fprintln(r.out, "audio saved to "+path)
}

func badge(source chat.Source) string {
	if source == chat.SourceFAQ {
		return faqBadgeStyle.Render("  " + source.Badge())
	}
	return aiBadgeStyle.Render("  " + source.Badge())
}
