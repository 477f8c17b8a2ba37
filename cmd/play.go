package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/adaptiq/internal/practice"
	"github.com/abhisek/adaptiq/internal/problemgen"
	"github.com/abhisek/adaptiq/internal/quiz"
)

// answerRecorder persists one answered question.
type answerRecorder interface {
	Record(ctx context.Context, c quiz.Candidate, correct bool, spent time.Duration, at time.Time) error
}

type playFeedback struct {
	correct bool
	answer  string
	detail  string
}

// playModel walks the learner through every question of the given quizzes.
// Numeric questions are typed; multiple choice is picked with 1-4 or the
// arrow keys. Each answer is timed from when its question was shown and
// recorded before feedback appears.
type playModel struct {
	ctx       context.Context
	rec       answerRecorder
	questions []quiz.Candidate
	now       func() time.Time

	idx        int
	input      textinput.Model
	mcSelected int
	shownAt    time.Time
	feedback   *playFeedback

	answered int
	correct  int
	quit     bool
	err      error
}

func newPlayModel(ctx context.Context, rec answerRecorder, quizzes []*practice.Quiz, now func() time.Time) *playModel {
	var qs []quiz.Candidate
	for _, q := range quizzes {
		qs = append(qs, q.Questions...)
	}
	if now == nil {
		now = time.Now
	}

	ti := textinput.New()
	ti.Placeholder = "your answer"
	ti.CharLimit = 32
	ti.Focus()

	return &playModel{
		ctx:       ctx,
		rec:       rec,
		questions: qs,
		now:       now,
		input:     ti,
		shownAt:   now(),
	}
}

func (m *playModel) Init() tea.Cmd {
	if len(m.questions) == 0 {
		return tea.Quit
	}
	return nil
}

func (m *playModel) current() quiz.Candidate {
	return m.questions[m.idx]
}

func (m *playModel) finished() bool {
	return m.idx >= len(m.questions)
}

func (m *playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch key.String() {
	case "ctrl+c", "esc":
		m.quit = true
		return m, tea.Quit
	}

	if m.finished() {
		return m, tea.Quit
	}

	if m.feedback != nil {
		return m.next()
	}

	c := m.current()
	if len(c.Options) > 0 {
		switch k := key.String(); k {
		case "enter":
			return m.submit(c.Options[m.mcSelected])
		case "up", "k":
			m.mcSelected = max(0, m.mcSelected-1)
		case "down", "j":
			m.mcSelected = min(len(c.Options)-1, m.mcSelected+1)
		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			if i := int(k[0] - '1'); i < len(c.Options) {
				m.mcSelected = i
				return m.submit(c.Options[i])
			}
		}
		return m, nil
	}

	if key.String() == "enter" {
		answer := strings.TrimSpace(m.input.Value())
		if answer == "" {
			return m, nil
		}
		return m.submit(answer)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *playModel) submit(answer string) (tea.Model, tea.Cmd) {
	c := m.current()
	at := m.now()
	ok := problemgen.CheckAnswer(answer, c)

	if err := m.rec.Record(m.ctx, c, ok, at.Sub(m.shownAt), at); err != nil {
		m.err = err
		return m, tea.Quit
	}

	m.answered++
	if ok {
		m.correct++
	}
	m.feedback = &playFeedback{correct: ok, answer: c.CorrectAnswer, detail: c.Explanation}
	return m, nil
}

func (m *playModel) next() (tea.Model, tea.Cmd) {
	m.feedback = nil
	m.idx++
	m.mcSelected = 0
	m.input.Reset()
	m.shownAt = m.now()
	if m.finished() {
		return m, tea.Quit
	}
	return m, nil
}

func (m *playModel) View() tea.View {
	return tea.NewView(m.render())
}

func (m *playModel) render() string {
	var b strings.Builder
	if m.finished() {
		fmt.Fprintf(&b, "%s\n", titleStyle.Render(fmt.Sprintf("Score: %d/%d", m.correct, m.answered)))
		return b.String()
	}

	c := m.current()
	fmt.Fprintf(&b, "%s  %s\n\n", titleStyle.Render(c.Topic), dimStyle.Render(fmt.Sprintf("%d/%d", m.idx+1, len(m.questions))))
	fmt.Fprintf(&b, "%s\n\n", c.Question)

	if len(c.Options) > 0 {
		for i, o := range c.Options {
			cursor := "  "
			if i == m.mcSelected {
				cursor = titleStyle.Render("> ")
			}
			fmt.Fprintf(&b, "%s%d) %s\n", cursor, i+1, o)
		}
	} else {
		fmt.Fprintf(&b, "%s\n", m.input.View())
	}

	if f := m.feedback; f != nil {
		b.WriteString("\n")
		if f.correct {
			b.WriteString(okStyle.Render("Correct!"))
		} else {
			b.WriteString(errStyle.Render("Not quite. The answer is " + f.answer))
			if f.detail != "" {
				b.WriteString("\n" + dimStyle.Render(f.detail))
			}
		}
		b.WriteString("\n" + dimStyle.Render("press any key to continue"))
	}

	b.WriteString("\n\n" + dimStyle.Render("enter submit · esc quit"))
	return b.String()
}

// runPlay plays quizzes in the terminal and prints the final score to w.
func runPlay(ctx context.Context, rec answerRecorder, quizzes []*practice.Quiz, w io.Writer) error {
	m := newPlayModel(ctx, rec, quizzes, nil)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		return fmt.Errorf("run quiz: %w", err)
	}
	if m.err != nil {
		return m.err
	}
	fmt.Fprintf(w, "Score: %d/%d\n", m.correct, m.answered)
	if m.quit && !m.finished() {
		fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("stopped with %d questions left", len(m.questions)-m.idx)))
	}
	return nil
}
