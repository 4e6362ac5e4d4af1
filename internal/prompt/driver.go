// Package prompt fills a form interactively in the terminal, one prompt per
// field, and returns the answers as submission entries.
package prompt

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted is returned when the user interrupts a prompt.
var ErrAborted = errors.New("prompt: aborted")

// Question is a single field prompt. Options and Defaults hold display
// labels; Fill maps them back to option values.
type Question struct {
	Label    string
	Help     string
	Default  string
	Options  []string
	Defaults []string
	Validate func(string) error
}

// Driver asks questions on behalf of Fill.
type Driver interface {
	Heading(ctx context.Context, text string) error
	Text(ctx context.Context, q Question) (string, error)
	LongText(ctx context.Context, q Question) (string, error)
	Confirm(ctx context.Context, q Question) (bool, error)
	Choose(ctx context.Context, q Question) (string, error)
	ChooseMany(ctx context.Context, q Question) ([]string, error)
}

type surveyDriver struct {
	in  terminal.FileReader
	out terminal.FileWriter
}

// NewSurveyDriver returns a Driver that reads answers from in and draws
// prompts and section headings on out.
func NewSurveyDriver(in terminal.FileReader, out terminal.FileWriter) Driver {
	return &surveyDriver{in: in, out: out}
}

func (d *surveyDriver) Heading(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(d.out, "\n%s\n", text)
	return err
}

func (d *surveyDriver) Text(ctx context.Context, q Question) (string, error) {
	var answer string
	err := d.ask(ctx, &survey.Input{Message: q.Label, Help: q.Help, Default: q.Default}, &answer, q.Validate)
	return answer, err
}

func (d *surveyDriver) LongText(ctx context.Context, q Question) (string, error) {
	var answer string
	err := d.ask(ctx, &survey.Multiline{Message: q.Label, Help: q.Help, Default: q.Default}, &answer, q.Validate)
	return answer, err
}

func (d *surveyDriver) Confirm(ctx context.Context, q Question) (bool, error) {
	var answer bool
	err := d.ask(ctx, &survey.Confirm{Message: q.Label, Help: q.Help, Default: q.Default == "true"}, &answer, nil)
	return answer, err
}

func (d *surveyDriver) Choose(ctx context.Context, q Question) (string, error) {
	p := &survey.Select{Message: q.Label, Help: q.Help, Options: q.Options}
	if contains(q.Options, q.Default) {
		p.Default = q.Default
	}
	var answer string
	err := d.ask(ctx, p, &answer, nil)
	return answer, err
}

func (d *surveyDriver) ChooseMany(ctx context.Context, q Question) ([]string, error) {
	p := &survey.MultiSelect{Message: q.Label, Help: q.Help, Options: q.Options}
	var defaults []string
	for _, label := range q.Defaults {
		if contains(q.Options, label) {
			defaults = append(defaults, label)
		}
	}
	if len(defaults) > 0 {
		p.Default = defaults
	}
	var answer []string
	err := d.ask(ctx, p, &answer, nil)
	return answer, err
}

func (d *surveyDriver) ask(ctx context.Context, p survey.Prompt, answer any, validate func(string) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	opts := []survey.AskOpt{survey.WithStdio(d.in, d.out, d.out)}
	if validate != nil {
		opts = append(opts, survey.WithValidator(func(ans any) error {
			text, _ := ans.(string)
			return validate(text)
		}))
	}
	if err := survey.AskOne(p, answer, opts...); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return ErrAborted
		}
		return err
	}
	return nil
}

func contains(options []string, value string) bool {
	for _, option := range options {
		if option == value {
			return true
		}
	}
	return false
}
