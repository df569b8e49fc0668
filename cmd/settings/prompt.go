package main

import (
	"context"
	"errors"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted is returned when the user interrupts a prompt.
var ErrAborted = errors.New("aborted")

// Prompter asks the user for input. The survey implementation drives a real terminal;
// tests script the answers.
type Prompter interface {
	Input(ctx context.Context, msg, def string) (string, error)
	Confirm(ctx context.Context, msg string, def bool) (bool, error)
	Select(ctx context.Context, msg string, options []string, def string) (string, error)
	MultiSelect(ctx context.Context, msg string, options, defaults []string) ([]string, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Input(ctx context.Context, msg, def string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	if err := survey.AskOne(&survey.Input{Message: msg, Default: def}, &out); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (surveyPrompter) Confirm(ctx context.Context, msg string, def bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var out bool
	if err := survey.AskOne(&survey.Confirm{Message: msg, Default: def}, &out); err != nil {
		return false, translateSurveyErr(err)
	}
	return out, nil
}

func (surveyPrompter) Select(ctx context.Context, msg string, options []string, def string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Select{Message: msg, Options: options}
	if def != "" {
		prompt.Default = def
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (surveyPrompter) MultiSelect(ctx context.Context, msg string, options, defaults []string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []string
	prompt := &survey.MultiSelect{Message: msg, Options: options}
	if len(defaults) > 0 {
		prompt.Default = defaults
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		return nil, translateSurveyErr(err)
	}
	return out, nil
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}
