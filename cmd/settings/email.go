package main

import (
	"context"
	"slices"

	"github.com/janisto/account-settings/internal/dialog/preferences"
)

func (a *app) email(ctx context.Context) error {
	d, err := preferences.Open(ctx, preferences.Deps{
		Cache:    a.cache,
		Saver:    a.api,
		Notifier: a.notifier(),
	})
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()

	for {
		if err := a.editPreferences(ctx, d); err != nil {
			return err
		}
		save, err := a.prompt.Confirm(ctx, "Save email preferences?", true)
		if err != nil || !save {
			return err
		}
		err = d.Submit(ctx)
		if err == nil {
			return nil
		}
		again, perr := a.retry(ctx, err)
		if perr != nil {
			return perr
		}
		if !again {
			return err
		}
	}
}

func (a *app) editPreferences(ctx context.Context, d *preferences.Dialog) error {
	for _, g := range d.Groups() {
		titles := make([]string, 0, len(g.Categories))
		var checked []string
		for _, c := range g.Categories {
			titles = append(titles, c.Title)
			if d.IsSelected(c.ID) {
				checked = append(checked, c.Title)
			}
		}

		chosen, err := a.prompt.MultiSelect(ctx, g.Title, titles, checked)
		if err != nil {
			return err
		}
		for _, c := range g.Categories {
			if err := d.Set(c.ID, slices.Contains(chosen, c.Title)); err != nil {
				return err
			}
		}
	}
	return nil
}
