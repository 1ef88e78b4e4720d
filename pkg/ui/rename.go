package ui

import "github.com/charmbracelet/huh"

// newRenameForm builds the single-field label edit form. The value pointer
// is owned by the Model; the form writes into it as the user types.
func newRenameForm(value *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("label").
				Title("Division label").
				CharLimit(80).
				Value(value),
		),
	).WithShowHelp(false).WithShowErrors(false)
}
