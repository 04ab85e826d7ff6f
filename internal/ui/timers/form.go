package timers

import (
	"strings"

	"gamertimer/internal/core/model"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// FormValues is the raw content of the creation form.
type FormValues struct {
	Name      string
	Category  model.Category
	Duration  model.DurationFields
	AutoReset bool
	Flash     bool
	Sound     bool
}

// Timer converts the form into a definition ready for the registry.
func (values FormValues) Timer() (model.Timer, error) {
	duration, err := values.Duration.Duration()
	if err != nil {
		return model.Timer{}, err
	}

	timer := model.Timer{
		Name:            strings.TrimSpace(values.Name),
		Category:        values.Category,
		Duration:        duration,
		AutoReset:       values.AutoReset,
		FlashOnComplete: values.Flash,
		SoundOnComplete: values.Sound,
	}
	if err := timer.Validate(); err != nil {
		return model.Timer{}, err
	}
	return timer, nil
}

func numberEntry(placeholder string) *widget.Entry {
	entry := widget.NewEntry()
	entry.SetPlaceHolder(placeholder)
	return entry
}

// showCreateForm asks for a new timer in category and hands the values to submit.
func showCreateForm(parent fyne.Window, category model.Category, submit func(FormValues)) {
	name := widget.NewEntry()
	name.SetText(model.DefaultName(category))

	days := numberEntry("d")
	hours := numberEntry("h")
	minutes := numberEntry("m")
	seconds := numberEntry("s")

	autoReset := widget.NewCheck("Auto reset", nil)
	flash := widget.NewCheck("Flash when done", nil)
	flash.SetChecked(true)
	sound := widget.NewCheck("Sound when done", nil)
	sound.SetChecked(true)

	items := []*widget.FormItem{
		widget.NewFormItem("Name", name),
		widget.NewFormItem("Duration", container.NewGridWithColumns(4, days, hours, minutes, seconds)),
		widget.NewFormItem("", container.NewVBox(autoReset, flash, sound)),
	}

	form := dialog.NewForm("New "+category.Label()+" timer", "Create", "Cancel", items, func(confirmed bool) {
		if !confirmed {
			return
		}
		submit(FormValues{
			Name:     name.Text,
			Category: category,
			Duration: model.DurationFields{
				Days:    days.Text,
				Hours:   hours.Text,
				Minutes: minutes.Text,
				Seconds: seconds.Text,
			},
			AutoReset: autoReset.Checked,
			Flash:     flash.Checked,
			Sound:     sound.Checked,
		})
	}, parent)
	form.Resize(fyne.NewSize(420, 300))
	form.Show()
}
