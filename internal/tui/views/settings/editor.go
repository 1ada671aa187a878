// Package settings provides the TUI editor for recipe thresholds.
package settings

import (
	"context"
	"fmt"

	"github.com/habibGamal/preparation-system/internal/models"
	settingsvc "github.com/habibGamal/preparation-system/internal/services/settings"
	"github.com/habibGamal/preparation-system/internal/tui/components"
)

// Editor is a form over every setting key.
type Editor struct {
	service *settingsvc.Service
	form    *components.Form
	keys    []models.SettingKey
	current models.Settings
}

// NewEditor creates an editor showing current.
func NewEditor(service *settingsvc.Service, current models.Settings) *Editor {
	e := &Editor{service: service}
	e.Reset(current)
	return e
}

// Reset rebuilds the form from s, discarding unsaved edits.
func (e *Editor) Reset(s models.Settings) {
	e.current = s
	e.keys = models.AllSettingKeys()
	e.form = components.NewForm("RECIPE SETTINGS")

	values := s.Values()
	defaults := models.DefaultSettings().Values()
	for _, key := range e.keys {
		label := fmt.Sprintf("%s (%s)", key.Label(), key)
		if key == models.SettingAutoUpdateRecipeOnCompletion {
			sel := components.NewSelect(label, []string{"true", "false"})
			if !s.AutoUpdateRecipe {
				sel.SetSelected(1)
			}
			e.form.AddField(sel)
			continue
		}
		e.form.AddField(components.NewInput(label).
			SetValue(values[key]).
			SetPlaceholder("default " + defaults[key]).
			SetRequired(true).
			SetWidth(12))
	}
}

// HandleKey forwards a key to the form.
func (e *Editor) HandleKey(key string) {
	e.form.HandleKey(key)
}

// Submitted reports whether the user asked to save.
func (e *Editor) Submitted() bool {
	return e.form.IsSubmitted()
}

// Cancelled reports whether the user asked to discard edits.
func (e *Editor) Cancelled() bool {
	return e.form.IsCancelled()
}

// Values returns the changed fields keyed by setting.
func (e *Editor) Values() map[models.SettingKey]string {
	current := e.current.Values()
	out := make(map[models.SettingKey]string)
	for i, field := range e.form.Fields() {
		key := e.keys[i]
		if v := field.Value(); v != current[key] {
			out[key] = v
		}
	}
	return out
}

// Save stores the changed values and returns the new effective settings. On
// failure the form keeps the edits and shows the error.
func (e *Editor) Save(ctx context.Context) (models.Settings, int, error) {
	changed := e.Values()
	if len(changed) == 0 {
		e.form.Resume()
		return e.current, 0, nil
	}

	next, err := e.service.Update(ctx, changed)
	if err != nil {
		e.form.Resume()
		e.form.SetError(err.Error())
		return e.current, 0, err
	}
	e.Reset(next)
	return next, len(changed), nil
}

// Render renders the form with the current values summary.
func (e *Editor) Render() string {
	return e.form.Render() + "\n\n" + summary(e.current)
}

func summary(s models.Settings) string {
	return fmt.Sprintf("Recipes build after %d completed orders and freeze at %d. "+
		"Variance above %s%% is flagged.",
		s.MinimumOrders, s.MaximumOrders, s.VarianceThreshold.String())
}
