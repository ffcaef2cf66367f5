/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package catalog

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/friendsincode/mealclock/internal/models"
)

// File is the on-disk catalog format.
type File struct {
	Foods []Entry `yaml:"foods" json:"foods"`
}

// Entry describes one catalog food. It doubles as the HTTP create payload.
type Entry struct {
	ShortCode   string            `yaml:"short_code" json:"short_code"`
	Kind        models.FoodKind   `yaml:"kind" json:"kind"`
	Names       map[string]string `yaml:"names,omitempty" json:"names,omitempty"`
	DefaultLang string            `yaml:"default_lang,omitempty" json:"default_lang,omitempty"`
	Serving     Serving           `yaml:"serving" json:"serving"`
	Servings    string            `yaml:"servings,omitempty" json:"servings,omitempty"`
	Time        string            `yaml:"time,omitempty" json:"time,omitempty"`
	Ingredients []IngredientEntry `yaml:"ingredients,omitempty" json:"ingredients,omitempty"`
	Steps       []StepEntry       `yaml:"steps,omitempty" json:"steps,omitempty"`
}

// Serving is a unit and an exact amount.
type Serving struct {
	Unit   string `yaml:"unit" json:"unit"`
	Amount string `yaml:"amount" json:"amount"`
}

// IngredientEntry references another food by short code.
type IngredientEntry struct {
	ShortCode string `yaml:"short_code" json:"short_code"`
	Unit      string `yaml:"unit" json:"unit"`
	Amount    string `yaml:"amount" json:"amount"`
}

// StepEntry is one recipe step.
type StepEntry struct {
	ShortCode string            `yaml:"short_code" json:"short_code"`
	Names     map[string]string `yaml:"names,omitempty" json:"names,omitempty"`
	Time      string            `yaml:"time,omitempty" json:"time,omitempty"`
}

// ParseYAML decodes a catalog file. Unknown keys are rejected so typos do not
// silently drop data.
func ParseYAML(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &File{}, nil
		}
		return nil, fmt.Errorf("%w: parse yaml: %w", ErrInvalid, err)
	}
	return &f, nil
}

// WriteYAML encodes a catalog file.
func WriteYAML(w io.Writer, f *File) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// Record converts the entry into a new catalog record with a fresh ID.
func (e Entry) Record() *models.FoodRecord {
	rec := models.NewFoodRecord(e.ShortCode, e.Kind)
	for lang, v := range e.Names {
		rec.Names[lang] = v
	}
	rec.DefaultLang = e.DefaultLang
	rec.ServingUnit = e.Serving.Unit
	rec.ServingAmount = e.Serving.Amount
	rec.Servings = e.Servings
	rec.PrepMinutes = e.Time
	for _, ing := range e.Ingredients {
		rec.Ingredients = append(rec.Ingredients, models.IngredientRef(ing))
	}
	for _, st := range e.Steps {
		rec.Steps = append(rec.Steps, models.StepRecord{ShortCode: st.ShortCode, Names: st.Names, Minutes: st.Time})
	}
	return rec
}

// EntryFromRecord is the inverse of Entry.Record.
func EntryFromRecord(rec *models.FoodRecord) Entry {
	e := Entry{
		ShortCode:   rec.ShortCode,
		Kind:        rec.Kind,
		Names:       rec.Names,
		DefaultLang: rec.DefaultLang,
		Serving:     Serving{Unit: rec.ServingUnit, Amount: rec.ServingAmount},
		Servings:    rec.Servings,
		Time:        rec.PrepMinutes,
	}
	for _, ing := range rec.Ingredients {
		e.Ingredients = append(e.Ingredients, IngredientEntry(ing))
	}
	for _, st := range rec.Steps {
		e.Steps = append(e.Steps, StepEntry{ShortCode: st.ShortCode, Names: st.Names, Time: st.Minutes})
	}
	return e
}

// importOrder sorts entries so every ingredient defined in the same file
// comes before the recipes that use it. Ingredients not defined in the file
// are left for the store to resolve.
func importOrder(entries []Entry) ([]Entry, error) {
	index := make(map[string]int, len(entries))
	for i, e := range entries {
		if _, dup := index[e.ShortCode]; dup {
			return nil, fmt.Errorf("%w: %q appears twice in the file", ErrDuplicate, e.ShortCode)
		}
		index[e.ShortCode] = i
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(entries))
	out := make([]Entry, 0, len(entries))

	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: through %q", ErrCycle, entries[i].ShortCode)
		}
		state[i] = visiting
		for _, ing := range entries[i].Ingredients {
			if j, ok := index[ing.ShortCode]; ok {
				if err := visit(j); err != nil {
					return err
				}
			}
		}
		state[i] = done
		out = append(out, entries[i])
		return nil
	}

	for i := range entries {
		if err := visit(i); err != nil {
			return nil, err
		}
	}
	return out, nil
}
