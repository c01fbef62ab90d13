// Package ingest turns a parsed free-text draft written in one language into
// a bilingual recipe ready to be stored.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fooddb/internal/freetext"
	"fooddb/internal/ingredient"
	"fooddb/internal/recipe"
	"fooddb/internal/translate"
)

// DefaultConcurrency bounds the translation calls in flight per draft.
const DefaultConcurrency = 4

// ErrUnsupportedLanguage is returned for a source language other than he or en.
var ErrUnsupportedLanguage = errors.New("language must be he or en")

// Extras carries the fields a draft cannot express.
type Extras struct {
	ImageURL string
	Tried    bool
	Rating   *float64
	LabelIDs []int64
}

type Service struct {
	translator  translate.Translator
	concurrency int
	log         *zap.Logger
}

func NewService(t translate.Translator, concurrency int, log *zap.Logger) *Service {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{translator: t, concurrency: concurrency, log: log}
}

func other(lang string) string {
	if lang == "he" {
		return "en"
	}
	return "he"
}

// FromDraft builds a recipe from a draft written in lang. Text fields and
// ingredient names are translated into the other language; failed
// translations keep the source text. Quantities and units are copied.
func (s *Service) FromDraft(ctx context.Context, d freetext.Draft, lang string, extras Extras) (*recipe.Recipe, error) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang != "he" && lang != "en" {
		return nil, ErrUnsupportedLanguage
	}
	to := other(lang)

	var title, description, instructions string
	names := make([]string, len(d.Ingredients))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	run := func(dst *string, text string) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			*dst = translate.OrOriginal(gctx, s.translator, text, lang, to)
			return nil
		})
	}

	run(&title, d.Title)
	run(&description, d.Description)
	run(&instructions, d.Instructions)
	for i, ing := range d.Ingredients {
		run(&names[i], ing.Name)
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to translate draft: %w", err)
	}

	translated := make([]ingredient.Ingredient, len(d.Ingredients))
	for i, ing := range d.Ingredients {
		translated[i] = ingredient.Ingredient{Qty: ing.Qty, Unit: ing.Unit, Name: names[i]}
	}

	r := &recipe.Recipe{
		ImageURL:  extras.ImageURL,
		Tried:     extras.Tried,
		PrepTime:  d.PrepTime,
		CookTime:  d.CookTime,
		Servings:  d.Servings,
		Course:    d.Course,
		Cuisine:   d.Cuisine,
		Nutrition: maps.Clone(d.Nutrition),
		Equipment: append([]recipe.Equipment(nil), d.Equipment...),
		LabelIDs:  extras.LabelIDs,
	}
	if extras.Tried {
		r.Rating = extras.Rating
	}

	source := ingredient.EncodeList(d.Ingredients)
	target := ingredient.EncodeList(translated)
	if lang == "he" {
		r.TitleHe, r.TitleEn = d.Title, title
		r.DescriptionHe, r.DescriptionEn = d.Description, description
		r.InstructionsHe, r.InstructionsEn = d.Instructions, instructions
		r.IngredientsHe, r.IngredientsEn = source, target
	} else {
		r.TitleEn, r.TitleHe = d.Title, title
		r.DescriptionEn, r.DescriptionHe = d.Description, description
		r.InstructionsEn, r.InstructionsHe = d.Instructions, instructions
		r.IngredientsEn, r.IngredientsHe = source, target
	}

	s.log.Debug("draft ingested",
		zap.String("lang", lang),
		zap.String("title", d.Title),
		zap.Int("ingredients", len(d.Ingredients)),
	)
	return r, nil
}
