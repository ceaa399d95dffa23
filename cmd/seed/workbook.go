package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/back-pedagogico/stories-backend/internal/app/service"
	"github.com/xuri/excelize/v2"
)

const (
	sheetPersons = "persons"
	sheetTags    = "tags"
	sheetStories = "stories"
)

type personRow struct {
	Row   int
	Input service.PersonInput
}

// storyRow groups the rows of the stories sheet that share a story key.
type storyRow struct {
	Key          string
	PersonRow    int
	Translations []service.TranslationInput
	Tags         []string
}

type workbook struct {
	Persons []personRow
	Tags    []string
	Stories []*storyRow
	Skipped int
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// readWorkbook parses the import file. Every sheet starts with a header row.
//
//	persons: origin | name | profession | birth_date (YYYY-MM-DD)
//	tags:    name
//	stories: story_key | person_row | language | content | tags (comma separated)
//
// person_row is the 1-based data row in the persons sheet. Rows sharing a
// story_key become translations of one story.
func readWorkbook(f *excelize.File) (*workbook, error) {
	wb := &workbook{}

	personRows, err := f.GetRows(sheetPersons)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s sheet: %w", sheetPersons, err)
	}
	for i, row := range personRows {
		if i == 0 {
			continue
		}
		origin := cell(row, 0)
		if origin == "" {
			wb.Skipped++
			continue
		}
		wb.Persons = append(wb.Persons, personRow{
			Row: i,
			Input: service.PersonInput{
				Origin:     &origin,
				Name:       optional(cell(row, 1)),
				Profession: optional(cell(row, 2)),
				BirthDate:  optional(cell(row, 3)),
			},
		})
	}

	// the tags sheet is optional, stories may name their tags directly
	if idx, _ := f.GetSheetIndex(sheetTags); idx >= 0 {
		tagRows, err := f.GetRows(sheetTags)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s sheet: %w", sheetTags, err)
		}
		for i, row := range tagRows {
			if i == 0 {
				continue
			}
			if name := cell(row, 0); name != "" {
				wb.Tags = append(wb.Tags, name)
			}
		}
	}

	storyRows, err := f.GetRows(sheetStories)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s sheet: %w", sheetStories, err)
	}
	byKey := make(map[string]*storyRow)
	for i, row := range storyRows {
		if i == 0 {
			continue
		}
		key := cell(row, 0)
		personRow, err := strconv.Atoi(cell(row, 1))
		lang, content := cell(row, 2), cell(row, 3)
		if key == "" || err != nil || personRow < 1 || lang == "" || content == "" {
			wb.Skipped++
			continue
		}

		story, ok := byKey[key]
		if !ok {
			story = &storyRow{Key: key, PersonRow: personRow}
			byKey[key] = story
			wb.Stories = append(wb.Stories, story)
		}
		story.Translations = append(story.Translations, service.TranslationInput{
			LanguageCode: lang,
			Content:      content,
		})
		for _, tag := range strings.Split(cell(row, 4), ",") {
			if tag = strings.TrimSpace(tag); tag != "" && !contains(story.Tags, tag) {
				story.Tags = append(story.Tags, tag)
			}
		}
	}

	return wb, nil
}

func contains(values []string, v string) bool {
	for _, existing := range values {
		if existing == v {
			return true
		}
	}
	return false
}
