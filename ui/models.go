package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lai323/lutego/model"
)

type BooksModel struct {
	Books []model.Book
	Width int
}

func (m BooksModel) View() string {
	width := m.Width
	if width <= 0 {
		width = 80
	}
	if len(m.Books) == 0 {
		return StyleHelp("no books")
	}

	var lines []string
	for _, b := range m.Books {
		progress := ""
		if b.PageNum != nil && b.PageCount != nil {
			progress = fmt.Sprintf("%d/%d", *b.PageNum, *b.PageCount)
		}
		unknown := ""
		if b.UnknownPercent != nil {
			unknown = strconv.Itoa(*b.UnknownPercent) + "%"
		}
		lines = append(lines, Line(
			width,
			Cell{Width: 6, Align: RightAlign, Text: StyleCount(strconv.Itoa(b.ID)) + " "},
			Cell{Text: " " + StyleTitle(b.Title)},
			Cell{Width: 14, Text: StyleLanguage(b.Language)},
			Cell{Width: 9, Align: RightAlign, Text: StyleCount(strconv.Itoa(b.WordCount))},
			Cell{Width: 6, Align: RightAlign, Text: StyleCount(unknown)},
			Cell{Width: 8, Align: RightAlign, Text: StyleCount(progress)},
		))
	}
	return JoinLines(lines...)
}

type TermModel struct {
	Term model.TermFormData
}

func (m TermModel) View() string {
	t := m.Term
	status := StyleStatusNew(t.Status.String())
	if t.Status >= model.StatusLearned4 {
		status = StyleStatusLearned(t.Status.String())
	}

	lines := []string{
		fmt.Sprintf("%s  [%s]", StyleTitle(t.Text), status),
	}
	if t.Romanization != "" {
		lines = append(lines, StyleLanguage(t.Romanization))
	}
	if t.Translation != "" {
		lines = append(lines, "", StyleTranslation(t.Translation))
	}
	if len(t.Parents) > 0 {
		parents := StyleParent(strings.Join(t.Parents, ", "))
		if t.SyncStatus {
			parents += StyleHelp(" (linked)")
		}
		lines = append(lines, "", "parents: "+parents)
	}
	if len(t.Tags) > 0 {
		lines = append(lines, "tags: "+strings.Join(t.Tags, ", "))
	}
	return JoinLines(lines...)
}

type HelpModel struct {
	Keyhelp [][]string
}

func (m HelpModel) View() string {
	var text []string
	text = append(text, "")
	for _, info := range m.Keyhelp {
		k, help := info[0], info[1]
		text = append(text,
			Line(
				40,
				Cell{
					Width: 4,
				},
				Cell{
					Width: 10,
					Align: LeftAlign,
					Text:  StyleKey(k),
				},
				Cell{
					Align: LeftAlign,
					Text:  StyleKeyHelp(help),
				},
			))
	}
	return strings.Join(text, "\n")
}
