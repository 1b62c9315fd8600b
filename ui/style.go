package ui

import (
	te "github.com/muesli/termenv"
)

var (
	StyleLogo          = NewStyle("#ffc27d", "#f37329", true, false)
	StyleHelp          = NewStyle("#4e4e4e", "", true, false)
	StyleKey           = NewStyle("#ffc27d", "", true, false)
	StyleKeyHelp       = NewStyle("#B9BFCA", "", false, false)
	StyleTitle         = NewStyle("#ffffff", "", true, false)
	StyleLanguage      = NewStyle("#66C2CD", "", false, true)
	StyleCount         = NewStyle("#B9BFCA", "", false, false)
	StyleTab           = NewStyle("#B9BFCA", "", false, false)
	StyleTabActive     = NewStyle("#ff5faf", "", true, false)
	StyleError         = NewStyle("#ff5f5f", "", true, false)
	StyleTranslation   = NewStyle("#ffffff", "", false, false)
	StyleParent        = NewStyle("#D290E4", "", false, false)
	StyleStatusLearned = NewStyle("#87d75f", "", true, false)
	StyleStatusNew     = NewStyle("#ffaf5f", "", true, false)
)

func NewStyle(fg string, bg string, bold bool, italic bool) func(string) string {
	s := te.Style{}.Foreground(te.ColorProfile().Color(fg)).Background(te.ColorProfile().Color(bg))
	if bold {
		s = s.Bold()
	}
	if italic {
		s = s.Italic()
	}
	return s.Styled
}
