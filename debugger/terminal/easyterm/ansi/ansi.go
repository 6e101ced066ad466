// This file is part of threemu.
//
// threemu is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// threemu is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with threemu.  If not, see <https://www.gnu.org/licenses/>.

package ansi

import (
	"fmt"
	"strings"
)

// ansi color.
const (
	colBlack   = 0
	colRed     = 1
	colGreen   = 2
	colYellow  = 3
	colBlue    = 4
	colMagenta = 5
	colCyan    = 6
	colWhite   = 7
	colDefault = 9
)

// ansi target.
const (
	targetPen       = 3
	targetBrightPen = 9
)

// ansi attribute.
const (
	attrBold      = 1
	attrUnderline = 4
)

var colors = map[string]int{
	"BLACK":   colBlack,
	"RED":     colRed,
	"GREEN":   colGreen,
	"YELLOW":  colYellow,
	"BLUE":    colBlue,
	"MAGENTA": colMagenta,
	"CYAN":    colCyan,
	"WHITE":   colWhite,
	"NORMAL":  colDefault,
}

// Pens is the table of colors to be used for text.
var Pens map[string]string

// DimPens is the table of pastel colors to be used for text.
var DimPens map[string]string

// PenStyles is the table of styles to be used for text.
var PenStyles map[string]string

// NormalPen is the CSI sequence for regular text.
const NormalPen = "\033[m"

func init() {
	Pens = make(map[string]string)
	DimPens = make(map[string]string)
	PenStyles = make(map[string]string)

	for _, c := range []string{"red", "green", "yellow", "blue", "magenta", "cyan", "white"} {
		Pens[c], _ = ColorBuild(c, "", true)
		DimPens[c], _ = ColorBuild(c, "", false)
	}

	PenStyles["bold"], _ = ColorBuild("", "bold", false)
	PenStyles["underline"], _ = ColorBuild("", "underline", false)
}

// ColorBuild creates the ANSI sequence to create the pen with the correct
// foreground color and attribute.
func ColorBuild(pen, attribute string, brightPen bool) (string, error) {
	var codes []string

	if pen != "" {
		col, ok := colors[strings.ToUpper(pen)]
		if !ok {
			return "", fmt.Errorf("unknown ANSI pen (%s)", pen)
		}
		penType := targetPen
		if brightPen {
			penType = targetBrightPen
		}
		codes = append(codes, fmt.Sprintf("%d%d", penType, col))
	}

	switch strings.ToUpper(attribute) {
	case "BOLD":
		codes = append(codes, fmt.Sprintf("%d", attrBold))
	case "UNDERLINE":
		codes = append(codes, fmt.Sprintf("%d", attrUnderline))
	case "NORMAL", "":
	default:
		return "", fmt.Errorf("unknown ANSI attribute (%s)", attribute)
	}

	return fmt.Sprintf("\033[%sm", strings.Join(codes, ";")), nil
}

// ClearLine is the CSI sequence to clear the entire of the current line.
const ClearLine = "\033[2K"
