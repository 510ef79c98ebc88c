package domain

import (
	"fmt"
	"strings"

	pkgError "github.com/AzielCF/az-cube/pkg/error"
)

type Color string

const (
	White  Color = "white"
	Yellow Color = "yellow"
	Blue   Color = "blue"
	Green  Color = "green"
	Red    Color = "red"
	Orange Color = "orange"
)

// FaceColors lists the faces in the order the color picker walks them.
var FaceColors = []Color{Blue, Green, Red, Orange, Yellow, White}

// colorFace maps a center color to the face it identifies.
var colorFace = map[Color]Face{
	Yellow: FaceU,
	Red:    FaceR,
	Blue:   FaceF,
	White:  FaceD,
	Orange: FaceL,
	Green:  FaceB,
}

// encodeOrder is the face order of the 54-character solver string.
var encodeOrder = []Color{Yellow, Red, Blue, White, Orange, Green}

const (
	StickersPerFace = 9
	CenterIndex     = 4
)

func (c Color) Valid() bool {
	_, ok := colorFace[c]
	return ok
}

// Face returns the face whose center is c.
func (c Color) Face() Face {
	return colorFace[c]
}

// FaceState holds the 9 stickers of every face, keyed by center color.
// Index 4 of each face is fixed to its center color.
type FaceState struct {
	faces map[Color][StickersPerFace]Color
}

// NewFaceState returns a solved cube.
func NewFaceState() *FaceState {
	fs := &FaceState{faces: make(map[Color][StickersPerFace]Color, len(FaceColors))}
	for _, c := range FaceColors {
		fs.ResetFace(c)
	}
	return fs
}

// ResetFace paints every sticker of a face with its center color.
func (fs *FaceState) ResetFace(face Color) {
	var stickers [StickersPerFace]Color
	for i := range stickers {
		stickers[i] = face
	}
	fs.faces[face] = stickers
}

func (fs *FaceState) Get(face Color, index int) Color {
	return fs.faces[face][index]
}

// Set paints one non-center sticker.
func (fs *FaceState) Set(face Color, index int, color Color) error {
	if !face.Valid() {
		return pkgError.ValidationError(fmt.Sprintf("unknown face %q", face))
	}
	if !color.Valid() {
		return pkgError.ValidationError(fmt.Sprintf("unknown color %q", color))
	}
	if index < 0 || index >= StickersPerFace {
		return pkgError.ValidationError(fmt.Sprintf("sticker index %d out of range", index))
	}
	if index == CenterIndex {
		return pkgError.ValidationError("center stickers cannot be changed")
	}
	stickers := fs.faces[face]
	stickers[index] = color
	fs.faces[face] = stickers
	return nil
}

// Counts returns how many stickers of each color are painted.
func (fs *FaceState) Counts() map[Color]int {
	counts := make(map[Color]int, len(FaceColors))
	for _, stickers := range fs.faces {
		for _, c := range stickers {
			counts[c]++
		}
	}
	return counts
}

// Validate checks that every color appears exactly nine times.
func (fs *FaceState) Validate() error {
	counts := fs.Counts()
	for _, c := range FaceColors {
		if counts[c] != StickersPerFace {
			return pkgError.ValidationError(fmt.Sprintf("color %s appears %d times, expected %d", c, counts[c], StickersPerFace))
		}
	}
	return nil
}

// Encode produces the URFDLB facelet string understood by the solver, each sticker
// replaced by the letter of the face its color belongs to.
func (fs *FaceState) Encode() string {
	var b strings.Builder
	b.Grow(len(encodeOrder) * StickersPerFace)
	for _, face := range encodeOrder {
		for _, c := range fs.faces[face] {
			b.WriteByte(byte(colorFace[c]))
		}
	}
	return b.String()
}

// Map returns the state as color -> 9 stickers, suitable for JSON.
func (fs *FaceState) Map() map[Color][]Color {
	out := make(map[Color][]Color, len(fs.faces))
	for face, stickers := range fs.faces {
		s := make([]Color, StickersPerFace)
		copy(s, stickers[:])
		out[face] = s
	}
	return out
}

// FaceStateFromMap builds a state from client input. Centers are checked, not trusted.
func FaceStateFromMap(in map[Color][]Color) (*FaceState, error) {
	fs := NewFaceState()
	for _, face := range FaceColors {
		stickers, ok := in[face]
		if !ok {
			return nil, pkgError.ValidationError(fmt.Sprintf("missing face %s", face))
		}
		if len(stickers) != StickersPerFace {
			return nil, pkgError.ValidationError(fmt.Sprintf("face %s has %d stickers, expected %d", face, len(stickers), StickersPerFace))
		}
		if stickers[CenterIndex] != face {
			return nil, pkgError.ValidationError(fmt.Sprintf("face %s has center %s", face, stickers[CenterIndex]))
		}
		for i, c := range stickers {
			if i == CenterIndex {
				continue
			}
			if err := fs.Set(face, i, c); err != nil {
				return nil, err
			}
		}
	}
	return fs, nil
}
